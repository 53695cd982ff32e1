package entity

import "time"

// ProductBatch representa un lote con cantidad remanente de un producto con
// seguimiento por lote. Las salidas consumen lotes en orden FIFO por fecha de
// fabricación (desempate: número de lote, luego ID).
type ProductBatch struct {
	ID                string
	ProductID         string
	BatchNumber       string
	Quantity          int64 // cantidad remanente
	ManufacturingDate time.Time
	ExpirationDate    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
