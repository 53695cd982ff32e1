package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado del producto. La unicidad de SKU y código de barras aplica solo
// entre productos activos; un inactivo libera sus códigos.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Unidades de medida soportadas.
const (
	UnitPiece = "unit"
	UnitKg    = "kg"
	UnitLiter = "l"
	UnitMeter = "m"
	UnitBox   = "box"
)

// Product representa un producto o SKU del inventario.
// CurrentStock solo cambia a través del mutador de inventario; UnitCost es
// promedio ponderado calculado desde movimientos. Version es el token de
// concurrencia optimista: todo write condiciona sobre ella.
type Product struct {
	ID           string
	SKU          string
	Barcode      *string
	Name         string
	Description  string
	Unit         string
	Price        decimal.Decimal // precio de venta
	UnitCost     decimal.Decimal // costo promedio ponderado (inicia en 0)
	CurrentStock int64
	MinStock     int64
	MaxStock     int64 // 0 = sin tope configurado
	ReorderPoint int64
	BatchTracked bool
	Status       string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reporta si el producto participa en listados y chequeos de unicidad.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ValidUnit reporta si la unidad de medida está soportada.
func ValidUnit(u string) bool {
	switch u {
	case UnitPiece, UnitKg, UnitLiter, UnitMeter, UnitBox:
		return true
	}
	return false
}
