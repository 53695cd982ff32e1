package entity

import "time"

// Tipos de alerta de stock.
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
	AlertTypeOverstock  = "overstock"
)

// Prioridades de alerta.
const (
	AlertPriorityLow      = "low"
	AlertPriorityMedium   = "medium"
	AlertPriorityHigh     = "high"
	AlertPriorityCritical = "critical"
)

// Estados de alerta. active → resolved (automático) o active → ignored
// (manual). resolved e ignored son terminales: una nueva brecha crea una
// alerta nueva, nunca reabre una terminal.
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
	AlertStatusIgnored  = "ignored"
)

// StockAlert es el estado de alerta vigente de un producto. Invariante: a lo
// sumo una alerta active por (ProductID, Type). Los campos *Snapshot congelan
// los umbrales y el stock al momento de la última evaluación.
type StockAlert struct {
	ID            string
	ProductID     string
	Type          string
	Priority      string
	Status        string
	StockSnapshot int64
	MinSnapshot   int64
	MaxSnapshot   int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ResolvedBy    *string
	ResolvedAt    *time.Time
}
