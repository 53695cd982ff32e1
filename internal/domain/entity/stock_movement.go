package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
	MovementTypeTransfer   = "transfer"
)

// Razones de movimiento.
const (
	ReasonPurchase = "purchase"
	ReasonSale     = "sale"
	ReasonReturn   = "return"
	ReasonDamage   = "damage"
	ReasonLoss     = "loss"
	ReasonRecount  = "recount"
	ReasonTransfer = "transfer"
)

// StockMovement es una entrada del libro de movimientos: inmutable, solo-append.
// Quantity es el delta firmado aplicado al stock; el invariante del libro es
// StockAfter = StockBefore + Quantity, y por producto cada entrada encadena con
// la anterior (StockBefore == StockAfter previo).
type StockMovement struct {
	ID           string
	ProductID    string
	Type         string
	Reason       string
	Quantity     int64 // delta firmado: positivo entrada, negativo salida
	StockBefore  int64
	StockAfter   int64
	UnitCost     decimal.Decimal
	TotalCost    decimal.Decimal
	Reference    string  // factura, orden, nota de ajuste, etc.
	TransferID   *string // enlaza el par out/in de un traslado
	BatchNumber  *string
	FromLocation *string
	ToLocation   *string
	CreatedAt    time.Time
	CreatedBy    string
	ApprovedBy   *string
	ApprovedAt   *time.Time
}

// ValidReason reporta si la razón de movimiento está soportada.
func ValidReason(r string) bool {
	switch r {
	case ReasonPurchase, ReasonSale, ReasonReturn, ReasonDamage, ReasonLoss, ReasonRecount, ReasonTransfer:
		return true
	}
	return false
}
