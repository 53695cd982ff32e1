package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// BatchRequest dato de lote para una entrada de stock (obligatorio si el
// producto tiene seguimiento por lote).
type BatchRequest struct {
	BatchNumber       string     `json:"batch_number"`
	ManufacturingDate time.Time  `json:"manufacturing_date"`
	ExpirationDate    *time.Time `json:"expiration_date,omitempty"`
}

// StockInRequest body para POST /api/v1/inventory/in.
type StockInRequest struct {
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Reference  string          `json:"reference,omitempty"`
	Batch      *BatchRequest   `json:"batch,omitempty"`
	ToLocation string          `json:"to_location,omitempty"`
}

// StockOutRequest body para POST /api/v1/inventory/out.
type StockOutRequest struct {
	ProductID    string `json:"product_id"`
	Quantity     int64  `json:"quantity"`
	Reason       string `json:"reason,omitempty"` // vacío = sale
	Reference    string `json:"reference,omitempty"`
	FromLocation string `json:"from_location,omitempty"`
}

// AdjustmentRequest body para POST /api/v1/inventory/adjustments. Delta firmado.
type AdjustmentRequest struct {
	ProductID string `json:"product_id"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
	Reference string `json:"reference,omitempty"`
}

// TransferRequest body para POST /api/v1/inventory/transfers.
type TransferRequest struct {
	FromProductID string `json:"from_product_id"`
	ToProductID   string `json:"to_product_id"`
	Quantity      int64  `json:"quantity"`
	Reference     string `json:"reference,omitempty"`
	FromLocation  string `json:"from_location,omitempty"`
	ToLocation    string `json:"to_location,omitempty"`
}

// TransferResponse productos resultantes de un traslado.
type TransferResponse struct {
	From ProductResponse `json:"from"`
	To   ProductResponse `json:"to"`
}

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Type         string          `json:"type"`
	Reason       string          `json:"reason"`
	Quantity     int64           `json:"quantity"`
	StockBefore  int64           `json:"stock_before"`
	StockAfter   int64           `json:"stock_after"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Reference    string          `json:"reference,omitempty"`
	TransferID   *string         `json:"transfer_id,omitempty"`
	BatchNumber  *string         `json:"batch_number,omitempty"`
	FromLocation *string         `json:"from_location,omitempty"`
	ToLocation   *string         `json:"to_location,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CreatedBy    string          `json:"created_by"`
}

// ToMovementResponse mapea la entidad a su DTO de salida.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Type:         m.Type,
		Reason:       m.Reason,
		Quantity:     m.Quantity,
		StockBefore:  m.StockBefore,
		StockAfter:   m.StockAfter,
		UnitCost:     m.UnitCost,
		TotalCost:    m.TotalCost,
		Reference:    m.Reference,
		TransferID:   m.TransferID,
		BatchNumber:  m.BatchNumber,
		FromLocation: m.FromLocation,
		ToLocation:   m.ToLocation,
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
	}
}

// ToMovementList mapea un slice de movimientos.
func ToMovementList(items []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(items))
	for _, m := range items {
		out = append(out, ToMovementResponse(m))
	}
	return out
}
