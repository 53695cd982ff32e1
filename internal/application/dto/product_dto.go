package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	MinStock     int64           `json:"min_stock"`
	MaxStock     int64           `json:"max_stock"`
	ReorderPoint int64           `json:"reorder_point"`
	BatchTracked bool            `json:"batch_tracked"`
}

// UpdateProductRequest patch parcial (sin stock, costo ni versión: esos
// campos solo mutan vía operaciones de inventario).
type UpdateProductRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Barcode      *string          `json:"barcode"` // cadena vacía borra el código
	Unit         *string          `json:"unit"`
	Price        *decimal.Decimal `json:"price"`
	MinStock     *int64           `json:"min_stock"`
	MaxStock     *int64           `json:"max_stock"`
	ReorderPoint *int64           `json:"reorder_point"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Barcode      *string         `json:"barcode,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	CurrentStock int64           `json:"current_stock"`
	MinStock     int64           `json:"min_stock"`
	MaxStock     int64           `json:"max_stock"`
	ReorderPoint int64           `json:"reorder_point"`
	BatchTracked bool            `json:"batch_tracked"`
	Status       string          `json:"status"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse mapea la entidad a su DTO de salida.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Barcode:      p.Barcode,
		Name:         p.Name,
		Description:  p.Description,
		Unit:         p.Unit,
		Price:        p.Price,
		UnitCost:     p.UnitCost,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		ReorderPoint: p.ReorderPoint,
		BatchTracked: p.BatchTracked,
		Status:       p.Status,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToProductList mapea un slice de entidades.
func ToProductList(items []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, ToProductResponse(p))
	}
	return out
}
