package dto

import (
	"time"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// AlertResponse salida de una alerta de stock.
type AlertResponse struct {
	ID            string     `json:"id"`
	ProductID     string     `json:"product_id"`
	Type          string     `json:"type"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	StockSnapshot int64      `json:"stock_snapshot"`
	MinSnapshot   int64      `json:"min_snapshot"`
	MaxSnapshot   int64      `json:"max_snapshot"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ResolvedBy    *string    `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

// ToAlertResponse mapea la entidad a su DTO de salida.
func ToAlertResponse(a *entity.StockAlert) AlertResponse {
	return AlertResponse{
		ID:            a.ID,
		ProductID:     a.ProductID,
		Type:          a.Type,
		Priority:      a.Priority,
		Status:        a.Status,
		StockSnapshot: a.StockSnapshot,
		MinSnapshot:   a.MinSnapshot,
		MaxSnapshot:   a.MaxSnapshot,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		ResolvedBy:    a.ResolvedBy,
		ResolvedAt:    a.ResolvedAt,
	}
}

// ToAlertList mapea un slice de alertas.
func ToAlertList(items []*entity.StockAlert) []AlertResponse {
	out := make([]AlertResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ToAlertResponse(a))
	}
	return out
}
