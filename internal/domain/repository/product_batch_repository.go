package repository

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// ProductBatchRepository define el puerto de persistencia de lotes.
type ProductBatchRepository interface {
	// Upsert crea el lote o suma cantidad si ya existe (producto + número de lote).
	Upsert(ctx context.Context, batch *entity.ProductBatch) error
	// ListAvailableFIFO devuelve los lotes con cantidad > 0 en orden de consumo:
	// fecha de fabricación asc, número de lote asc, id asc.
	ListAvailableFIFO(ctx context.Context, productID string) ([]*entity.ProductBatch, error)
	UpdateQuantity(ctx context.Context, id string, quantity int64) error
}
