package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos. Solo-append: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// GetLastByProduct devuelve la entrada más reciente del producto (nil si no hay).
	GetLastByProduct(ctx context.Context, productID string) (*entity.StockMovement, error)
}
