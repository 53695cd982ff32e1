package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos Get* devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetBySKU y GetByBarcode buscan solo entre productos activos.
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// UpdateInfo actualiza los datos descriptivos y umbrales. No toca
	// CurrentStock ni UnitCost (se manejan vía movimientos).
	UpdateInfo(ctx context.Context, product *entity.Product) error
	// UpdateStock es el write condicional del motor: aplica newStock y newCost
	// solo si la versión en BD sigue siendo expectedVersion, e incrementa la
	// versión. Devuelve domain.ErrVersionConflict si otro escritor ganó.
	UpdateStock(ctx context.Context, id string, newStock int64, newCost decimal.Decimal, expectedVersion int64) error
	SetStatus(ctx context.Context, id, status string) error
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListBelowMinStock lista productos activos con stock en o bajo su mínimo.
	ListBelowMinStock(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
