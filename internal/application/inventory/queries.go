package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// InventoryQueries lecturas expuestas a la capa API. Son lecturas snapshot:
// no requieren observar el último write, solo las mutaciones exigen vista
// linealizable del producto que tocan.
type InventoryQueries struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	alerts    repository.StockAlertRepository
}

// NewInventoryQueries construye el caso de uso de lecturas.
func NewInventoryQueries(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	alerts repository.StockAlertRepository,
) *InventoryQueries {
	return &InventoryQueries{products: products, movements: movements, alerts: alerts}
}

// GetProduct devuelve el producto o ErrNotFound.
func (q *InventoryQueries) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := q.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// ListLowStockProducts lista productos activos con stock en o bajo su mínimo.
func (q *InventoryQueries) ListLowStockProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return q.products.ListBelowMinStock(ctx, limit, offset)
}

// ListAlerts lista alertas filtrando por producto y/o estado (vacío = sin filtro).
func (q *InventoryQueries) ListAlerts(ctx context.Context, productID, status string, limit, offset int) ([]*entity.StockAlert, error) {
	if status != "" && status != entity.AlertStatusActive && status != entity.AlertStatusResolved && status != entity.AlertStatusIgnored {
		return nil, fmt.Errorf("estado de alerta %q: %w", status, domain.ErrInvalidInput)
	}
	return q.alerts.List(ctx, productID, status, limit, offset)
}

// ListMovements lista el libro de movimientos de un producto en un rango de fechas.
func (q *InventoryQueries) ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, fmt.Errorf("product_id requerido: %w", domain.ErrInvalidInput)
	}
	return q.movements.ListByProduct(ctx, productID, from, to, limit, offset)
}
