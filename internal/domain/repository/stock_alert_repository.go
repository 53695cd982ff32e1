package repository

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// StockAlertRepository define el puerto de persistencia de alertas de stock.
type StockAlertRepository interface {
	Create(ctx context.Context, alert *entity.StockAlert) error
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	GetActiveByProduct(ctx context.Context, productID string) ([]*entity.StockAlert, error)
	// Update refresca snapshot/prioridad o transiciona el estado de la alerta.
	Update(ctx context.Context, alert *entity.StockAlert) error
	// List filtra por producto y/o estado; cadenas vacías no filtran.
	List(ctx context.Context, productID, status string, limit, offset int) ([]*entity.StockAlert, error)
}
