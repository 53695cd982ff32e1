package inventory

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es el único scope atómico del motor: lectura
// de stock, write condicional del producto y append al libro viven dentro de
// un mismo Run.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		batchRepo repository.ProductBatchRepository,
	) error) error
}

// AuditRecorder registra snapshots before/after de cada mutación. Se invoca
// después del commit; sus fallas no afectan el resultado de la mutación.
type AuditRecorder interface {
	Record(ctx context.Context, entry *entity.AuditEntry)
}
