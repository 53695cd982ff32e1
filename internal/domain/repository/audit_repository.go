package repository

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// AuditRepository define el puerto de persistencia del registro de auditoría.
// Write-once: las entradas nunca se actualizan ni se borran.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	ListByResource(ctx context.Context, resource, resourceID string, limit, offset int) ([]*entity.AuditEntry, error)
}
