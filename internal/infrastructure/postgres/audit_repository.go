package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

const auditColumns = `id, actor_id, action, resource, resource_id, before, after,
	ip, user_agent, session_id, created_at`

// AuditRepo implementación del registro de auditoría sobre PostgreSQL.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create persiste una entrada de auditoría.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_log (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ActorID, e.Action, e.Resource, e.ResourceID, e.Before, e.After,
		e.IP, e.UserAgent, e.SessionID, e.CreatedAt,
	)
	return mapError("create audit entry", err)
}

// ListByResource lista las entradas de un recurso, más reciente primero.
func (r *AuditRepo) ListByResource(ctx context.Context, resource, resourceID string, limit, offset int) ([]*entity.AuditEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE resource = $1 AND resource_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, resource, resourceID, limit, offset)
	if err != nil {
		return nil, mapError("list audit entries", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.ActorID, &e.Action, &e.Resource, &e.ResourceID, &e.Before, &e.After,
			&e.IP, &e.UserAgent, &e.SessionID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
