package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

const alertColumns = `id, product_id, type, priority, status, stock_snapshot, min_snapshot,
	max_snapshot, created_at, updated_at, resolved_by, resolved_at`

// StockAlertRepo implementación del almacén de alertas sobre PostgreSQL
// (usable con pool o tx).
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

// Create persiste una alerta nueva.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.ProductID, a.Type, a.Priority, a.Status, a.StockSnapshot,
		a.MinSnapshot, a.MaxSnapshot, a.CreatedAt, a.UpdatedAt, a.ResolvedBy, a.ResolvedAt,
	)
	return mapError("create stock alert", err)
}

// GetByID obtiene una alerta por ID (nil si no existe).
func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	var a entity.StockAlert
	err := r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE id = $1`, id).Scan(
		&a.ID, &a.ProductID, &a.Type, &a.Priority, &a.Status, &a.StockSnapshot,
		&a.MinSnapshot, &a.MaxSnapshot, &a.CreatedAt, &a.UpdatedAt, &a.ResolvedBy, &a.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock alert", err)
	}
	return &a, nil
}

// GetActiveByProduct devuelve las alertas activas del producto (insumo del
// evaluador: a lo sumo una por tipo).
func (r *StockAlertRepo) GetActiveByProduct(ctx context.Context, productID string) ([]*entity.StockAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM stock_alerts
		WHERE product_id = $1 AND status = 'active'
		ORDER BY created_at ASC`
	return r.scanMany(ctx, query, productID)
}

// Update reescribe los campos mutables de una alerta existente.
func (r *StockAlertRepo) Update(ctx context.Context, a *entity.StockAlert) error {
	query := `
		UPDATE stock_alerts
		SET priority = $2, status = $3, stock_snapshot = $4, min_snapshot = $5,
		    max_snapshot = $6, updated_at = $7, resolved_by = $8, resolved_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		a.ID, a.Priority, a.Status, a.StockSnapshot, a.MinSnapshot,
		a.MaxSnapshot, a.UpdatedAt, a.ResolvedBy, a.ResolvedAt,
	)
	if err != nil {
		return mapError("update stock alert", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("alerta %s: %w", a.ID, domain.ErrNotFound)
	}
	return nil
}

// List filtra alertas por producto y/o estado, más reciente primero.
func (r *StockAlertRepo) List(ctx context.Context, productID, status string, limit, offset int) ([]*entity.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts WHERE 1=1`
	args := []any{}
	pos := 1
	if productID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, productID)
		pos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.scanMany(ctx, query, args...)
}

func (r *StockAlertRepo) scanMany(ctx context.Context, query string, args ...any) ([]*entity.StockAlert, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock alerts", err)
	}
	defer rows.Close()
	var list []*entity.StockAlert
	for rows.Next() {
		var a entity.StockAlert
		if err := rows.Scan(
			&a.ID, &a.ProductID, &a.Type, &a.Priority, &a.Status, &a.StockSnapshot,
			&a.MinSnapshot, &a.MaxSnapshot, &a.CreatedAt, &a.UpdatedAt, &a.ResolvedBy, &a.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
