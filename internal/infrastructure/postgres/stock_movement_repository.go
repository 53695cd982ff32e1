package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, type, reason, quantity, stock_before, stock_after,
	unit_cost, total_cost, reference, transfer_id, batch_number, from_location, to_location,
	created_at, created_by, approved_by, approved_at`

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo-append: la tabla no recibe UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega una entrada al libro.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Type, m.Reason, m.Quantity, m.StockBefore, m.StockAfter,
		m.UnitCost, m.TotalCost, m.Reference, m.TransferID, m.BatchNumber,
		m.FromLocation, m.ToLocation, m.CreatedAt, m.CreatedBy, m.ApprovedBy, m.ApprovedAt,
	)
	return mapError("create stock movement", err)
}

// GetByID obtiene una entrada por ID (nil si no existe).
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock movement", err)
	}
	return m, nil
}

// ListByProduct lista el libro de un producto en un rango de fechas, más
// reciente primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list movements by product", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetLastByProduct devuelve la entrada más reciente del producto (nil si no hay).
// Útil para verificar el encadenamiento stock_before/stock_after.
func (r *StockMovementRepo) GetLastByProduct(ctx context.Context, productID string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1
		ORDER BY created_at DESC, id DESC LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get last movement", err)
	}
	return m, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Type, &m.Reason, &m.Quantity, &m.StockBefore, &m.StockAfter,
		&m.UnitCost, &m.TotalCost, &m.Reference, &m.TransferID, &m.BatchNumber,
		&m.FromLocation, &m.ToLocation, &m.CreatedAt, &m.CreatedBy, &m.ApprovedBy, &m.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
