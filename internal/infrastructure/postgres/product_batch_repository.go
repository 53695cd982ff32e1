package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.ProductBatchRepository = (*ProductBatchRepo)(nil)

const batchColumns = `id, product_id, batch_number, quantity, manufacturing_date, expiration_date, created_at, updated_at`

// ProductBatchRepo implementación del puerto de lotes sobre PostgreSQL
// (usable con pool o tx).
type ProductBatchRepo struct {
	q Querier
}

// NewProductBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductBatchRepository(q Querier) *ProductBatchRepo {
	return &ProductBatchRepo{q: q}
}

// Upsert inserta el lote o suma cantidad si ya existe (product_id, batch_number).
func (r *ProductBatchRepo) Upsert(ctx context.Context, b *entity.ProductBatch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, batch_number)
		DO UPDATE SET quantity = product_batches.quantity + EXCLUDED.quantity,
		              updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductID, b.BatchNumber, b.Quantity,
		b.ManufacturingDate, b.ExpirationDate, b.CreatedAt, b.UpdatedAt,
	)
	return mapError("upsert product batch", err)
}

// ListAvailableFIFO lista los lotes con existencia del producto en orden de
// consumo: fecha de fabricación más antigua primero, desempate por número de
// lote y por ID.
func (r *ProductBatchRepo) ListAvailableFIFO(ctx context.Context, productID string) ([]*entity.ProductBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM product_batches
		WHERE product_id = $1 AND quantity > 0
		ORDER BY manufacturing_date ASC, batch_number ASC, id ASC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, mapError("list batches", err)
	}
	defer rows.Close()
	var list []*entity.ProductBatch
	for rows.Next() {
		var b entity.ProductBatch
		if err := rows.Scan(
			&b.ID, &b.ProductID, &b.BatchNumber, &b.Quantity,
			&b.ManufacturingDate, &b.ExpirationDate, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// UpdateQuantity fija la cantidad restante de un lote tras consumirlo.
func (r *ProductBatchRepo) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE product_batches SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return mapError("update batch quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
