package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, barcode, name, description, unit, price, unit_cost,
	current_stock, min_stock, max_stock, reorder_point, batch_tracked, status, version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Los índices únicos parciales sobre
// (sku) y (barcode) de productos activos son la garantía bajo concurrencia.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Barcode, p.Name, p.Description, p.Unit, p.Price, p.UnitCost,
		p.CurrentStock, p.MinStock, p.MaxStock, p.ReorderPoint, p.BatchTracked,
		p.Status, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByID obtiene un producto por ID (activo o no). Devuelve nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.scanOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySKU busca solo entre productos activos.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.scanOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1 AND status = 'active'`, sku)
}

// GetByBarcode busca solo entre productos activos.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.scanOne(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 AND status = 'active'`, barcode)
}

// UpdateInfo actualiza datos descriptivos y umbrales. No toca current_stock,
// unit_cost ni version: esos pertenecen al write condicional del mutador.
func (r *ProductRepo) UpdateInfo(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET sku = $2, barcode = $3, name = $4, description = $5, unit = $6, price = $7,
		    min_stock = $8, max_stock = $9, reorder_point = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Barcode, p.Name, p.Description, p.Unit, p.Price,
		p.MinStock, p.MaxStock, p.ReorderPoint, p.UpdatedAt,
	)
	if err != nil {
		return mapError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("producto %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdateStock es el write condicional del motor de inventario: aplica stock y
// costo solo si la versión no cambió desde la lectura, e incrementa version.
// Cero filas afectadas significa que otro escritor ganó la carrera.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, newStock int64, newCost decimal.Decimal, expectedVersion int64) error {
	query := `
		UPDATE products
		SET current_stock = $2, unit_cost = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $4`
	cmd, err := r.q.Exec(ctx, query, id, newStock, newCost, expectedVersion)
	if err != nil {
		return mapError("update product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("producto %s versión %d: %w", id, expectedVersion, domain.ErrVersionConflict)
	}
	return nil
}

// SetStatus cambia el tag de estado (baja suave / reactivación).
func (r *ProductRepo) SetStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return mapError("set product status", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListActive lista productos activos con paginación.
func (r *ProductRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE status = 'active'
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.scanMany(ctx, query, limit, offset)
}

// ListBelowMinStock lista productos activos con stock en o bajo su mínimo,
// peor déficit primero.
func (r *ProductRepo) ListBelowMinStock(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE status = 'active' AND min_stock > 0 AND current_stock <= min_stock
		ORDER BY (min_stock - current_stock) DESC LIMIT $1 OFFSET $2`
	return r.scanMany(ctx, query, limit, offset)
}

func (r *ProductRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.Unit, &p.Price, &p.UnitCost,
		&p.CurrentStock, &p.MinStock, &p.MaxStock, &p.ReorderPoint, &p.BatchTracked,
		&p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get product", err)
	}
	return &p, nil
}

func (r *ProductRepo) scanMany(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.Unit, &p.Price, &p.UnitCost,
			&p.CurrentStock, &p.MinStock, &p.MaxStock, &p.ReorderPoint, &p.BatchTracked,
			&p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
