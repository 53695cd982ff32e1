package product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-core/internal/application/audit"
	"github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	"github.com/jhoicas/inventario-core/pkg/logger"
)

// UseCase maneja el ciclo de vida del producto: alta con unicidad de
// SKU/código de barras entre activos, actualización de datos y umbrales, y
// baja suave. El stock nunca se toca aquí: es propiedad exclusiva del mutador
// de inventario.
type UseCase struct {
	products repository.ProductRepository
	alerts   *inventory.AlertUseCase
	auditRec inventory.AuditRecorder
	log      *logger.Logger
}

// NewUseCase construye el caso de uso de productos.
func NewUseCase(products repository.ProductRepository, alerts *inventory.AlertUseCase, auditRec inventory.AuditRecorder, log *logger.Logger) *UseCase {
	return &UseCase{products: products, alerts: alerts, auditRec: auditRec, log: log}
}

// CreateInput datos de alta de producto.
type CreateInput struct {
	SKU          string
	Barcode      string // opcional
	Name         string
	Description  string
	Unit         string
	Price        decimal.Decimal
	MinStock     int64
	MaxStock     int64
	ReorderPoint int64
	BatchTracked bool
}

// UpdateInput patch parcial; nil = sin cambio. No incluye stock ni costo.
type UpdateInput struct {
	Name         *string
	Description  *string
	Barcode      *string // cadena vacía borra el código
	Unit         *string
	Price        *decimal.Decimal
	MinStock     *int64
	MaxStock     *int64
	ReorderPoint *int64
}

// Create da de alta un producto con stock cero. La unicidad de SKU/barcode se
// verifica aquí para dar un error amable, pero la garantía bajo concurrencia
// es el índice único parcial del storage (dos creadores simultáneos del mismo
// SKU: uno recibe ErrDuplicate del constraint).
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in CreateInput) (*entity.Product, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	if existing, err := uc.products.GetBySKU(ctx, in.SKU); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("sku %q ya registrado: %w", in.SKU, domain.ErrDuplicate)
	}
	if in.Barcode != "" {
		if existing, err := uc.products.GetByBarcode(ctx, in.Barcode); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, fmt.Errorf("barcode %q ya registrado: %w", in.Barcode, domain.ErrDuplicate)
		}
	}

	now := time.Now()
	p := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		Unit:         in.Unit,
		Price:        in.Price,
		UnitCost:     decimal.Zero,
		CurrentStock: 0,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		ReorderPoint: in.ReorderPoint,
		BatchTracked: in.BatchTracked,
		Status:       entity.ProductStatusActive,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Barcode != "" {
		p.Barcode = &in.Barcode
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.auditRec.Record(ctx, audit.NewEntry(actor, entity.AuditActionCreateProduct, "product", p.ID, nil, p))
	return p, nil
}

// Get devuelve el producto o ErrNotFound.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// GetBySKU busca entre productos activos.
func (uc *UseCase) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	p, err := uc.products.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("sku %q: %w", sku, domain.ErrNotFound)
	}
	return p, nil
}

// GetByBarcode busca entre productos activos.
func (uc *UseCase) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	p, err := uc.products.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("barcode %q: %w", barcode, domain.ErrNotFound)
	}
	return p, nil
}

// List lista productos activos con paginación.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return uc.products.ListActive(ctx, limit, offset)
}

// Update aplica un patch a los datos descriptivos y umbrales. Si cambian los
// umbrales dispara reevaluación inmediata de alertas con el stock vigente.
func (uc *UseCase) Update(ctx context.Context, actor entity.Actor, id string, in UpdateInput) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if !p.IsActive() {
		return nil, fmt.Errorf("producto %s inactivo: %w", id, domain.ErrConflict)
	}
	before := *p

	if in.Barcode != nil && *in.Barcode != "" {
		other, err := uc.products.GetByBarcode(ctx, *in.Barcode)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != p.ID {
			return nil, fmt.Errorf("barcode %q ya registrado: %w", *in.Barcode, domain.ErrDuplicate)
		}
	}

	thresholdsChanged := applyPatch(p, in)
	if err := validateThresholds(p.MinStock, p.MaxStock, p.ReorderPoint); err != nil {
		return nil, err
	}
	if p.Unit != "" && !entity.ValidUnit(p.Unit) {
		return nil, fmt.Errorf("unidad %q no soportada: %w", p.Unit, domain.ErrInvalidInput)
	}
	p.UpdatedAt = time.Now()

	if err := uc.products.UpdateInfo(ctx, p); err != nil {
		return nil, err
	}

	if thresholdsChanged {
		if err := uc.alerts.Reevaluate(ctx, p); err != nil {
			uc.log.Warn().Err(err).Str("product_id", p.ID).Msg("reevaluación de alertas falló tras cambio de umbrales")
		}
	}
	uc.auditRec.Record(ctx, audit.NewEntry(actor, entity.AuditActionUpdateProduct, "product", p.ID, &before, p))
	return p, nil
}

// SoftDelete marca el producto como inactivo. Falla con ErrConflict si aún
// tiene stock; el historial del libro se conserva intacto.
func (uc *UseCase) SoftDelete(ctx context.Context, actor entity.Actor, id string) error {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if !p.IsActive() {
		return fmt.Errorf("producto %s ya inactivo: %w", id, domain.ErrConflict)
	}
	if p.CurrentStock > 0 {
		return fmt.Errorf("producto %s con stock %d no puede eliminarse: %w", id, p.CurrentStock, domain.ErrConflict)
	}

	before := *p
	if err := uc.products.SetStatus(ctx, id, entity.ProductStatusInactive); err != nil {
		return err
	}
	after := *p
	after.Status = entity.ProductStatusInactive

	uc.auditRec.Record(ctx, audit.NewEntry(actor, entity.AuditActionDeleteProduct, "product", id, &before, &after))
	return nil
}

// applyPatch muta p con los campos presentes y reporta si cambió algún umbral.
func applyPatch(p *entity.Product, in UpdateInput) bool {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Unit != nil {
		p.Unit = *in.Unit
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Barcode != nil {
		if *in.Barcode == "" {
			p.Barcode = nil
		} else {
			barcode := *in.Barcode
			p.Barcode = &barcode
		}
	}
	changed := false
	if in.MinStock != nil && *in.MinStock != p.MinStock {
		p.MinStock = *in.MinStock
		changed = true
	}
	if in.MaxStock != nil && *in.MaxStock != p.MaxStock {
		p.MaxStock = *in.MaxStock
		changed = true
	}
	if in.ReorderPoint != nil && *in.ReorderPoint != p.ReorderPoint {
		p.ReorderPoint = *in.ReorderPoint
		changed = true
	}
	return changed
}

func validateCreate(in CreateInput) error {
	if in.SKU == "" || in.Name == "" {
		return fmt.Errorf("sku y nombre son obligatorios: %w", domain.ErrInvalidInput)
	}
	if !entity.ValidUnit(in.Unit) {
		return fmt.Errorf("unidad %q no soportada: %w", in.Unit, domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}
	return validateThresholds(in.MinStock, in.MaxStock, in.ReorderPoint)
}

func validateThresholds(min, max, reorder int64) error {
	if min < 0 || max < 0 || reorder < 0 {
		return fmt.Errorf("umbrales no pueden ser negativos: %w", domain.ErrInvalidInput)
	}
	if max > 0 && min > max {
		return fmt.Errorf("min_stock %d mayor que max_stock %d: %w", min, max, domain.ErrInvalidInput)
	}
	return nil
}
