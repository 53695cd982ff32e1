package inventory_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// memStore estado compartido de los repos en memoria. El write condicional
// replica la semántica del storage real: aplica solo si la versión coincide.
type memStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	batches   map[string]*entity.ProductBatch
	alerts    map[string]*entity.StockAlert
	audits    []*entity.AuditEntry

	// forcedConflicts fuerza N conflictos de versión consecutivos en UpdateStock.
	forcedConflicts int
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]*entity.Product{},
		batches:  map[string]*entity.ProductBatch{},
		alerts:   map[string]*entity.StockAlert{},
	}
}

func (s *memStore) addProduct(p *entity.Product) {
	cp := *p
	s.products[p.ID] = &cp
}

func (s *memStore) addBatch(b *entity.ProductBatch) {
	cp := *b
	s.batches[b.ID] = &cp
}

func (s *memStore) product(id string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.products[id]
	return &cp
}

func (s *memStore) movementsFor(productID string) []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range s.movements {
		if m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

func (s *memStore) activeAlertsFor(productID string) []*entity.StockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockAlert
	for _, a := range s.alerts {
		if a.ProductID == productID && a.Status == entity.AlertStatusActive {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

// --- ProductRepository ---

type memProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*memProductRepo)(nil)

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.Status == entity.ProductStatusActive && existing.SKU == p.SKU {
			return fmt.Errorf("sku: %w", domain.ErrDuplicate)
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == sku && p.Status == entity.ProductStatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Barcode != nil && *p.Barcode == barcode && p.Status == entity.ProductStatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) UpdateInfo(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *p
	cp.CurrentStock = current.CurrentStock
	cp.UnitCost = current.UnitCost
	cp.Version = current.Version
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateStock(_ context.Context, id string, newStock int64, newCost decimal.Decimal, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.forcedConflicts > 0 {
		r.s.forcedConflicts--
		return domain.ErrVersionConflict
	}
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	p.CurrentStock = newStock
	p.UnitCost = newCost
	p.Version++
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memProductRepo) SetStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (r *memProductRepo) ListActive(_ context.Context, _, _ int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.Status == entity.ProductStatusActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProductRepo) ListBelowMinStock(_ context.Context, _, _ int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.Status == entity.ProductStatusActive && p.MinStock > 0 && p.CurrentStock <= p.MinStock {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- StockMovementRepository ---

type memMovementRepo struct{ s *memStore }

var _ repository.StockMovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memMovementRepo) GetLastByProduct(_ context.Context, productID string) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].ProductID == productID {
			cp := *r.s.movements[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// --- ProductBatchRepository ---

type memBatchRepo struct{ s *memStore }

var _ repository.ProductBatchRepository = (*memBatchRepo)(nil)

func (r *memBatchRepo) Upsert(_ context.Context, b *entity.ProductBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.batches {
		if existing.ProductID == b.ProductID && existing.BatchNumber == b.BatchNumber {
			existing.Quantity += b.Quantity
			existing.UpdatedAt = b.UpdatedAt
			return nil
		}
	}
	cp := *b
	r.s.batches[b.ID] = &cp
	return nil
}

func (r *memBatchRepo) ListAvailableFIFO(_ context.Context, productID string) ([]*entity.ProductBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ProductBatch
	for _, b := range r.s.batches {
		if b.ProductID == productID && b.Quantity > 0 {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ManufacturingDate.Equal(out[j].ManufacturingDate) {
			return out[i].ManufacturingDate.Before(out[j].ManufacturingDate)
		}
		if out[i].BatchNumber != out[j].BatchNumber {
			return out[i].BatchNumber < out[j].BatchNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memBatchRepo) UpdateQuantity(_ context.Context, id string, quantity int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Quantity = quantity
	return nil
}

// --- StockAlertRepository ---

type memAlertRepo struct{ s *memStore }

var _ repository.StockAlertRepository = (*memAlertRepo)(nil)

func (r *memAlertRepo) Create(_ context.Context, a *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.alerts[a.ID] = &cp
	return nil
}

func (r *memAlertRepo) GetByID(_ context.Context, id string) (*entity.StockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memAlertRepo) GetActiveByProduct(_ context.Context, productID string) ([]*entity.StockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockAlert
	for _, a := range r.s.alerts {
		if a.ProductID == productID && a.Status == entity.AlertStatusActive {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAlertRepo) Update(_ context.Context, a *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[a.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *a
	r.s.alerts[a.ID] = &cp
	return nil
}

func (r *memAlertRepo) List(_ context.Context, productID, status string, _, _ int) ([]*entity.StockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockAlert
	for _, a := range r.s.alerts {
		if productID != "" && a.ProductID != productID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// --- TxRunner y AuditRecorder ---

type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	batchRepo repository.ProductBatchRepository,
) error) error {
	return fn(&memProductRepo{s: t.s}, &memMovementRepo{s: t.s}, &memBatchRepo{s: t.s})
}

type memAuditRecorder struct{ s *memStore }

func (r *memAuditRecorder) Record(_ context.Context, entry *entity.AuditEntry) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.audits = append(r.s.audits, &cp)
}
