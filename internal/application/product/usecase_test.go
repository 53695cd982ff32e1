package product_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appinventory "github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/application/product"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/pkg/logger"
)

var testActor = entity.Actor{ID: "user-1", IP: "10.0.0.1", SessionID: "sess-1"}

// fakeProductRepo repositorio de productos en memoria para el caso de uso.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku && p.Status == entity.ProductStatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode && p.Status == entity.ProductStatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) UpdateInfo(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *p
	cp.CurrentStock = current.CurrentStock
	cp.UnitCost = current.UnitCost
	cp.Version = current.Version
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id string, newStock int64, newCost decimal.Decimal, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	p.CurrentStock = newStock
	p.UnitCost = newCost
	p.Version++
	return nil
}

func (r *fakeProductRepo) SetStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeProductRepo) ListActive(_ context.Context, _, _ int) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if p.Status == entity.ProductStatusActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListBelowMinStock(_ context.Context, _, _ int) ([]*entity.Product, error) {
	return nil, nil
}

// fakeAlertRepo solo guarda lo suficiente para observar reevaluaciones.
type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[string]*entity.StockAlert
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[string]*entity.StockAlert{}}
}

func (r *fakeAlertRepo) Create(_ context.Context, a *entity.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *fakeAlertRepo) GetByID(_ context.Context, id string) (*entity.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAlertRepo) GetActiveByProduct(_ context.Context, productID string) ([]*entity.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StockAlert
	for _, a := range r.alerts {
		if a.ProductID == productID && a.Status == entity.AlertStatusActive {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) Update(_ context.Context, a *entity.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *fakeAlertRepo) List(_ context.Context, _, _ string, _, _ int) ([]*entity.StockAlert, error) {
	return nil, nil
}

func (r *fakeAlertRepo) activeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.alerts {
		if a.Status == entity.AlertStatusActive {
			n++
		}
	}
	return n
}

type captureAuditRecorder struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (r *captureAuditRecorder) Record(_ context.Context, e *entity.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *captureAuditRecorder) lastAction() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[len(r.entries)-1].Action
}

func newTestUseCase() (*product.UseCase, *fakeProductRepo, *fakeAlertRepo, *captureAuditRecorder) {
	repo := newFakeProductRepo()
	alertRepo := newFakeAlertRepo()
	auditRec := &captureAuditRecorder{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	alertUC := appinventory.NewAlertUseCase(alertRepo, auditRec, log)
	return product.NewUseCase(repo, alertUC, auditRec, log), repo, alertRepo, auditRec
}

func validCreateInput() product.CreateInput {
	return product.CreateInput{
		SKU:      "SKU-001",
		Name:     "Café molido 500g",
		Unit:     entity.UnitPiece,
		Price:    decimal.NewFromInt(120),
		MinStock: 5,
		MaxStock: 100,
	}
}

func TestCreate_ProductoNuevoConStockCero(t *testing.T) {
	uc, _, _, auditRec := newTestUseCase()

	p, err := uc.Create(context.Background(), testActor, validCreateInput())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.EqualValues(t, 0, p.CurrentStock)
	assert.EqualValues(t, 1, p.Version)
	assert.True(t, p.UnitCost.IsZero())
	assert.Equal(t, entity.ProductStatusActive, p.Status)
	assert.Equal(t, entity.AuditActionCreateProduct, auditRec.lastAction())
}

func TestCreate_SKUDuplicadoRechazado(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	_, err := uc.Create(context.Background(), testActor, validCreateInput())
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), testActor, validCreateInput())
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_UmbralesInvalidos(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	in := validCreateInput()
	in.MinStock = 50
	in.MaxStock = 10
	_, err := uc.Create(context.Background(), testActor, in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_CambioDeUmbralesReevaluaAlertas(t *testing.T) {
	uc, repo, alertRepo, _ := newTestUseCase()

	p, err := uc.Create(context.Background(), testActor, validCreateInput())
	require.NoError(t, err)

	// Subir stock por fuera del caso de uso para simular inventario existente.
	repo.mu.Lock()
	repo.products[p.ID].CurrentStock = 3
	repo.mu.Unlock()

	// min_stock pasa de 5 a 10: el stock 3 queda por debajo → alerta inmediata.
	newMin := int64(10)
	_, err = uc.Update(context.Background(), testActor, p.ID, product.UpdateInput{MinStock: &newMin})
	require.NoError(t, err)
	assert.Equal(t, 1, alertRepo.activeCount())
}

func TestUpdate_BarcodeDuplicadoRechazado(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	in1 := validCreateInput()
	in1.Barcode = "7701234567890"
	_, err := uc.Create(context.Background(), testActor, in1)
	require.NoError(t, err)

	in2 := validCreateInput()
	in2.SKU = "SKU-002"
	p2, err := uc.Create(context.Background(), testActor, in2)
	require.NoError(t, err)

	dup := "7701234567890"
	_, err = uc.Update(context.Background(), testActor, p2.ID, product.UpdateInput{Barcode: &dup})
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUpdate_BarcodeVacioLoBorra(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	in := validCreateInput()
	in.Barcode = "7701234567890"
	p, err := uc.Create(context.Background(), testActor, in)
	require.NoError(t, err)

	empty := ""
	updated, err := uc.Update(context.Background(), testActor, p.ID, product.UpdateInput{Barcode: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.Barcode)
}

func TestSoftDelete_ConStockRechazado(t *testing.T) {
	uc, repo, _, _ := newTestUseCase()

	p, err := uc.Create(context.Background(), testActor, validCreateInput())
	require.NoError(t, err)

	repo.mu.Lock()
	repo.products[p.ID].CurrentStock = 7
	repo.mu.Unlock()

	err = uc.SoftDelete(context.Background(), testActor, p.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestSoftDelete_LiberaSKUParaReuso(t *testing.T) {
	uc, _, _, auditRec := newTestUseCase()

	p, err := uc.Create(context.Background(), testActor, validCreateInput())
	require.NoError(t, err)

	require.NoError(t, uc.SoftDelete(context.Background(), testActor, p.ID))
	assert.Equal(t, entity.AuditActionDeleteProduct, auditRec.lastAction())

	// El SKU del producto inactivo queda disponible para un producto nuevo.
	p2, err := uc.Create(context.Background(), testActor, validCreateInput())
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, p2.ID)

	// La baja es suave: el producto sigue consultable por ID.
	old, err := uc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusInactive, old.Status)
}

func TestUpdate_ProductoInactivoRechazado(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	p, err := uc.Create(context.Background(), testActor, validCreateInput())
	require.NoError(t, err)
	require.NoError(t, uc.SoftDelete(context.Background(), testActor, p.ID))

	name := "nuevo nombre"
	_, err = uc.Update(context.Background(), testActor, p.ID, product.UpdateInput{Name: &name})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestGet_InexistenteDevuelveNotFound(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	_, err := uc.Get(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetBySKU(context.Background(), "SKU-X")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_UnidadInvalida(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	in := validCreateInput()
	in.Unit = "toneladas"
	_, err := uc.Create(context.Background(), testActor, in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
