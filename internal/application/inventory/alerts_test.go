package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/pkg/logger"
)

func newTestAlertUC(s *memStore) *inventory.AlertUseCase {
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return inventory.NewAlertUseCase(&memAlertRepo{s: s}, &memAuditRecorder{s: s}, log)
}

func TestReevaluate_EsIdempotente(t *testing.T) {
	s := newMemStore()
	uc := newTestAlertUC(s)
	p := testProduct("p1", 2)
	p.MinStock = 5

	require.NoError(t, uc.Reevaluate(context.Background(), p))
	require.NoError(t, uc.Reevaluate(context.Background(), p))

	alerts := s.activeAlertsFor("p1")
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertTypeLowStock, alerts[0].Type)
	assert.Equal(t, entity.AlertPriorityCritical, alerts[0].Priority) // 2*2 <= 5
}

func TestReevaluate_LowStockSeResuelveAlReponer(t *testing.T) {
	s := newMemStore()
	uc := newTestAlertUC(s)
	p := testProduct("p1", 2)
	p.MinStock = 5

	require.NoError(t, uc.Reevaluate(context.Background(), p))
	require.Len(t, s.activeAlertsFor("p1"), 1)

	p.CurrentStock = 50
	require.NoError(t, uc.Reevaluate(context.Background(), p))
	assert.Empty(t, s.activeAlertsFor("p1"))
}

func TestResolve_AlertaActivaQuedaTerminal(t *testing.T) {
	s := newMemStore()
	uc := newTestAlertUC(s)
	now := time.Now()
	s.alerts["a1"] = &entity.StockAlert{
		ID: "a1", ProductID: "p1", Type: entity.AlertTypeLowStock,
		Priority: entity.AlertPriorityHigh, Status: entity.AlertStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}

	require.NoError(t, uc.Resolve(context.Background(), testActor, "a1"))
	assert.Equal(t, entity.AlertStatusResolved, s.alerts["a1"].Status)
	require.NotNil(t, s.alerts["a1"].ResolvedBy)
	assert.Equal(t, testActor.ID, *s.alerts["a1"].ResolvedBy)

	// Terminal: no se reabre ni se re-resuelve.
	err := uc.Resolve(context.Background(), testActor, "a1")
	require.ErrorIs(t, err, domain.ErrConflict)
	err = uc.Ignore(context.Background(), testActor, "a1")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestIgnore_AlertaInexistenteDevuelveNotFound(t *testing.T) {
	s := newMemStore()
	uc := newTestAlertUC(s)
	err := uc.Ignore(context.Background(), testActor, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueries_ListAlertsValidaEstado(t *testing.T) {
	s := newMemStore()
	q := inventory.NewInventoryQueries(&memProductRepo{s: s}, &memMovementRepo{s: s}, &memAlertRepo{s: s})

	_, err := q.ListAlerts(context.Background(), "", "bogus", 20, 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = q.ListAlerts(context.Background(), "", entity.AlertStatusActive, 20, 0)
	require.NoError(t, err)
}

func TestQueries_GetProductInexistente(t *testing.T) {
	s := newMemStore()
	q := inventory.NewInventoryQueries(&memProductRepo{s: s}, &memMovementRepo{s: s}, &memAlertRepo{s: s})

	_, err := q.GetProduct(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
