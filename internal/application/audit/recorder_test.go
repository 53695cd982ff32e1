package audit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/inventario-core/internal/application/audit"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/pkg/logger"
)

// flakyAuditRepo falla las primeras N escrituras y después acepta todo.
type flakyAuditRepo struct {
	mu       sync.Mutex
	failures int
	entries  []*entity.AuditEntry
}

func (r *flakyAuditRepo) Create(_ context.Context, e *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return domain.ErrDatabase
	}
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *flakyAuditRepo) ListByResource(_ context.Context, _, _ string, _, _ int) ([]*entity.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, nil
}

func (r *flakyAuditRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func testLog() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func TestRecord_EscrituraDirecta(t *testing.T) {
	repo := &flakyAuditRepo{}
	rec := audit.NewRecorder(repo, testLog(), 8)
	defer rec.Close()

	rec.Record(context.Background(), audit.NewEntry(
		entity.Actor{ID: "user-1"}, entity.AuditActionStockIn, "product", "p1", nil, nil,
	))
	assert.Equal(t, 1, repo.count())
}

func TestRecord_FallaEncolaYDrena(t *testing.T) {
	// La primera escritura falla sincrónicamente; el worker reintenta desde la cola.
	repo := &flakyAuditRepo{failures: 1}
	rec := audit.NewRecorder(repo, testLog(), 8)

	rec.Record(context.Background(), audit.NewEntry(
		entity.Actor{ID: "user-1"}, entity.AuditActionStockOut, "product", "p1", nil, nil,
	))
	rec.Close() // espera al drain

	require.Equal(t, 1, repo.count())
	assert.Equal(t, entity.AuditActionStockOut, repo.entries[0].Action)
}

func TestNewEntry_SerializaSnapshots(t *testing.T) {
	before := &entity.Product{ID: "p1", CurrentStock: 5}
	after := &entity.Product{ID: "p1", CurrentStock: 8}
	e := audit.NewEntry(entity.Actor{ID: "user-1", IP: "10.0.0.9", SessionID: "s1"},
		entity.AuditActionStockIn, "product", "p1", before, after)

	assert.Equal(t, "user-1", e.ActorID)
	assert.Equal(t, "10.0.0.9", e.IP)
	assert.Equal(t, "s1", e.SessionID)
	assert.NotEmpty(t, e.ID)
	assert.WithinDuration(t, time.Now(), e.CreatedAt, time.Second)
	assert.Contains(t, string(e.Before), `"CurrentStock":5`)
	assert.Contains(t, string(e.After), `"CurrentStock":8`)
}
