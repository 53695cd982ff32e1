package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	"github.com/jhoicas/inventario-core/pkg/logger"
)

// Recorder persiste entradas de auditoría. Para el caller es fire-and-forget:
// si el write falla, la entrada pasa a una cola en memoria que un worker drena
// con reintentos. Una falla de auditoría nunca revierte la mutación de stock
// ya confirmada; el libro de movimientos es la fuente de verdad.
type Recorder struct {
	repo  repository.AuditRepository
	log   *logger.Logger
	queue chan *entity.AuditEntry
	wg    sync.WaitGroup
}

// NewRecorder construye el recorder y arranca el worker de reintentos.
func NewRecorder(repo repository.AuditRepository, log *logger.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		repo:  repo,
		log:   log,
		queue: make(chan *entity.AuditEntry, queueSize),
	}
	r.wg.Add(1)
	go r.drain()
	return r
}

// Record escribe la entrada. En caso de error la encola para reintento; si la
// cola está llena la entrada se descarta con log de error.
func (r *Recorder) Record(ctx context.Context, entry *entity.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := r.repo.Create(ctx, entry); err == nil {
		return
	} else {
		r.log.Warn().Err(err).
			Str("action", entry.Action).
			Str("resource_id", entry.ResourceID).
			Msg("write de auditoría falló, encolando reintento")
	}
	select {
	case r.queue <- entry:
	default:
		r.log.Error().
			Str("action", entry.Action).
			Str("resource_id", entry.ResourceID).
			Msg("cola de auditoría llena, entrada descartada")
	}
}

// Close cierra la cola y espera a que el worker drene lo pendiente.
func (r *Recorder) Close() {
	close(r.queue)
	r.wg.Wait()
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	for entry := range r.queue {
		backoff := 100 * time.Millisecond
		var err error
		for attempt := 0; attempt < 3; attempt++ {
			if err = r.repo.Create(context.Background(), entry); err == nil {
				break
			}
			time.Sleep(backoff)
			backoff *= 2
		}
		if err != nil {
			r.log.Error().Err(err).
				Str("action", entry.Action).
				Str("resource_id", entry.ResourceID).
				Msg("entrada de auditoría perdida tras reintentos")
		}
	}
}

// NewEntry arma una entrada con snapshots before/after serializados a JSON.
func NewEntry(actor entity.Actor, action, resource, resourceID string, before, after any) *entity.AuditEntry {
	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)
	return &entity.AuditEntry{
		ID:         uuid.New().String(),
		ActorID:    actor.ID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Before:     b,
		After:      a,
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
		SessionID:  actor.SessionID,
		CreatedAt:  time.Now(),
	}
}
