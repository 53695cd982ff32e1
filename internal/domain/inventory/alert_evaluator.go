package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// Operaciones resultantes de una evaluación de alertas.
const (
	TransitionCreate  = "create"
	TransitionRefresh = "refresh"
	TransitionResolve = "resolve"
)

// AlertTransition es un cambio de estado de alerta a aplicar sobre el store.
type AlertTransition struct {
	Op    string
	Alert *entity.StockAlert
}

// EvaluateAlerts es la función pura del evaluador: mapea (stock nuevo, umbrales,
// alertas activas previas) → transiciones. Orden de decisión (gana la primera):
//
//  1. stock == 0            → out_of_stock, prioridad critical
//  2. 0 < stock <= minStock → low_stock (critical si stock <= minStock/2, si no high)
//  3. stock >= maxStock > 0 → overstock, prioridad low
//  4. si no                 → resolver toda alerta activa del producto
//
// Idempotente: reevaluar sin cambio de stock refresca el snapshot de la alerta
// existente en lugar de crear una segunda activa del mismo tipo. Una low_stock
// activa se convierte (resuelve) cuando el stock llega a cero, sin duplicados.
func EvaluateAlerts(p *entity.Product, active []*entity.StockAlert, now time.Time) []AlertTransition {
	wantType, wantPriority := desiredAlert(p)

	var transitions []AlertTransition
	refreshed := false
	for _, a := range active {
		if a.Status != entity.AlertStatusActive {
			continue
		}
		if a.Type == wantType {
			updated := *a
			updated.Priority = wantPriority
			updated.StockSnapshot = p.CurrentStock
			updated.MinSnapshot = p.MinStock
			updated.MaxSnapshot = p.MaxStock
			updated.UpdatedAt = now
			transitions = append(transitions, AlertTransition{Op: TransitionRefresh, Alert: &updated})
			refreshed = true
			continue
		}
		resolved := *a
		resolved.Status = entity.AlertStatusResolved
		resolved.UpdatedAt = now
		resolved.ResolvedAt = &now
		transitions = append(transitions, AlertTransition{Op: TransitionResolve, Alert: &resolved})
	}

	if wantType != "" && !refreshed {
		transitions = append(transitions, AlertTransition{Op: TransitionCreate, Alert: &entity.StockAlert{
			ID:            uuid.New().String(),
			ProductID:     p.ID,
			Type:          wantType,
			Priority:      wantPriority,
			Status:        entity.AlertStatusActive,
			StockSnapshot: p.CurrentStock,
			MinSnapshot:   p.MinStock,
			MaxSnapshot:   p.MaxStock,
			CreatedAt:     now,
			UpdatedAt:     now,
		}})
	}
	return transitions
}

// desiredAlert decide qué alerta (si alguna) debe quedar activa para el stock actual.
func desiredAlert(p *entity.Product) (alertType, priority string) {
	switch {
	case p.CurrentStock == 0:
		return entity.AlertTypeOutOfStock, entity.AlertPriorityCritical
	case p.MinStock > 0 && p.CurrentStock <= p.MinStock:
		if p.CurrentStock*2 <= p.MinStock {
			return entity.AlertTypeLowStock, entity.AlertPriorityCritical
		}
		return entity.AlertTypeLowStock, entity.AlertPriorityHigh
	case p.MaxStock > 0 && p.CurrentStock >= p.MaxStock:
		return entity.AlertTypeOverstock, entity.AlertPriorityLow
	}
	return "", ""
}
