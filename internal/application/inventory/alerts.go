package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-core/internal/application/audit"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/inventory"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	"github.com/jhoicas/inventario-core/pkg/logger"
)

// AlertUseCase aplica las transiciones del evaluador sobre el store de alertas
// y expone las operaciones manuales (resolver, ignorar). El store de alertas
// es propiedad del evaluador: los callers solo transicionan estados, nunca
// editan umbrales.
type AlertUseCase struct {
	alerts   repository.StockAlertRepository
	auditRec AuditRecorder
	log      *logger.Logger
}

// NewAlertUseCase construye el caso de uso de alertas.
func NewAlertUseCase(alerts repository.StockAlertRepository, auditRec AuditRecorder, log *logger.Logger) *AlertUseCase {
	return &AlertUseCase{alerts: alerts, auditRec: auditRec, log: log}
}

// Reevaluate corre el evaluador puro contra las alertas activas del producto y
// persiste las transiciones. Idempotente: con stock sin cambios refresca la
// alerta existente en lugar de duplicarla. Se invoca tras cada mutación de
// stock y tras cambios de umbrales del producto.
func (uc *AlertUseCase) Reevaluate(ctx context.Context, p *entity.Product) error {
	active, err := uc.alerts.GetActiveByProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, tr := range inventory.EvaluateAlerts(p, active, time.Now()) {
		switch tr.Op {
		case inventory.TransitionCreate:
			err = uc.alerts.Create(ctx, tr.Alert)
		case inventory.TransitionRefresh, inventory.TransitionResolve:
			err = uc.alerts.Update(ctx, tr.Alert)
		}
		if err != nil {
			return fmt.Errorf("aplicar transición %s de alerta %s: %w", tr.Op, tr.Alert.Type, err)
		}
	}
	return nil
}

// Resolve marca manualmente una alerta activa como resuelta.
func (uc *AlertUseCase) Resolve(ctx context.Context, actor entity.Actor, alertID string) error {
	return uc.transition(ctx, actor, alertID, entity.AlertStatusResolved, entity.AuditActionResolveAlert)
}

// Ignore marca manualmente una alerta activa como ignorada.
func (uc *AlertUseCase) Ignore(ctx context.Context, actor entity.Actor, alertID string) error {
	return uc.transition(ctx, actor, alertID, entity.AlertStatusIgnored, entity.AuditActionIgnoreAlert)
}

// transition pasa una alerta active → resolved/ignored. Los estados terminales
// no se reabren: una nueva brecha crea una alerta nueva.
func (uc *AlertUseCase) transition(ctx context.Context, actor entity.Actor, alertID, status, auditAction string) error {
	alert, err := uc.alerts.GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	if alert == nil {
		return fmt.Errorf("alerta %s: %w", alertID, domain.ErrNotFound)
	}
	if alert.Status != entity.AlertStatusActive {
		return fmt.Errorf("alerta %s ya está %s: %w", alertID, alert.Status, domain.ErrConflict)
	}

	before := *alert
	now := time.Now()
	alert.Status = status
	alert.UpdatedAt = now
	alert.ResolvedBy = &actor.ID
	alert.ResolvedAt = &now
	if err := uc.alerts.Update(ctx, alert); err != nil {
		return err
	}

	uc.auditRec.Record(ctx, audit.NewEntry(actor, auditAction, "stock_alert", alert.ID, &before, alert))
	return nil
}
