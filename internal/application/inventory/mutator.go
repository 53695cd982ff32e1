package inventory

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-core/internal/application/audit"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/inventory"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
	"github.com/jhoicas/inventario-core/pkg/logger"
)

// MutatorConfig parámetros del reintento optimista.
type MutatorConfig struct {
	MaxRetries   int           // intentos totales del ciclo leer-computar-escribir
	RetryBackoff time.Duration // backoff base; crece exponencial con jitter
}

// InventoryMutator es el núcleo transaccional del motor: valida el cambio de
// cantidad solicitado, computa el stock nuevo, escribe producto y entrada del
// libro como unidad atómica y dispara la reevaluación de alertas y la
// auditoría después del commit.
//
// Concurrencia: cada mutación lee la versión del producto y comete condicional
// sobre ella (UpdateStock). Un conflicto de versión reintenta el ciclo completo
// con backoff con jitter hasta MaxRetries; agotado el presupuesto surge
// ErrConflict. Alertas y auditoría son post-commit: sus fallas se loguean y
// reintentan fuera de banda, nunca revierten el stock ya confirmado.
type InventoryMutator struct {
	txRunner TxRunner
	alerts   *AlertUseCase
	auditRec AuditRecorder
	log      *logger.Logger
	cfg      MutatorConfig
}

// NewInventoryMutator construye el mutador. Dependencias explícitas, sin estado global.
func NewInventoryMutator(txRunner TxRunner, alerts *AlertUseCase, auditRec AuditRecorder, log *logger.Logger, cfg MutatorConfig) *InventoryMutator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 25 * time.Millisecond
	}
	return &InventoryMutator{txRunner: txRunner, alerts: alerts, auditRec: auditRec, log: log, cfg: cfg}
}

// BatchInput datos de lote para una entrada de stock.
type BatchInput struct {
	BatchNumber       string
	ManufacturingDate time.Time
	ExpirationDate    *time.Time
}

// StockInInput entrada para RecordStockIn.
type StockInInput struct {
	ProductID  string
	Quantity   int64
	UnitCost   decimal.Decimal
	Reference  string
	Batch      *BatchInput
	ToLocation string
}

// StockOutInput entrada para RecordStockOut.
type StockOutInput struct {
	ProductID    string
	Quantity     int64
	Reason       string // vacío = sale
	Reference    string
	FromLocation string
}

// AdjustmentInput entrada para RecordAdjustment. Delta es firmado.
type AdjustmentInput struct {
	ProductID string
	Delta     int64
	Reason    string
	Reference string
}

// TransferInput entrada para TransferStock.
type TransferInput struct {
	FromProductID string
	ToProductID   string
	Quantity      int64
	Reference     string
	FromLocation  string
	ToLocation    string
}

// TransferResult productos resultantes de un traslado.
type TransferResult struct {
	From *entity.Product
	To   *entity.Product
}

// RecordStockIn registra una entrada: suma cantidad, recalcula el costo
// promedio ponderado y agrega la entrada al libro. Para productos con
// seguimiento por lote el dato de lote es obligatorio.
func (m *InventoryMutator) RecordStockIn(ctx context.Context, actor entity.Actor, in StockInInput) (*entity.Product, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return nil, fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
	}
	if in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("costo unitario negativo: %w", domain.ErrInvalidInput)
	}
	if in.Batch != nil && in.Batch.BatchNumber == "" {
		return nil, fmt.Errorf("número de lote vacío: %w", domain.ErrInvalidInput)
	}

	var before, after *entity.Product
	err := m.withRetry(ctx, func() error {
		return m.txRunner.Run(ctx, func(
			productRepo repository.ProductRepository,
			movRepo repository.StockMovementRepository,
			batchRepo repository.ProductBatchRepository,
		) error {
			p, err := m.loadActive(ctx, productRepo, in.ProductID)
			if err != nil {
				return err
			}
			if p.BatchTracked && in.Batch == nil {
				return fmt.Errorf("producto con seguimiento por lote requiere datos de lote: %w", domain.ErrInvalidInput)
			}
			snapshot := *p
			before = &snapshot

			now := time.Now()
			newStock := p.CurrentStock + in.Quantity
			newCost := inventory.WeightedAverageCost(p.CurrentStock, p.UnitCost, in.Quantity, in.UnitCost)

			if err := productRepo.UpdateStock(ctx, p.ID, newStock, newCost, p.Version); err != nil {
				return err
			}
			if p.BatchTracked {
				if err := batchRepo.Upsert(ctx, &entity.ProductBatch{
					ID:                uuid.New().String(),
					ProductID:         p.ID,
					BatchNumber:       in.Batch.BatchNumber,
					Quantity:          in.Quantity,
					ManufacturingDate: in.Batch.ManufacturingDate,
					ExpirationDate:    in.Batch.ExpirationDate,
					CreatedAt:         now,
					UpdatedAt:         now,
				}); err != nil {
					return err
				}
			}

			mov := &entity.StockMovement{
				ID:          uuid.New().String(),
				ProductID:   p.ID,
				Type:        entity.MovementTypeIn,
				Reason:      entity.ReasonPurchase,
				Quantity:    in.Quantity,
				StockBefore: p.CurrentStock,
				StockAfter:  newStock,
				UnitCost:    in.UnitCost,
				TotalCost:   in.UnitCost.Mul(decimal.NewFromInt(in.Quantity)),
				Reference:   in.Reference,
				CreatedAt:   now,
				CreatedBy:   actor.ID,
			}
			if in.Batch != nil {
				mov.BatchNumber = &in.Batch.BatchNumber
			}
			if in.ToLocation != "" {
				mov.ToLocation = &in.ToLocation
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}

			result := *p
			result.CurrentStock = newStock
			result.UnitCost = newCost
			result.Version = p.Version + 1
			result.UpdatedAt = now
			after = &result
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	m.afterCommit(ctx, actor, entity.AuditActionStockIn, before, after)
	return after, nil
}

// RecordStockOut registra una salida. Falla con ErrInsufficientStock si la
// cantidad supera el stock actual. En productos con seguimiento por lote la
// asignación es FIFO por fecha de fabricación más antigua, todo-o-nada.
func (m *InventoryMutator) RecordStockOut(ctx context.Context, actor entity.Actor, in StockOutInput) (*entity.Product, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return nil, fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
	}
	reason := in.Reason
	if reason == "" {
		reason = entity.ReasonSale
	}
	if !entity.ValidReason(reason) {
		return nil, fmt.Errorf("razón %q no soportada: %w", reason, domain.ErrInvalidInput)
	}

	var before, after *entity.Product
	err := m.withRetry(ctx, func() error {
		return m.txRunner.Run(ctx, func(
			productRepo repository.ProductRepository,
			movRepo repository.StockMovementRepository,
			batchRepo repository.ProductBatchRepository,
		) error {
			p, err := m.loadActive(ctx, productRepo, in.ProductID)
			if err != nil {
				return err
			}
			if in.Quantity > p.CurrentStock {
				return fmt.Errorf("solicitado %d, disponible %d: %w", in.Quantity, p.CurrentStock, domain.ErrInsufficientStock)
			}
			snapshot := *p
			before = &snapshot

			now := time.Now()
			newStock := p.CurrentStock - in.Quantity

			var allocations []inventory.BatchAllocation
			if p.BatchTracked {
				batches, err := batchRepo.ListAvailableFIFO(ctx, p.ID)
				if err != nil {
					return err
				}
				allocations, err = inventory.AllocateFIFO(batches, in.Quantity)
				if err != nil {
					return err
				}
			}

			if err := productRepo.UpdateStock(ctx, p.ID, newStock, p.UnitCost, p.Version); err != nil {
				return err
			}

			if err := m.appendOutMovements(ctx, movRepo, batchRepo, p, allocations, outMovementSpec{
				movType:      entity.MovementTypeOut,
				reason:       reason,
				quantity:     in.Quantity,
				reference:    in.Reference,
				fromLocation: in.FromLocation,
				actorID:      actor.ID,
				now:          now,
			}); err != nil {
				return err
			}

			result := *p
			result.CurrentStock = newStock
			result.Version = p.Version + 1
			result.UpdatedAt = now
			after = &result
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	m.afterCommit(ctx, actor, entity.AuditActionStockOut, before, after)
	return after, nil
}

// RecordAdjustment aplica un delta firmado. Falla con ErrInvalidInput si el
// resultado quedaría negativo. Un ajuste negativo en producto con lotes
// consume lotes en orden FIFO igual que una salida.
func (m *InventoryMutator) RecordAdjustment(ctx context.Context, actor entity.Actor, in AdjustmentInput) (*entity.Product, error) {
	if in.ProductID == "" || in.Delta == 0 {
		return nil, fmt.Errorf("delta no puede ser cero: %w", domain.ErrInvalidInput)
	}
	if !entity.ValidReason(in.Reason) {
		return nil, fmt.Errorf("razón %q no soportada: %w", in.Reason, domain.ErrInvalidInput)
	}

	var before, after *entity.Product
	err := m.withRetry(ctx, func() error {
		return m.txRunner.Run(ctx, func(
			productRepo repository.ProductRepository,
			movRepo repository.StockMovementRepository,
			batchRepo repository.ProductBatchRepository,
		) error {
			p, err := m.loadActive(ctx, productRepo, in.ProductID)
			if err != nil {
				return err
			}
			newStock := p.CurrentStock + in.Delta
			if newStock < 0 {
				return fmt.Errorf("ajuste dejaría stock en %d: %w", newStock, domain.ErrInvalidInput)
			}
			snapshot := *p
			before = &snapshot

			now := time.Now()

			var allocations []inventory.BatchAllocation
			if p.BatchTracked && in.Delta < 0 {
				batches, err := batchRepo.ListAvailableFIFO(ctx, p.ID)
				if err != nil {
					return err
				}
				allocations, err = inventory.AllocateFIFO(batches, -in.Delta)
				if err != nil {
					return err
				}
			}

			if err := productRepo.UpdateStock(ctx, p.ID, newStock, p.UnitCost, p.Version); err != nil {
				return err
			}

			if in.Delta < 0 && len(allocations) > 0 {
				if err := m.appendOutMovements(ctx, movRepo, batchRepo, p, allocations, outMovementSpec{
					movType:   entity.MovementTypeAdjustment,
					reason:    in.Reason,
					quantity:  -in.Delta,
					reference: in.Reference,
					actorID:   actor.ID,
					now:       now,
				}); err != nil {
					return err
				}
			} else {
				mov := &entity.StockMovement{
					ID:          uuid.New().String(),
					ProductID:   p.ID,
					Type:        entity.MovementTypeAdjustment,
					Reason:      in.Reason,
					Quantity:    in.Delta,
					StockBefore: p.CurrentStock,
					StockAfter:  newStock,
					UnitCost:    p.UnitCost,
					TotalCost:   p.UnitCost.Mul(decimal.NewFromInt(in.Delta)),
					Reference:   in.Reference,
					CreatedAt:   now,
					CreatedBy:   actor.ID,
				}
				if err := movRepo.Create(ctx, mov); err != nil {
					return err
				}
			}

			result := *p
			result.CurrentStock = newStock
			result.Version = p.Version + 1
			result.UpdatedAt = now
			after = &result
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	m.afterCommit(ctx, actor, entity.AuditActionStockAdjust, before, after)
	return after, nil
}

// TransferStock mueve cantidad entre dos productos como unidad atómica, sin
// efecto parcial: el origen registra la salida igual que RecordStockOut (una
// entrada por lote consumido cuando hay seguimiento), el destino una entrada
// de ingreso, todas enlazadas por TransferID. Para evitar deadlocks entre
// traslados opuestos, los productos se procesan en orden lexicográfico de ID,
// no en orden de llamada.
func (m *InventoryMutator) TransferStock(ctx context.Context, actor entity.Actor, in TransferInput) (*TransferResult, error) {
	if in.FromProductID == "" || in.ToProductID == "" || in.Quantity <= 0 {
		return nil, fmt.Errorf("traslado requiere origen, destino y cantidad positiva: %w", domain.ErrInvalidInput)
	}
	if in.FromProductID == in.ToProductID {
		return nil, fmt.Errorf("origen y destino son el mismo producto: %w", domain.ErrInvalidInput)
	}

	var result *TransferResult
	var beforePair, afterPair [2]*entity.Product
	transferID := uuid.New().String()

	err := m.withRetry(ctx, func() error {
		return m.txRunner.Run(ctx, func(
			productRepo repository.ProductRepository,
			movRepo repository.StockMovementRepository,
			batchRepo repository.ProductBatchRepository,
		) error {
			// Orden total por ID para el scope de ambos productos.
			ids := []string{in.FromProductID, in.ToProductID}
			sort.Strings(ids)

			loaded := map[string]*entity.Product{}
			for _, id := range ids {
				p, err := m.loadActive(ctx, productRepo, id)
				if err != nil {
					return err
				}
				loaded[id] = p
			}
			from, to := loaded[in.FromProductID], loaded[in.ToProductID]
			if in.Quantity > from.CurrentStock {
				return fmt.Errorf("solicitado %d, disponible %d en origen: %w", in.Quantity, from.CurrentStock, domain.ErrInsufficientStock)
			}

			now := time.Now()

			var allocations []inventory.BatchAllocation
			if from.BatchTracked {
				batches, err := batchRepo.ListAvailableFIFO(ctx, from.ID)
				if err != nil {
					return err
				}
				allocations, err = inventory.AllocateFIFO(batches, in.Quantity)
				if err != nil {
					return err
				}
			}

			newStocks := map[string]int64{
				from.ID: from.CurrentStock - in.Quantity,
				to.ID:   to.CurrentStock + in.Quantity,
			}
			for _, id := range ids {
				p := loaded[id]
				if err := productRepo.UpdateStock(ctx, id, newStocks[id], p.UnitCost, p.Version); err != nil {
					return err
				}
			}
			// El lado origen se registra igual que una salida: con lotes, una
			// entrada por lote consumido con su número; todas llevan el TransferID.
			if err := m.appendOutMovements(ctx, movRepo, batchRepo, from, allocations, outMovementSpec{
				movType:      entity.MovementTypeTransfer,
				reason:       entity.ReasonTransfer,
				quantity:     in.Quantity,
				reference:    in.Reference,
				fromLocation: in.FromLocation,
				toLocation:   in.ToLocation,
				transferID:   &transferID,
				actorID:      actor.ID,
				now:          now,
			}); err != nil {
				return err
			}

			inMov := &entity.StockMovement{
				ID:          uuid.New().String(),
				ProductID:   to.ID,
				Type:        entity.MovementTypeTransfer,
				Reason:      entity.ReasonTransfer,
				Quantity:    in.Quantity,
				StockBefore: to.CurrentStock,
				StockAfter:  newStocks[to.ID],
				UnitCost:    from.UnitCost,
				TotalCost:   from.UnitCost.Mul(decimal.NewFromInt(in.Quantity)),
				Reference:   in.Reference,
				TransferID:  &transferID,
				CreatedAt:   now,
				CreatedBy:   actor.ID,
			}
			if in.FromLocation != "" {
				inMov.FromLocation = &in.FromLocation
			}
			if in.ToLocation != "" {
				inMov.ToLocation = &in.ToLocation
			}
			if err := movRepo.Create(ctx, inMov); err != nil {
				return err
			}

			fromBefore, toBefore := *from, *to
			beforePair = [2]*entity.Product{&fromBefore, &toBefore}

			fromAfter, toAfter := *from, *to
			fromAfter.CurrentStock = newStocks[from.ID]
			fromAfter.Version = from.Version + 1
			fromAfter.UpdatedAt = now
			toAfter.CurrentStock = newStocks[to.ID]
			toAfter.Version = to.Version + 1
			toAfter.UpdatedAt = now
			afterPair = [2]*entity.Product{&fromAfter, &toAfter}
			result = &TransferResult{From: &fromAfter, To: &toAfter}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if err := m.alerts.Reevaluate(ctx, afterPair[0]); err != nil {
		m.log.Warn().Err(err).Str("product_id", afterPair[0].ID).Msg("reevaluación de alertas falló tras traslado")
	}
	if err := m.alerts.Reevaluate(ctx, afterPair[1]); err != nil {
		m.log.Warn().Err(err).Str("product_id", afterPair[1].ID).Msg("reevaluación de alertas falló tras traslado")
	}
	m.auditRec.Record(ctx, audit.NewEntry(actor, entity.AuditActionStockTransfer, "transfer", transferID,
		map[string]*entity.Product{"from": beforePair[0], "to": beforePair[1]},
		map[string]*entity.Product{"from": afterPair[0], "to": afterPair[1]},
	))
	return result, nil
}

// outMovementSpec parámetros comunes para registrar salidas en el libro.
type outMovementSpec struct {
	movType      string
	reason       string
	quantity     int64
	reference    string
	fromLocation string
	toLocation   string
	transferID   *string
	actorID      string
	now          time.Time
}

// appendOutMovements descuenta lotes asignados y agrega las entradas del libro
// de una salida. Sin lotes: una sola entrada. Con lotes: una entrada por lote
// consumido, encadenando StockBefore/StockAfter.
func (m *InventoryMutator) appendOutMovements(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	batchRepo repository.ProductBatchRepository,
	p *entity.Product,
	allocations []inventory.BatchAllocation,
	spec outMovementSpec,
) error {
	if len(allocations) == 0 {
		mov := &entity.StockMovement{
			ID:          uuid.New().String(),
			ProductID:   p.ID,
			Type:        spec.movType,
			Reason:      spec.reason,
			Quantity:    -spec.quantity,
			StockBefore: p.CurrentStock,
			StockAfter:  p.CurrentStock - spec.quantity,
			UnitCost:    p.UnitCost,
			TotalCost:   p.UnitCost.Mul(decimal.NewFromInt(-spec.quantity)),
			Reference:   spec.reference,
			TransferID:  spec.transferID,
			CreatedAt:   spec.now,
			CreatedBy:   spec.actorID,
		}
		if spec.fromLocation != "" {
			mov.FromLocation = &spec.fromLocation
		}
		if spec.toLocation != "" {
			mov.ToLocation = &spec.toLocation
		}
		return movRepo.Create(ctx, mov)
	}

	cursor := p.CurrentStock
	for _, alloc := range allocations {
		if err := batchRepo.UpdateQuantity(ctx, alloc.Batch.ID, alloc.Batch.Quantity-alloc.Quantity); err != nil {
			return err
		}
		batchNumber := alloc.Batch.BatchNumber
		mov := &entity.StockMovement{
			ID:          uuid.New().String(),
			ProductID:   p.ID,
			Type:        spec.movType,
			Reason:      spec.reason,
			Quantity:    -alloc.Quantity,
			StockBefore: cursor,
			StockAfter:  cursor - alloc.Quantity,
			UnitCost:    p.UnitCost,
			TotalCost:   p.UnitCost.Mul(decimal.NewFromInt(-alloc.Quantity)),
			Reference:   spec.reference,
			TransferID:  spec.transferID,
			BatchNumber: &batchNumber,
			CreatedAt:   spec.now,
			CreatedBy:   spec.actorID,
		}
		if spec.fromLocation != "" {
			mov.FromLocation = &spec.fromLocation
		}
		if spec.toLocation != "" {
			mov.ToLocation = &spec.toLocation
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		cursor -= alloc.Quantity
	}
	return nil
}

// loadActive carga el producto y valida que exista y esté activo.
func (m *InventoryMutator) loadActive(ctx context.Context, productRepo repository.ProductRepository, id string) (*entity.Product, error) {
	p, err := productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if !p.IsActive() {
		return nil, fmt.Errorf("producto %s inactivo: %w", id, domain.ErrConflict)
	}
	return p, nil
}

// afterCommit dispara reevaluación de alertas y auditoría tras un commit exitoso.
func (m *InventoryMutator) afterCommit(ctx context.Context, actor entity.Actor, action string, before, after *entity.Product) {
	if err := m.alerts.Reevaluate(ctx, after); err != nil {
		m.log.Warn().Err(err).Str("product_id", after.ID).Msg("reevaluación de alertas falló tras mutación")
	}
	m.auditRec.Record(ctx, audit.NewEntry(actor, action, "product", after.ID, before, after))
}

// withRetry reintenta el ciclo completo leer-computar-escribir ante conflictos
// de versión o errores transitorios de BD, con backoff exponencial y jitter.
func (m *InventoryMutator) withRetry(ctx context.Context, fn func() error) error {
	backoff := m.cfg.RetryBackoff
	var lastErr error
	for attempt := 0; attempt < m.cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err

		sleep := backoff + time.Duration(rand.Int63n(int64(backoff)))
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	if errors.Is(lastErr, domain.ErrVersionConflict) {
		return fmt.Errorf("reintentos agotados: %w", domain.ErrConflict)
	}
	return lastErr
}

func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrVersionConflict) || errors.Is(err, domain.ErrDatabase)
}
