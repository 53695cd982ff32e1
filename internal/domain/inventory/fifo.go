package inventory

import (
	"sort"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// BatchAllocation indica cuánto consumir de un lote en una salida.
type BatchAllocation struct {
	Batch    *entity.ProductBatch
	Quantity int64
}

// AllocateFIFO reparte una salida entre los lotes disponibles consumiendo
// primero el lote de fabricación más antigua. Desempate determinista: número
// de lote asc, luego ID asc. Si la suma de lotes no cubre la cantidad devuelve
// ErrInsufficientStock sin asignación parcial.
func AllocateFIFO(batches []*entity.ProductBatch, quantity int64) ([]BatchAllocation, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	ordered := make([]*entity.ProductBatch, 0, len(batches))
	for _, b := range batches {
		if b.Quantity > 0 {
			ordered = append(ordered, b)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.ManufacturingDate.Equal(b.ManufacturingDate) {
			return a.ManufacturingDate.Before(b.ManufacturingDate)
		}
		if a.BatchNumber != b.BatchNumber {
			return a.BatchNumber < b.BatchNumber
		}
		return a.ID < b.ID
	})

	remaining := quantity
	var allocations []BatchAllocation
	for _, b := range ordered {
		if remaining == 0 {
			break
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		allocations = append(allocations, BatchAllocation{Batch: b, Quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, domain.ErrInsufficientStock
	}
	return allocations, nil
}
