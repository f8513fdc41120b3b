package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// DefaultReorderTopN cantidad máxima de sugerencias que se materializan por bodega.
const DefaultReorderTopN = 50

// ReplenishmentUseCase genera la lista de reposición: registros bajo punto de reorden
// con la cantidad sugerida de pedido, servida desde la caché de reorden.
type ReplenishmentUseCase struct {
	reorderRepo repository.ReorderRepository
	cache       *ReorderCache
	topN        int
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(reorderRepo repository.ReorderRepository, cache *ReorderCache, topN int) *ReplenishmentUseCase {
	if topN <= 0 {
		topN = DefaultReorderTopN
	}
	return &ReplenishmentUseCase{
		reorderRepo: reorderRepo,
		cache:       cache,
		topN:        topN,
	}
}

// GetReorderSuggestions devuelve las sugerencias ordenadas por mayor déficit.
// warehouseID puede ser vacío para considerar todas las bodegas. Nunca devuelve error:
// ante fallas del repositorio sirve el último valor bueno o una lista vacía.
func (uc *ReplenishmentUseCase) GetReorderSuggestions(ctx context.Context, warehouseID string) []dto.ReorderSuggestionDTO {
	return uc.cache.Get(ctx, warehouseID, uc.load)
}

func (uc *ReplenishmentUseCase) load(ctx context.Context, warehouseID string) ([]dto.ReorderSuggestionDTO, error) {
	ctx, span := tracer.Start(ctx, "inventory.LoadReorderSuggestions")
	candidates, err := uc.reorderRepo.ListBelowReorderPoint(ctx, warehouseID, uc.topN)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	suggestions := make([]dto.ReorderSuggestionDTO, 0, len(candidates))
	for _, c := range candidates {
		rec := c.Record
		reorderPoint := int64(0)
		if rec.ReorderPoint != nil {
			reorderPoint = *rec.ReorderPoint
		}
		qty := inventory.SuggestedOrderQuantity(rec)
		suggestions = append(suggestions, dto.ReorderSuggestionDTO{
			StockRecordID:      rec.ID,
			ProductID:          rec.ProductID,
			WarehouseID:        rec.WarehouseID,
			SKU:                c.ProductSKU,
			ProductName:        c.ProductName,
			QuantityAvailable:  rec.QuantityAvailable,
			ReorderPoint:       reorderPoint,
			Deficit:            reorderPoint - rec.QuantityAvailable,
			SuggestedOrderQty:  qty,
			UnitCost:           rec.AverageCost,
			EstimatedOrderCost: rec.AverageCost.Mul(decimal.NewFromInt(qty)),
			SupplierID:         c.SupplierID,
			SupplierName:       c.SupplierName,
			LeadTimeDays:       c.LeadTimeDays,
			GeneratedAt:        now,
		})
	}
	// Ordenar: mayor déficit primero; empate por menor disponible.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Deficit != b.Deficit {
			return a.Deficit > b.Deficit
		}
		return a.QuantityAvailable < b.QuantityAvailable
	})
	if len(suggestions) > uc.topN {
		suggestions = suggestions[:uc.topN]
	}
	// Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
