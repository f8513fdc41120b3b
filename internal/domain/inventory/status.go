package inventory

import "github.com/jhoicas/inventario-ledger/internal/domain/entity"

// DeriveStatus clasifica el stock a partir de la cantidad resultante y los umbrales.
// El orden importa: out_of_stock, luego low_stock (punto de reorden), luego critical_stock (mínimo).
func DeriveStatus(quantity int64, reorderPoint, minStockLevel *int64) entity.StockStatus {
	switch {
	case quantity <= 0:
		return entity.StockStatusOutOfStock
	case reorderPoint != nil && quantity <= *reorderPoint:
		return entity.StockStatusLowStock
	case minStockLevel != nil && quantity <= *minStockLevel:
		return entity.StockStatusCriticalStock
	default:
		return entity.StockStatusInStock
	}
}

// AlertPriority prioridad del stock_alert para un estado.
func AlertPriority(status entity.StockStatus) string {
	if status == entity.StockStatusOutOfStock {
		return entity.AlertPriorityCritical
	}
	return entity.AlertPriorityHigh
}

// SuggestedOrderQuantity cantidad a pedir para volver a un nivel sano.
// Prioriza ReorderQuantity, luego MaxStockLevel, y si no hay ninguno usa 1.5 × punto de reorden.
func SuggestedOrderQuantity(rec *entity.StockRecord) int64 {
	if rec.ReorderQuantity != nil && *rec.ReorderQuantity > 0 {
		return *rec.ReorderQuantity
	}
	if rec.MaxStockLevel != nil && *rec.MaxStockLevel > rec.QuantityAvailable {
		return *rec.MaxStockLevel - rec.QuantityAvailable
	}
	if rec.ReorderPoint == nil {
		return 0
	}
	ideal := (*rec.ReorderPoint*3 + 1) / 2 // ceil(rp * 1.5)
	if ideal <= rec.QuantityAvailable {
		return 0
	}
	return ideal - rec.QuantityAvailable
}
