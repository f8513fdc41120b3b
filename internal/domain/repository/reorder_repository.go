package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ReorderCandidate resultado crudo del repositorio para un registro bajo punto de reorden.
type ReorderCandidate struct {
	Record       *entity.StockRecord
	ProductSKU   string
	ProductName  string
	SupplierID   string
	SupplierName string
	LeadTimeDays int
}

// ReorderRepository consulta de solo lectura para sugerencias de reposición.
type ReorderRepository interface {
	// ListBelowReorderPoint devuelve registros activos de productos activos con
	// QuantityAvailable <= ReorderPoint y ReorderPoint > 0, por mayor déficit primero.
	// warehouseID vacío = todas las bodegas.
	ListBelowReorderPoint(ctx context.Context, warehouseID string, limit int) ([]ReorderCandidate, error)
}
