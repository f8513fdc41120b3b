package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ListBelowReorderPoint misma selección que la consulta SQL: registro y producto activos,
// punto de reorden positivo y disponible <= punto de reorden.
func (s *Store) ListBelowReorderPoint(_ context.Context, warehouseID string, limit int) ([]repository.ReorderCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]repository.ReorderCandidate, 0)
	for _, rec := range s.records {
		if !rec.IsActive || rec.ReorderPoint == nil || *rec.ReorderPoint <= 0 {
			continue
		}
		if warehouseID != "" && rec.WarehouseID != warehouseID {
			continue
		}
		if rec.QuantityAvailable > *rec.ReorderPoint {
			continue
		}
		product, ok := s.products[rec.ProductID]
		if !ok || !product.IsActive {
			continue
		}
		c := repository.ReorderCandidate{
			Record:      rec.Clone(),
			ProductSKU:  product.SKU,
			ProductName: product.Name,
		}
		if sup, ok := s.suppliers[product.SupplierID]; ok {
			c.SupplierID = sup.ID
			c.SupplierName = sup.Name
			c.LeadTimeDays = sup.LeadTimeDays
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Record, out[j].Record
		da, db := *a.ReorderPoint-a.QuantityAvailable, *b.ReorderPoint-b.QuantityAvailable
		if da != db {
			return da > db
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
