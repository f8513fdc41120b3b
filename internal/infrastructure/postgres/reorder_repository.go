package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ReorderRepository = (*ReorderRepo)(nil)

// ReorderRepo consulta de registros bajo punto de reorden con datos de producto y proveedor.
type ReorderRepo struct {
	pool *pgxpool.Pool
}

// NewReorderRepository construye el adaptador de reposición.
func NewReorderRepository(pool *pgxpool.Pool) *ReorderRepo {
	return &ReorderRepo{pool: pool}
}

// ListBelowReorderPoint registros activos con disponible <= punto de reorden, por mayor déficit.
func (r *ReorderRepo) ListBelowReorderPoint(ctx context.Context, warehouseID string, limit int) ([]repository.ReorderCandidate, error) {
	query := `
		SELECT ` + stockRecordSelect("sr") + `,
			p.sku, p.name, COALESCE(s.id, ''), COALESCE(s.name, ''), COALESCE(s.lead_time_days, 0)
		FROM stock_records sr
		JOIN products p ON p.id = sr.product_id
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		WHERE sr.is_active AND p.is_active
			AND sr.reorder_point > 0 AND sr.quantity_available <= sr.reorder_point`
	args := []any{}
	pos := 1
	if warehouseID != "" {
		query += fmt.Sprintf(" AND sr.warehouse_id = $%d", pos)
		args = append(args, warehouseID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY (sr.reorder_point - sr.quantity_available) DESC, sr.id LIMIT $%d", pos)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list below reorder point", err)
	}
	defer rows.Close()
	var list []repository.ReorderCandidate
	for rows.Next() {
		var c repository.ReorderCandidate
		rec, err := scanStockRecord(rows, &c.ProductSKU, &c.ProductName, &c.SupplierID, &c.SupplierName, &c.LeadTimeDays)
		if err != nil {
			return nil, fmt.Errorf("scan reorder candidate: %w", err)
		}
		c.Record = rec
		list = append(list, c)
	}
	return list, rows.Err()
}
