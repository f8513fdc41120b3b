package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

var stockRecordFields = []string{
	"id::text", "product_id", "warehouse_id", "location_id",
	"quantity_on_hand", "quantity_available", "quantity_reserved", "quantity_in_transit",
	"reorder_point", "reorder_quantity", "min_stock_level", "max_stock_level",
	"average_cost", "last_purchase_cost", "stock_status", "is_active",
	"last_movement_at", "created_at", "updated_at",
}

var stockRecordColumns = stockRecordSelect("")

// stockRecordSelect lista de columnas para SELECT, con alias de tabla opcional.
func stockRecordSelect(alias string) string {
	if alias == "" {
		return strings.Join(stockRecordFields, ", ")
	}
	cols := make([]string, len(stockRecordFields))
	for i, f := range stockRecordFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func scanStockRecord(row pgx.Row, extra ...any) (*entity.StockRecord, error) {
	var s entity.StockRecord
	var status string
	dest := []any{
		&s.ID, &s.ProductID, &s.WarehouseID, &s.LocationID,
		&s.QuantityOnHand, &s.QuantityAvailable, &s.QuantityReserved, &s.QuantityInTransit,
		&s.ReorderPoint, &s.ReorderQuantity, &s.MinStockLevel, &s.MaxStockLevel,
		&s.AverageCost, &s.LastPurchaseCost, &status, &s.IsActive,
		&s.LastMovementAt, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	s.StockStatus = entity.StockStatus(status)
	return &s, nil
}

func (r *StockRecordRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockRecord, error) {
	rec, err := scanStockRecord(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return rec, nil
}

// GetByID obtiene un registro por ID.
func (r *StockRecordRepo) GetByID(ctx context.Context, id string) (*entity.StockRecord, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + stockRecordColumns + ` FROM stock_records WHERE id = $1`
	return r.getOne(ctx, "get stock record", query, id)
}

// GetByKey obtiene el registro de un producto en bodega/ubicación.
func (r *StockRecordRepo) GetByKey(ctx context.Context, productID, warehouseID, locationID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3`
	return r.getOne(ctx, "get stock record by key", query, productID, warehouseID, locationID)
}

// GetForUpdate obtiene el registro y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + stockRecordColumns + ` FROM stock_records WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "get stock record for update", query, id)
}

// GetByKeyForUpdate igual que GetByKey pero bloqueando la fila.
func (r *StockRecordRepo) GetByKeyForUpdate(ctx context.Context, productID, warehouseID, locationID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3
		FOR UPDATE`
	return r.getOne(ctx, "get stock record by key for update", query, productID, warehouseID, locationID)
}

// Create inserta un registro nuevo. Si otra transacción creó la misma clave devuelve ErrConflict.
func (r *StockRecordRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (
			id, product_id, warehouse_id, location_id,
			quantity_on_hand, quantity_available, quantity_reserved, quantity_in_transit,
			reorder_point, reorder_quantity, min_stock_level, max_stock_level,
			average_cost, last_purchase_cost, stock_status, is_active,
			last_movement_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.WarehouseID, rec.LocationID,
		rec.QuantityOnHand, rec.QuantityAvailable, rec.QuantityReserved, rec.QuantityInTransit,
		rec.ReorderPoint, rec.ReorderQuantity, rec.MinStockLevel, rec.MaxStockLevel,
		rec.AverageCost, rec.LastPurchaseCost, string(rec.StockStatus), rec.IsActive,
		rec.LastMovementAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("registro de stock %s/%s ya existe: %w", rec.ProductID, rec.WarehouseID, domain.ErrConflict)
		}
		return mapError("insert stock record", err)
	}
	return nil
}

// Update persiste cantidades, umbrales, costo y estado. La clave producto/bodega/ubicación no cambia.
func (r *StockRecordRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		UPDATE stock_records SET
			quantity_on_hand = $2, quantity_available = $3, quantity_reserved = $4, quantity_in_transit = $5,
			reorder_point = $6, reorder_quantity = $7, min_stock_level = $8, max_stock_level = $9,
			average_cost = $10, last_purchase_cost = $11, stock_status = $12, is_active = $13,
			last_movement_at = $14, updated_at = $15
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		rec.ID,
		rec.QuantityOnHand, rec.QuantityAvailable, rec.QuantityReserved, rec.QuantityInTransit,
		rec.ReorderPoint, rec.ReorderQuantity, rec.MinStockLevel, rec.MaxStockLevel,
		rec.AverageCost, rec.LastPurchaseCost, string(rec.StockStatus), rec.IsActive,
		rec.LastMovementAt, rec.UpdatedAt,
	)
	if err != nil {
		return mapError("update stock record", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("registro de stock %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}
