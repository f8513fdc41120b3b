package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `
	id::text, stock_record_id::text, product_id, warehouse_id, movement_type,
	quantity, unit_cost, total_cost,
	reference_type, reference_id, reference_number, performed_by, notes,
	quantity_after, running_total, sequence, created_at`

// Columnas permitidas en ORDER BY; nunca se interpola texto del caller.
var movementSortColumns = map[repository.MovementSort]string{
	repository.SortByCreatedAt: "created_at",
	repository.SortByQuantity:  "quantity",
	repository.SortBySequence:  "sequence",
}

// MovementRepo ledger de movimientos sobre PostgreSQL (usable con pool o tx). Solo inserción.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.MovementRecord, error) {
	var m entity.MovementRecord
	var movType string
	err := row.Scan(
		&m.ID, &m.StockRecordID, &m.ProductID, &m.WarehouseID, &movType,
		&m.Quantity, &m.UnitCost, &m.TotalCost,
		&m.Reference.Type, &m.Reference.ID, &m.Reference.Number, &m.PerformedBy, &m.Notes,
		&m.QuantityAfter, &m.RunningTotal, &m.Sequence, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.MovementType = entity.MovementType(movType)
	return &m, nil
}

// Append persiste una entrada del ledger.
func (r *MovementRepo) Append(ctx context.Context, m *entity.MovementRecord) error {
	query := `
		INSERT INTO stock_movements (
			id, stock_record_id, product_id, warehouse_id, movement_type,
			quantity, unit_cost, total_cost,
			reference_type, reference_id, reference_number, performed_by, notes,
			quantity_after, running_total, sequence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.StockRecordID, m.ProductID, m.WarehouseID, string(m.MovementType),
		m.Quantity, m.UnitCost, m.TotalCost,
		m.Reference.Type, m.Reference.ID, m.Reference.Number, m.PerformedBy, m.Notes,
		m.QuantityAfter, m.RunningTotal, m.Sequence, m.CreatedAt,
	)
	return mapError("insert stock movement", err)
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementRecord, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get movement", err)
	}
	return m, nil
}

// LastForRecord última entrada del registro. Se llama con la fila de stock ya bloqueada,
// por eso no hay carrera en la secuencia.
func (r *MovementRepo) LastForRecord(ctx context.Context, stockRecordID string) (*entity.MovementRecord, error) {
	if !isUUID(stockRecordID) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE stock_record_id = $1
		ORDER BY sequence DESC LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, stockRecordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("last movement", err)
	}
	return m, nil
}

// List historial filtrado, ordenado y paginado, más el total sin paginar.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementRecord, int, error) {
	f.Normalize()
	if f.StockRecordID != "" && !isUUID(f.StockRecordID) {
		return []*entity.MovementRecord{}, 0, nil
	}
	where, args := movementWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM stock_movements` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count movements", err)
	}

	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	pos := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM stock_movements%s ORDER BY %s %s, sequence %s, id %s LIMIT $%d OFFSET $%d`,
		movementColumns, where, movementSortColumns[f.SortBy], dir, dir, dir, pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list movements", err)
	}
	defer rows.Close()
	list := make([]*entity.MovementRecord, 0, f.Limit)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list movements", err)
	}
	return list, total, nil
}

func movementWhere(f repository.MovementFilter) (string, []any) {
	var conds []string
	var args []any
	pos := 1
	add := func(cond string, arg any) {
		conds = append(conds, fmt.Sprintf(cond, pos))
		args = append(args, arg)
		pos++
	}
	if f.StockRecordID != "" {
		add("stock_record_id = $%d", f.StockRecordID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		add("movement_type = ANY($%d)", types)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
