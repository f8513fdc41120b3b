package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// tx escrituras pendientes y bloqueos tomados por una transacción.
type tx struct {
	s         *Store
	held      map[stockKey]struct{}
	staged    map[string]*entity.StockRecord // por ID
	created   map[string]struct{}
	movements []*entity.MovementRecord
}

func newTx(s *Store) *tx {
	return &tx{
		s:       s,
		held:    make(map[stockKey]struct{}),
		staged:  make(map[string]*entity.StockRecord),
		created: make(map[string]struct{}),
	}
}

func (t *tx) lock(ctx context.Context, key stockKey) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	if err := t.s.lockRow(ctx, key); err != nil {
		return err
	}
	t.held[key] = struct{}{}
	return nil
}

func (t *tx) release() {
	for key := range t.held {
		t.s.unlockRow(key)
	}
	t.held = nil
}

// read devuelve la versión vista por la tx: la pendiente si existe, si no la confirmada.
func (t *tx) read(id string) *entity.StockRecord {
	if rec, ok := t.staged[id]; ok {
		return rec.Clone()
	}
	return t.s.getRecord(id)
}

func (t *tx) readByKey(key stockKey) *entity.StockRecord {
	for _, rec := range t.staged {
		if keyOf(rec) == key {
			return rec.Clone()
		}
	}
	return t.s.getRecordByKey(key)
}

func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range t.created {
		rec := t.staged[id]
		if other, ok := s.byKey[keyOf(rec)]; ok && other != id {
			return fmt.Errorf("registro de stock duplicado %s: %w", keyOf(rec), domain.ErrConflict)
		}
	}
	for _, mov := range t.movements {
		if _, ok := s.movByID[mov.ID]; ok {
			return fmt.Errorf("movimiento duplicado %s: %w", mov.ID, domain.ErrConflict)
		}
	}

	for id, rec := range t.staged {
		s.records[id] = rec
		s.byKey[keyOf(rec)] = id
	}
	for _, mov := range t.movements {
		s.movements = append(s.movements, mov)
		s.movByID[mov.ID] = mov
		s.lastByRecord[mov.StockRecordID] = mov
	}
	return nil
}

type txStockRepo struct {
	t *tx
}

func (r *txStockRepo) GetByID(_ context.Context, id string) (*entity.StockRecord, error) {
	return r.t.read(id), nil
}

func (r *txStockRepo) GetByKey(_ context.Context, productID, warehouseID, locationID string) (*entity.StockRecord, error) {
	return r.t.readByKey(stockKey{productID, warehouseID, locationID}), nil
}

func (r *txStockRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	rec := r.t.read(id)
	if rec == nil {
		return nil, nil
	}
	if err := r.t.lock(ctx, keyOf(rec)); err != nil {
		return nil, err
	}
	// Releer ya con el bloqueo: otra tx pudo confirmar mientras esperábamos.
	return r.t.read(id), nil
}

func (r *txStockRepo) GetByKeyForUpdate(ctx context.Context, productID, warehouseID, locationID string) (*entity.StockRecord, error) {
	key := stockKey{productID, warehouseID, locationID}
	if err := r.t.lock(ctx, key); err != nil {
		return nil, err
	}
	return r.t.readByKey(key), nil
}

func (r *txStockRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("registro de stock sin ID: %w", domain.ErrValidation)
	}
	key := keyOf(rec)
	if err := r.t.lock(ctx, key); err != nil {
		return err
	}
	if existing := r.t.readByKey(key); existing != nil {
		return fmt.Errorf("registro de stock duplicado %s: %w", key, domain.ErrConflict)
	}
	if r.t.read(rec.ID) != nil {
		return fmt.Errorf("registro de stock %s ya existe: %w", rec.ID, domain.ErrConflict)
	}
	r.t.staged[rec.ID] = rec.Clone()
	r.t.created[rec.ID] = struct{}{}
	return nil
}

func (r *txStockRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	current := r.t.read(rec.ID)
	if current == nil {
		return fmt.Errorf("registro de stock %s: %w", rec.ID, domain.ErrNotFound)
	}
	if keyOf(current) != keyOf(rec) {
		return fmt.Errorf("la clave producto/bodega/ubicación no se modifica: %w", domain.ErrValidation)
	}
	if err := r.t.lock(ctx, keyOf(rec)); err != nil {
		return err
	}
	r.t.staged[rec.ID] = rec.Clone()
	return nil
}

type txMovementRepo struct {
	t *tx
}

func (r *txMovementRepo) Append(_ context.Context, mov *entity.MovementRecord) error {
	if mov.ID == "" {
		return fmt.Errorf("movimiento sin ID: %w", domain.ErrValidation)
	}
	c := *mov
	r.t.movements = append(r.t.movements, &c)
	return nil
}

func (r *txMovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementRecord, error) {
	for _, mov := range r.t.movements {
		if mov.ID == id {
			c := *mov
			return &c, nil
		}
	}
	return r.t.s.getMovement(id), nil
}

func (r *txMovementRepo) LastForRecord(_ context.Context, stockRecordID string) (*entity.MovementRecord, error) {
	for i := len(r.t.movements) - 1; i >= 0; i-- {
		if mov := r.t.movements[i]; mov.StockRecordID == stockRecordID {
			c := *mov
			return &c, nil
		}
	}
	return r.t.s.lastMovement(stockRecordID), nil
}

// List dentro de una tx consulta solo lo confirmado.
func (r *txMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.MovementRecord, int, error) {
	items, total := r.t.s.listMovements(filter)
	return items, total, nil
}

type committedStockRepo struct {
	s *Store
}

func (r *committedStockRepo) GetByID(_ context.Context, id string) (*entity.StockRecord, error) {
	return r.s.getRecord(id), nil
}

func (r *committedStockRepo) GetByKey(_ context.Context, productID, warehouseID, locationID string) (*entity.StockRecord, error) {
	return r.s.getRecordByKey(stockKey{productID, warehouseID, locationID}), nil
}

// Fuera de una tx el bloqueo no se sostiene más allá de la lectura.
func (r *committedStockRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *committedStockRepo) GetByKeyForUpdate(ctx context.Context, productID, warehouseID, locationID string) (*entity.StockRecord, error) {
	return r.GetByKey(ctx, productID, warehouseID, locationID)
}

func (r *committedStockRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	return r.s.Run(ctx, func(stockRepo repository.StockRecordRepository, _ repository.MovementRepository) error {
		return stockRepo.Create(ctx, rec)
	})
}

func (r *committedStockRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	return r.s.Run(ctx, func(stockRepo repository.StockRecordRepository, _ repository.MovementRepository) error {
		return stockRepo.Update(ctx, rec)
	})
}

type committedMovementRepo struct {
	s *Store
}

func (r *committedMovementRepo) Append(ctx context.Context, mov *entity.MovementRecord) error {
	return r.s.Run(ctx, func(_ repository.StockRecordRepository, movRepo repository.MovementRepository) error {
		return movRepo.Append(ctx, mov)
	})
}

func (r *committedMovementRepo) GetByID(_ context.Context, id string) (*entity.MovementRecord, error) {
	return r.s.getMovement(id), nil
}

func (r *committedMovementRepo) LastForRecord(_ context.Context, stockRecordID string) (*entity.MovementRecord, error) {
	return r.s.lastMovement(stockRecordID), nil
}

func (r *committedMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.MovementRecord, int, error) {
	items, total := r.s.listMovements(filter)
	return items, total, nil
}

func (s *Store) getMovement(id string) *entity.MovementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mov, ok := s.movByID[id]
	if !ok {
		return nil
	}
	c := *mov
	return &c
}

func (s *Store) lastMovement(stockRecordID string) *entity.MovementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mov, ok := s.lastByRecord[stockRecordID]
	if !ok {
		return nil
	}
	c := *mov
	return &c
}

func (s *Store) listMovements(f repository.MovementFilter) ([]*entity.MovementRecord, int) {
	f.Normalize()
	types := make(map[entity.MovementType]struct{}, len(f.Types))
	for _, t := range f.Types {
		types[t] = struct{}{}
	}

	s.mu.RLock()
	matched := make([]*entity.MovementRecord, 0)
	for _, mov := range s.movements {
		if f.StockRecordID != "" && mov.StockRecordID != f.StockRecordID {
			continue
		}
		if f.ProductID != "" && mov.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && mov.WarehouseID != f.WarehouseID {
			continue
		}
		if len(types) > 0 {
			if _, ok := types[mov.MovementType]; !ok {
				continue
			}
		}
		if f.From != nil && mov.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && mov.CreatedAt.After(*f.To) {
			continue
		}
		c := *mov
		matched = append(matched, &c)
	}
	s.mu.RUnlock()

	less := func(a, b *entity.MovementRecord) bool {
		switch f.SortBy {
		case repository.SortByQuantity:
			if a.Quantity != b.Quantity {
				return a.Quantity < b.Quantity
			}
		case repository.SortBySequence:
			if a.Sequence != b.Sequence {
				return a.Sequence < b.Sequence
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ID < b.ID
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if f.Ascending {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	total := len(matched)
	if f.Offset >= total {
		return []*entity.MovementRecord{}, total
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total
}
