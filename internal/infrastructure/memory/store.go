// Package memory implementa los puertos del motor de stock en memoria del proceso.
// Reproduce la semántica del adaptador PostgreSQL: bloqueo por fila durante la transacción,
// escrituras visibles solo después del commit y ledger solo de inserción.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner           = (*Store)(nil)
	_ repository.CatalogRepository = (*Store)(nil)
	_ repository.ReorderRepository = (*Store)(nil)
)

type stockKey struct {
	productID, warehouseID, locationID string
}

func (k stockKey) String() string {
	return k.productID + "|" + k.warehouseID + "|" + k.locationID
}

func keyOf(rec *entity.StockRecord) stockKey {
	return stockKey{rec.ProductID, rec.WarehouseID, rec.LocationID}
}

// Store estado confirmado más los bloqueos de fila. Seguro para uso concurrente.
type Store struct {
	mu           sync.RWMutex
	records      map[string]*entity.StockRecord
	byKey        map[stockKey]string
	movements    []*entity.MovementRecord // orden de commit
	movByID      map[string]*entity.MovementRecord
	lastByRecord map[string]*entity.MovementRecord

	products   map[string]*entity.Product
	suppliers  map[string]*entity.Supplier
	warehouses map[string]*entity.Warehouse

	locksMu  sync.Mutex
	rowLocks map[stockKey]chan struct{}
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		records:      make(map[string]*entity.StockRecord),
		byKey:        make(map[stockKey]string),
		movByID:      make(map[string]*entity.MovementRecord),
		lastByRecord: make(map[string]*entity.MovementRecord),
		products:     make(map[string]*entity.Product),
		suppliers:    make(map[string]*entity.Supplier),
		warehouses:   make(map[string]*entity.Warehouse),
		rowLocks:     make(map[stockKey]chan struct{}),
	}
}

// Run ejecuta fn con repositorios atados a una transacción. Si fn devuelve error nada se aplica.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRecordRepository,
	movRepo repository.MovementRepository,
) error) error {
	t := newTx(s)
	defer t.release()

	if err := fn(&txStockRepo{t: t}, &txMovementRepo{t: t}); err != nil {
		return err
	}
	return t.commit()
}

// StockRecords repositorio de lecturas confirmadas (fuera de transacción).
func (s *Store) StockRecords() repository.StockRecordRepository {
	return &committedStockRepo{s: s}
}

// Movements repositorio de consultas del ledger confirmado.
func (s *Store) Movements() repository.MovementRepository {
	return &committedMovementRepo{s: s}
}

// lockRow toma el bloqueo exclusivo de la fila; se libera al terminar la transacción.
func (s *Store) lockRow(ctx context.Context, key stockKey) error {
	s.locksMu.Lock()
	ch, ok := s.rowLocks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rowLocks[key] = ch
	}
	s.locksMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("esperando bloqueo de fila %s: %w: %w", key, domain.ErrConflict, ctx.Err())
	}
}

func (s *Store) unlockRow(key stockKey) {
	s.locksMu.Lock()
	ch := s.rowLocks[key]
	s.locksMu.Unlock()
	<-ch
}

func (s *Store) getRecord(id string) *entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id].Clone()
}

func (s *Store) getRecordByKey(key stockKey) *entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil
	}
	return s.records[id].Clone()
}

// PutProduct registra o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// PutSupplier registra o reemplaza un proveedor.
func (s *Store) PutSupplier(sup entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[sup.ID] = &sup
}

// PutWarehouse registra o reemplaza una bodega.
func (s *Store) PutWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = &w
}

func (s *Store) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (s *Store) GetSupplier(_ context.Context, id string) (*entity.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return nil, nil
	}
	c := *sup
	return &c, nil
}

func (s *Store) GetWarehouse(_ context.Context, id string) (*entity.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}
