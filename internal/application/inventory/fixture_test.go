package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []entity.Notification
	err    error
}

func (n *captureNotifier) Notify(_ context.Context, ev entity.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *captureNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

func (n *captureNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}

func (n *captureNotifier) last(eventType string) (entity.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.events) - 1; i >= 0; i-- {
		if n.events[i].Type == eventType {
			return n.events[i], true
		}
	}
	return entity.Notification{}, false
}

type countingInvalidator struct {
	mu sync.Mutex
	n  int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type fixture struct {
	store    *memory.Store
	notifier *captureNotifier
	cache    *countingInvalidator
	uc       *inventory.LedgerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Andina", LeadTimeDays: 4})
	store.PutProduct(entity.Product{ID: "prod-1", SKU: "CAF-500", Name: "Café 500g", IsActive: true, SupplierID: "sup-1"})
	store.PutProduct(entity.Product{ID: "prod-2", SKU: "AZU-1K", Name: "Azúcar 1kg", IsActive: true})
	store.PutWarehouse(entity.Warehouse{ID: "bod-a", Name: "Bodega A", IsActive: true})
	store.PutWarehouse(entity.Warehouse{ID: "bod-b", Name: "Bodega B", IsActive: true})
	store.PutWarehouse(entity.Warehouse{ID: "bod-x", Name: "Bodega cerrada", IsActive: false})

	notifier := &captureNotifier{}
	cache := &countingInvalidator{}
	uc := inventory.NewLedgerUseCase(store, store.StockRecords(), store.Movements(), store, notifier, cache, zerolog.Nop())
	return &fixture{store: store, notifier: notifier, cache: cache, uc: uc}
}

// seed crea el registro prod/bodega con stock y costo iniciales.
func (f *fixture) seed(t *testing.T, productID, warehouseID string, onHand int64, cost string, opts ...func(*dto.UpsertStockRecordInput)) *entity.StockRecord {
	t.Helper()
	c := decimal.RequireFromString(cost)
	in := dto.UpsertStockRecordInput{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		InitialOnHand:   onHand,
		InitialUnitCost: &c,
	}
	for _, o := range opts {
		o(&in)
	}
	rec, err := f.uc.UpsertStockRecord(context.Background(), in)
	require.NoError(t, err)
	f.notifier.reset()
	return rec
}

func withReorderPoint(rp int64) func(*dto.UpsertStockRecordInput) {
	return func(in *dto.UpsertStockRecordInput) { in.ReorderPoint = &rp }
}

func withMinStock(level int64) func(*dto.UpsertStockRecordInput) {
	return func(in *dto.UpsertStockRecordInput) { in.MinStockLevel = &level }
}

func (f *fixture) reload(t *testing.T, id string) *entity.StockRecord {
	t.Helper()
	rec, err := f.uc.GetStockRecord(context.Background(), id)
	require.NoError(t, err)
	return rec
}

func (f *fixture) ledger(t *testing.T, stockRecordID string) []*entity.MovementRecord {
	t.Helper()
	page, err := f.uc.GetMovements(context.Background(), repository.MovementFilter{
		StockRecordID: stockRecordID,
		SortBy:        repository.SortBySequence,
		Ascending:     true,
		Limit:         repository.MaxMovementLimit,
	})
	require.NoError(t, err)
	return page.Items
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// failingAppendRunner hace fallar la escritura del ledger después de actualizar el stock.
type failingAppendRunner struct {
	inner inventory.TxRunner
}

var errDiskFull = errors.New("disco lleno")

func (r failingAppendRunner) Run(ctx context.Context, fn func(repository.StockRecordRepository, repository.MovementRepository) error) error {
	return r.inner.Run(ctx, func(s repository.StockRecordRepository, m repository.MovementRepository) error {
		return fn(s, failingMovementRepo{m})
	})
}

type failingMovementRepo struct {
	repository.MovementRepository
}

func (failingMovementRepo) Append(context.Context, *entity.MovementRecord) error {
	return errDiskFull
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
