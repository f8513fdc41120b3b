package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/retry"
)

func TestParseRows(t *testing.T) {
	in := `product_id,warehouse_id,quantity,unit_cost,reorder_point
# comentario
prod-1, bod-a, 10, 12.50, 5
prod-2,bod-a,0,,
`
	rows, err := parseRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "prod-1", rows[0].ProductID)
	assert.Equal(t, "bod-a", rows[0].WarehouseID)
	assert.Equal(t, int64(10), rows[0].Quantity)
	assert.True(t, decimal.RequireFromString("12.5").Equal(rows[0].UnitCost))
	require.NotNil(t, rows[0].ReorderPoint)
	assert.Equal(t, int64(5), *rows[0].ReorderPoint)

	assert.Zero(t, rows[1].Quantity)
	assert.Nil(t, rows[1].ReorderPoint)
}

func TestParseRows_Errores(t *testing.T) {
	tests := map[string]string{
		"cantidad negativa":  "prod-1,bod-a,-1,1,\n",
		"costo no numérico":  "prod-1,bod-a,1,abc,\n",
		"sin bodega":         "prod-1,,1,1,\n",
		"columnas faltantes": "prod-1,bod-a,1\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseRows(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestDecodeInput_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("producto-ñandú,bodega-sur,1,1,\n")
	require.NoError(t, err)

	r, err := decodeInput(bytes.NewReader([]byte(raw)), "latin1")
	require.NoError(t, err)
	rows, err := parseRows(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "producto-ñandú", rows[0].ProductID)

	_, err = decodeInput(strings.NewReader(""), "ebcdic")
	assert.Error(t, err)
}

func newSeedLedger(t *testing.T) (*memory.Store, *inventory.LedgerUseCase) {
	t.Helper()
	store := memory.NewStore()
	store.PutProduct(entity.Product{ID: "prod-1", SKU: "CAF-500", Name: "Café 500g", IsActive: true})
	store.PutWarehouse(entity.Warehouse{ID: "bod-a", Name: "Bodega A", IsActive: true})
	return store, inventory.NewLedgerUseCase(store, store.StockRecords(), store.Movements(), store, nil, nil, zerolog.Nop())
}

func TestSeed_RecordsOpeningPurchaseOnce(t *testing.T) {
	store, uc := newSeedLedger(t)
	rp := int64(3)
	rows := []seedRow{{Line: 2, ProductID: "prod-1", WarehouseID: "bod-a", Quantity: 10, UnitCost: decimal.NewFromInt(8), ReorderPoint: &rp}}

	s, err := seed(context.Background(), uc, rows, retry.DefaultPolicy(), "carga", "saldos.csv", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, summary{Records: 1, Purchases: 1}, s)

	rec, err := uc.GetStockRecordByProduct(context.Background(), "prod-1", "bod-a")
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.QuantityOnHand)
	assert.True(t, decimal.NewFromInt(8).Equal(rec.AverageCost))

	items, total, err := store.Movements().List(context.Background(), repository.MovementFilter{StockRecordID: rec.ID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, ReferenceTypeOpeningBalance, items[0].Reference.Type)
	assert.Equal(t, "saldos.csv:2", items[0].Reference.Number)
	assert.Equal(t, "carga", items[0].PerformedBy)

	// Segunda corrida: el registro ya tiene stock.
	s, err = seed(context.Background(), uc, rows, retry.DefaultPolicy(), "carga", "saldos.csv", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, summary{Records: 1, Skipped: 1}, s)
}

func TestSeed_UnknownProductStops(t *testing.T) {
	_, uc := newSeedLedger(t)
	rows := []seedRow{{Line: 1, ProductID: "prod-x", WarehouseID: "bod-a", Quantity: 1}}
	_, err := seed(context.Background(), uc, rows, retry.DefaultPolicy(), "carga", "stdin", zerolog.Nop())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// flakyLedger falla con conflicto las primeras n llamadas de RecordMovement.
type flakyLedger struct {
	ledger
	failures int
	calls    int
}

func (f *flakyLedger) RecordMovement(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("tx: %w", domain.ErrConflict)
	}
	return f.ledger.RecordMovement(ctx, in)
}

func TestSeed_RetriesConflicts(t *testing.T) {
	_, uc := newSeedLedger(t)
	l := &flakyLedger{ledger: uc, failures: 2}
	policy := retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

	rows := []seedRow{{Line: 1, ProductID: "prod-1", WarehouseID: "bod-a", Quantity: 4, UnitCost: decimal.NewFromInt(1)}}
	s, err := seed(context.Background(), l, rows, policy, "carga", "stdin", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Purchases)
	assert.Equal(t, 3, l.calls)
}
