package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestReserveAndRelease_RoundTrip(t *testing.T) {
	f := newFixture(t)
	rec := f.seed(t, "prod-1", "bod-a", 10, "1")

	reserved, err := f.uc.ReserveStock(context.Background(), "prod-1", "bod-a", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), reserved.QuantityAvailable)
	assert.Equal(t, int64(4), reserved.QuantityReserved)
	assert.Equal(t, int64(10), reserved.QuantityOnHand)
	assert.True(t, reserved.InvariantHolds())

	released, err := f.uc.ReleaseReservedStock(context.Background(), "prod-1", "bod-a", 4)
	require.NoError(t, err)
	assert.Equal(t, rec.QuantityAvailable, released.QuantityAvailable)
	assert.Equal(t, rec.QuantityReserved, released.QuantityReserved)
	assert.Equal(t, rec.QuantityOnHand, released.QuantityOnHand)

	// Reservar no escribe en el ledger ni emite eventos.
	assert.Empty(t, f.ledger(t, rec.ID))
	assert.Empty(t, f.notifier.types())
}

func TestReserveStock_Errors(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-1", "bod-a", 3, "1")

	_, err := f.uc.ReserveStock(context.Background(), "prod-1", "bod-a", 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.uc.ReserveStock(context.Background(), "prod-1", "bod-a", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.ReserveStock(context.Background(), "prod-2", "bod-a", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.ReleaseReservedStock(context.Background(), "prod-1", "bod-a", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRelease)

	rec, err := f.uc.GetStockRecordByProduct(context.Background(), "prod-1", "bod-a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.QuantityAvailable)
	assert.Equal(t, int64(0), rec.QuantityReserved)
}

func TestReserveStock_InvalidatesCache(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-1", "bod-a", 3, "1")
	before := f.cache.count()
	_, err := f.uc.ReserveStock(context.Background(), "prod-1", "bod-a", 1)
	require.NoError(t, err)
	assert.Equal(t, before+1, f.cache.count())
}

func TestCommitReservation_ReleasesAndSellsOnce(t *testing.T) {
	f := newFixture(t)
	rec := f.seed(t, "prod-1", "bod-a", 10, "2.5")
	_, err := f.uc.ReserveStock(context.Background(), "prod-1", "bod-a", 4)
	require.NoError(t, err)

	res, err := f.uc.CommitReservation(context.Background(), dto.CommitReservationInput{
		ProductID: "prod-1", WarehouseID: "bod-a", Quantity: 3,
		Reference: entity.Reference{ID: "so-9", Number: "PV-9"}, PerformedBy: "caja-1",
	})
	require.NoError(t, err)

	got := res.StockRecord
	assert.Equal(t, int64(7), got.QuantityOnHand)
	assert.Equal(t, int64(6), got.QuantityAvailable, "lo disponible no cambia al cumplir una reserva")
	assert.Equal(t, int64(1), got.QuantityReserved)
	assert.True(t, got.InvariantHolds())

	assert.Equal(t, entity.MovementTypeSale, res.Movement.MovementType)
	assert.Equal(t, int64(-3), res.Movement.Quantity)
	assert.Equal(t, entity.ReferenceTypeReservation, res.Movement.Reference.Type)
	assert.Len(t, f.ledger(t, rec.ID), 1)

	_, err = f.uc.CommitReservation(context.Background(), dto.CommitReservationInput{
		ProductID: "prod-1", WarehouseID: "bod-a", Quantity: 2,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRelease)
}

// El estado sale del stock físico: reservar todo lo disponible no lo cambia.
// Recién al confirmar la venta el físico llega a 0 y pasa a out_of_stock.
func TestReserveStock_StatusFollowsOnHand(t *testing.T) {
	f := newFixture(t)
	rec := f.seed(t, "prod-1", "bod-a", 10, "1", withReorderPoint(3))
	require.Equal(t, entity.StockStatusInStock, rec.StockStatus)

	reserved, err := f.uc.ReserveStock(context.Background(), "prod-1", "bod-a", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reserved.QuantityAvailable)
	assert.Equal(t, int64(10), reserved.QuantityOnHand)
	assert.Equal(t, entity.StockStatusInStock, reserved.StockStatus)
	assert.Equal(t, entity.StockStatusInStock, f.reload(t, rec.ID).StockStatus)
	assert.Empty(t, f.notifier.types())

	res, err := f.uc.CommitReservation(context.Background(), dto.CommitReservationInput{
		ProductID:   "prod-1",
		WarehouseID: "bod-a",
		Quantity:    10,
		PerformedBy: "vendedor-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.StockRecord.QuantityOnHand)
	assert.Equal(t, entity.StockStatusOutOfStock, res.StockRecord.StockStatus)
	_, alerted := f.notifier.last(entity.NotificationStockAlert)
	assert.True(t, alerted)
}
