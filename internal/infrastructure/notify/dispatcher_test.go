package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/notify"
)

type recorder struct {
	mu   sync.Mutex
	got  []entity.Notification
	fail bool
}

func (r *recorder) Send(_ context.Context, n entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	if r.fail {
		return errors.New("gateway caído")
	}
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, n := range r.got {
		out[i] = n.Type
	}
	return out
}

func TestDispatcher_DeliversInOrderAndDrainsOnClose(t *testing.T) {
	rec := &recorder{}
	d := notify.NewDispatcher(zerolog.Nop(), rec, 8)
	d.Start(context.Background())

	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: entity.NotificationInventoryChange}))
	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: entity.NotificationInventoryMovement}))
	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: entity.NotificationStockAlert}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	assert.Equal(t, []string{
		entity.NotificationInventoryChange,
		entity.NotificationInventoryMovement,
		entity.NotificationStockAlert,
	}, rec.types())
}

func TestDispatcher_FullQueueFailsFast(t *testing.T) {
	block := make(chan struct{})
	gw := notify.GatewayFunc(func(ctx context.Context, _ entity.Notification) error {
		<-block
		return nil
	})
	// Sin Start: la cola de 1 se llena con el primer evento.
	d := notify.NewDispatcher(zerolog.Nop(), gw, 1)
	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: "a"}))

	err := d.Notify(context.Background(), entity.Notification{Type: "b"})
	assert.ErrorIs(t, err, domain.ErrNotificationFailure)

	close(block)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_NotifyAfterClose(t *testing.T) {
	d := notify.NewDispatcher(zerolog.Nop(), &recorder{}, 1)
	require.NoError(t, d.Close(context.Background()))

	err := d.Notify(context.Background(), entity.Notification{Type: "a"})
	assert.ErrorIs(t, err, domain.ErrNotificationFailure)
	assert.ErrorIs(t, err, notify.ErrDispatcherClosed)
}

func TestDispatcher_GatewayErrorDoesNotStopWorker(t *testing.T) {
	rec := &recorder{fail: true}
	d := notify.NewDispatcher(zerolog.Nop(), rec, 4)
	d.Start(context.Background())

	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: "a"}))
	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: "b"}))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, []string{"a", "b"}, rec.types())
}

func TestDispatcher_GatewayPanicDoesNotStopWorker(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	gw := notify.GatewayFunc(func(_ context.Context, n entity.Notification) error {
		if n.Type == "boom" {
			panic("gateway roto")
		}
		mu.Lock()
		got = append(got, n.Type)
		mu.Unlock()
		return nil
	})
	d := notify.NewDispatcher(zerolog.Nop(), gw, 4)
	d.Start(context.Background())

	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: "a"}))
	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: "boom"}))
	require.NoError(t, d.Notify(context.Background(), entity.Notification{Type: "b"}))
	require.NoError(t, d.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestLogGateway_Send(t *testing.T) {
	gw := notify.NewLogGateway(zerolog.Nop())
	err := gw.Send(context.Background(), entity.Notification{
		Type:    entity.NotificationStockAlert,
		Payload: entity.StockAlert{ProductID: "p1", AlertType: entity.StockStatusOutOfStock},
	})
	assert.NoError(t, err)
}
