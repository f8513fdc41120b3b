// Package notify entrega las notificaciones del motor de stock fuera del camino de la transacción.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.Notifier = (*Dispatcher)(nil)

// DefaultQueueSize capacidad de la cola cuando no se configura.
const DefaultQueueSize = 1024

const defaultSendTimeout = 5 * time.Second

var (
	ErrDispatcherClosed = errors.New("dispatcher cerrado")
	ErrGatewayPanic     = errors.New("gateway falló con panic")
)

// Dispatcher cola en memoria con un worker que entrega al Gateway.
// Notify nunca bloquea: con la cola llena el evento se descarta y se devuelve ErrNotificationFailure.
type Dispatcher struct {
	log         zerolog.Logger
	gateway     Gateway
	queue       chan entity.Notification
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher construye el dispatcher. size <= 0 usa DefaultQueueSize.
func NewDispatcher(log zerolog.Logger, gateway Gateway, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		log:         log.With().Str("component", "notify_dispatcher").Logger(),
		gateway:     gateway,
		queue:       make(chan entity.Notification, size),
		sendTimeout: defaultSendTimeout,
		done:        make(chan struct{}),
	}
}

// Start lanza el worker. Termina cuando la cola se cierra (Close) o ctx se cancela.
func (d *Dispatcher) Start(ctx context.Context) {
	d.once.Do(func() {
		go d.run(ctx)
	})
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Int("pending", len(d.queue)).Msg("dispatcher detenido")
			return
		case n, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n entity.Notification) {
	if err := d.send(ctx, n); err != nil {
		d.log.Error().Err(err).Str("event", n.Type).Msg("entrega de notificación fallida")
	}
}

// send llama al gateway; un panic se convierte en error para que el worker siga vivo.
func (d *Dispatcher) send(ctx context.Context, n entity.Notification) (err error) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sendTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic en gateway: %v", ErrGatewayPanic, r)
		}
	}()
	return d.gateway.Send(sendCtx, n)
}

// Notify encola n sin bloquear.
func (d *Dispatcher) Notify(_ context.Context, n entity.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return fmt.Errorf("%w: %w", domain.ErrNotificationFailure, ErrDispatcherClosed)
	}
	select {
	case d.queue <- n:
		return nil
	default:
		return fmt.Errorf("%w: cola llena (%d)", domain.ErrNotificationFailure, cap(d.queue))
	}
}

// Close deja de aceptar eventos y espera a que el worker vacíe la cola o venza ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	// Si nunca se inició, no hay quien drene.
	d.Start(context.Background())

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drenar notificaciones: %w", ctx.Err())
	}
}
