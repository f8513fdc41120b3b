// Package retry reintenta operaciones completas del motor de stock cuando fallan por conflicto
// de concurrencia (ErrConflict). Cada intento corre su propia transacción.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Policy intentos y espera exponencial entre ellos.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// Retryable decide qué errores se reintentan; nil = domain.IsConflict.
	Retryable func(error) bool
	// OnRetry se llama antes de cada espera (por ejemplo para loguear).
	OnRetry func(err error, wait time.Duration)
}

// DefaultPolicy 5 intentos, 50ms inicial, tope 2s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		eb.Multiplier = p.Multiplier
	}
	eb.MaxElapsedTime = 0 // el límite lo pone MaxAttempts

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

func (p Policy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return domain.IsConflict(err)
}

// Do ejecuta op hasta que tenga éxito, falle con un error no reintentable o se agoten los intentos.
// Devuelve el último error de op (o el del contexto si se canceló durante la espera).
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoWithResult(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoWithResult igual que Do para operaciones que devuelven un valor.
func DoWithResult[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	return backoff.RetryNotifyWithData(func() (T, error) {
		v, err := op(ctx)
		if err != nil && !p.retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, p.backOff(ctx), p.OnRetry)
}
