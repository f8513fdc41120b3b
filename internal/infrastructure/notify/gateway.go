package notify

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Gateway transporte real de las notificaciones (websocket, broker, webhook).
type Gateway interface {
	Send(ctx context.Context, n entity.Notification) error
}

// GatewayFunc adapta una función a Gateway.
type GatewayFunc func(ctx context.Context, n entity.Notification) error

func (f GatewayFunc) Send(ctx context.Context, n entity.Notification) error { return f(ctx, n) }

// LogGateway registra cada notificación como JSON estructurado. Útil cuando no hay transporte configurado.
type LogGateway struct {
	log zerolog.Logger
}

// NewLogGateway construye el gateway de log.
func NewLogGateway(log zerolog.Logger) *LogGateway {
	return &LogGateway{log: log.With().Str("component", "notify_gateway").Logger()}
}

func (g *LogGateway) Send(_ context.Context, n entity.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}
	g.log.Info().
		Str("event", n.Type).
		Time("occurred_at", n.OccurredAt).
		RawJSON("payload", payload).
		Msg("notificación")
	return nil
}
