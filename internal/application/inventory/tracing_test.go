package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestSpans_RecordOutcome(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	f := newFixture(t)
	rec := f.seed(t, "prod-1", "bod-a", 1, "1")

	_, err := f.uc.RecordMovement(context.Background(), dto.RecordMovementInput{
		StockRecordID: rec.ID, MovementType: entity.MovementTypeSale, Quantity: -5,
	})
	require.Error(t, err)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range sr.Ended() {
		byName[s.Name()] = s
	}
	require.Contains(t, byName, "inventory.UpsertStockRecord")
	require.Contains(t, byName, "inventory.RecordMovement")
	assert.Equal(t, codes.Ok, byName["inventory.UpsertStockRecord"].Status().Code)
	assert.Equal(t, codes.Error, byName["inventory.RecordMovement"].Status().Code)
}
