package inventory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// AdjustStock lleva el stock físico a targetOnHand (conteo). La diferencia se calcula con la fila
// bloqueada y se registra como adjustment_in/adjustment_out con referencia stock_adjustment.
// Si no hay diferencia devuelve el registro sin cambios y Movement nil.
func (uc *LedgerUseCase) AdjustStock(ctx context.Context, stockRecordID string, targetOnHand int64, reason, performedBy string) (res *dto.MovementResult, err error) {
	ctx, span := tracer.Start(ctx, "inventory.AdjustStock", trace.WithAttributes(
		attribute.String("stock_record.id", stockRecordID),
		attribute.Int64("target_on_hand", targetOnHand),
	))
	defer func() { endSpan(span, err) }()

	if stockRecordID == "" {
		return nil, fmt.Errorf("stock_record_id requerido: %w", domain.ErrValidation)
	}
	if targetOnHand < 0 {
		return nil, fmt.Errorf("conteo negativo: %w", domain.ErrValidation)
	}

	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRecordRepository, movRepo repository.MovementRepository) error {
		rec, err := stockRepo.GetForUpdate(ctx, stockRecordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("registro de stock %s: %w", stockRecordID, domain.ErrNotFound)
		}
		delta := targetOnHand - rec.QuantityOnHand
		if delta == 0 {
			res = &dto.MovementResult{StockRecord: rec.Clone(), PreviousOnHand: rec.QuantityOnHand}
			return nil
		}
		movType := entity.MovementTypeAdjustmentIn
		if delta < 0 {
			movType = entity.MovementTypeAdjustmentOut
		}
		res, err = uc.applyMovement(ctx, stockRepo, movRepo, rec, movementArgs{
			movementType: movType,
			quantity:     delta,
			reference:    entity.Reference{Type: entity.ReferenceTypeStockAdjustment, ID: stockRecordID},
			performedBy:  performedBy,
			notes:        reason,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Movement != nil {
		uc.afterCommit(ctx, res)
	}
	return res, nil
}
