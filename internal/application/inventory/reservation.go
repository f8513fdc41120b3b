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

// ReserveStock pasa quantity de disponible a reservado. No toca el stock físico ni el ledger:
// es una asignación blanda. Usa el mismo bloqueo de fila que RecordMovement.
func (uc *LedgerUseCase) ReserveStock(ctx context.Context, productID, warehouseID string, quantity int64) (rec *entity.StockRecord, err error) {
	ctx, span := tracer.Start(ctx, "inventory.ReserveStock", reservationAttrs(productID, warehouseID, quantity))
	defer func() { endSpan(span, err) }()

	rec, err = uc.mutateReservation(ctx, productID, warehouseID, quantity, func(r *entity.StockRecord) error {
		if !r.IsActive {
			return fmt.Errorf("registro de stock %s inactivo: %w", r.ID, domain.ErrValidation)
		}
		if quantity > r.QuantityAvailable {
			return fmt.Errorf("reserva de %d con %d disponibles: %w", quantity, r.QuantityAvailable, domain.ErrInsufficientStock)
		}
		r.QuantityAvailable -= quantity
		r.QuantityReserved += quantity
		return nil
	})
	return rec, err
}

// ReleaseReservedStock operación inversa de ReserveStock.
func (uc *LedgerUseCase) ReleaseReservedStock(ctx context.Context, productID, warehouseID string, quantity int64) (rec *entity.StockRecord, err error) {
	ctx, span := tracer.Start(ctx, "inventory.ReleaseReservedStock", reservationAttrs(productID, warehouseID, quantity))
	defer func() { endSpan(span, err) }()

	rec, err = uc.mutateReservation(ctx, productID, warehouseID, quantity, func(r *entity.StockRecord) error {
		if quantity > r.QuantityReserved {
			return fmt.Errorf("liberar %d con %d reservados: %w", quantity, r.QuantityReserved, domain.ErrInvalidRelease)
		}
		r.QuantityReserved -= quantity
		r.QuantityAvailable += quantity
		return nil
	})
	return rec, err
}

func (uc *LedgerUseCase) mutateReservation(
	ctx context.Context,
	productID, warehouseID string,
	quantity int64,
	mutate func(r *entity.StockRecord) error,
) (*entity.StockRecord, error) {
	if productID == "" || warehouseID == "" {
		return nil, fmt.Errorf("product_id y warehouse_id requeridos: %w", domain.ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("cantidad a reservar debe ser positiva: %w", domain.ErrValidation)
	}

	var out *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRecordRepository, _ repository.MovementRepository) error {
		rec, err := lockByKey(ctx, stockRepo, productID, warehouseID)
		if err != nil {
			return err
		}
		if err := mutate(rec); err != nil {
			return err
		}
		rec.UpdatedAt = uc.now().UTC()
		if !rec.InvariantHolds() {
			return fmt.Errorf("invariante de cantidades en %s: %w", rec.ID, domain.ErrValidation)
		}
		if err := stockRepo.Update(ctx, rec); err != nil {
			return err
		}
		out = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	// La disponibilidad cambió: las sugerencias de reorden pueden quedar viejas.
	uc.invalidateCache()
	return out, nil
}

// CommitReservation cumple una reserva: libera quantity de reservado y registra la venta
// correspondiente en la misma transacción, de modo que la salida no se descuente dos veces.
func (uc *LedgerUseCase) CommitReservation(ctx context.Context, in dto.CommitReservationInput) (res *dto.MovementResult, err error) {
	ctx, span := tracer.Start(ctx, "inventory.CommitReservation", reservationAttrs(in.ProductID, in.WarehouseID, in.Quantity))
	defer func() { endSpan(span, err) }()

	if in.ProductID == "" || in.WarehouseID == "" {
		return nil, fmt.Errorf("product_id y warehouse_id requeridos: %w", domain.ErrValidation)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("cantidad a confirmar debe ser positiva: %w", domain.ErrValidation)
	}
	ref := in.Reference
	if ref.Type == "" {
		ref.Type = entity.ReferenceTypeReservation
	}
	args := movementArgs{
		movementType: entity.MovementTypeSale,
		quantity:     -in.Quantity,
		unitCost:     in.UnitCost,
		reference:    ref,
		performedBy:  in.PerformedBy,
		notes:        in.Notes,
	}
	if err := args.validate(); err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRecordRepository, movRepo repository.MovementRepository) error {
		rec, err := lockByKey(ctx, stockRepo, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		if in.Quantity > rec.QuantityReserved {
			return fmt.Errorf("confirmar %d con %d reservados: %w", in.Quantity, rec.QuantityReserved, domain.ErrInvalidRelease)
		}
		rec.QuantityReserved -= in.Quantity
		rec.QuantityAvailable += in.Quantity
		res, err = uc.applyMovement(ctx, stockRepo, movRepo, rec, args)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, res)
	return res, nil
}

// lockByKey bloquea el registro sin ubicación de producto+bodega.
func lockByKey(ctx context.Context, stockRepo repository.StockRecordRepository, productID, warehouseID string) (*entity.StockRecord, error) {
	rec, err := stockRepo.GetByKeyForUpdate(ctx, productID, warehouseID, "")
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("stock de producto %s en bodega %s: %w", productID, warehouseID, domain.ErrNotFound)
	}
	return rec, nil
}

func reservationAttrs(productID, warehouseID string, quantity int64) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("product.id", productID),
		attribute.String("warehouse.id", warehouseID),
		attribute.Int64("quantity", quantity),
	)
}
