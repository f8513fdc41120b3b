package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TransferStock resta de la bodega origen y suma en la destino en la misma transacción;
// guarda dos movimientos transfer ligados por la misma referencia. Las filas se bloquean
// en orden de bodega para que dos traslados cruzados no se bloqueen mutuamente.
func (uc *LedgerUseCase) TransferStock(ctx context.Context, in dto.TransferInput) (res *dto.TransferResult, err error) {
	ctx, span := tracer.Start(ctx, "inventory.TransferStock", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("warehouse.from", in.FromWarehouseID),
		attribute.String("warehouse.to", in.ToWarehouseID),
		attribute.Int64("quantity", in.Quantity),
	))
	defer func() { endSpan(span, err) }()

	if in.ProductID == "" || in.FromWarehouseID == "" || in.ToWarehouseID == "" {
		return nil, fmt.Errorf("producto y bodegas requeridos: %w", domain.ErrValidation)
	}
	if in.FromWarehouseID == in.ToWarehouseID || in.Quantity <= 0 {
		return nil, fmt.Errorf("traslado inválido: %w", domain.ErrValidation)
	}
	if uc.catalog != nil {
		wh, err := uc.catalog.GetWarehouse(ctx, in.ToWarehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil || !wh.IsActive {
			return nil, fmt.Errorf("bodega destino %s: %w", in.ToWarehouseID, domain.ErrNotFound)
		}
	}

	ref := in.Reference
	if ref.Type == "" {
		ref.Type = entity.ReferenceTypeStockTransfer
	}
	if ref.ID == "" {
		ref.ID = uuid.New().String()
	}

	res = &dto.TransferResult{}
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRecordRepository, movRepo repository.MovementRepository) error {
		var origin, dest *entity.StockRecord
		lockOrigin := func() error {
			rec, err := lockByKey(ctx, stockRepo, in.ProductID, in.FromWarehouseID)
			origin = rec
			return err
		}
		lockDest := func() error {
			rec, err := stockRepo.GetByKeyForUpdate(ctx, in.ProductID, in.ToWarehouseID, "")
			if err != nil {
				return err
			}
			if rec == nil {
				rec = uc.newStockRecord(in.ProductID, in.ToWarehouseID, "")
				if err := stockRepo.Create(ctx, rec); err != nil {
					return err
				}
			}
			dest = rec
			return nil
		}
		first, second := lockOrigin, lockDest
		if in.ToWarehouseID < in.FromWarehouseID {
			first, second = lockDest, lockOrigin
		}
		if err := first(); err != nil {
			return err
		}
		if err := second(); err != nil {
			return err
		}

		// El destino recibe al costo promedio del origen.
		carriedCost := origin.AverageCost
		out, err := uc.applyMovement(ctx, stockRepo, movRepo, origin, movementArgs{
			movementType: entity.MovementTypeTransfer,
			quantity:     -in.Quantity,
			reference:    ref,
			performedBy:  in.PerformedBy,
			notes:        in.Notes,
		})
		if err != nil {
			return err
		}
		inMov, err := uc.applyMovement(ctx, stockRepo, movRepo, dest, movementArgs{
			movementType: entity.MovementTypeTransfer,
			quantity:     in.Quantity,
			unitCost:     &carriedCost,
			reference:    ref,
			performedBy:  in.PerformedBy,
			notes:        in.Notes,
		})
		if err != nil {
			return err
		}
		res.Out, res.In = out, inMov
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, res.Out, res.In)
	return res, nil
}

// newStockRecord registro vacío y activo para un producto en una bodega.
func (uc *LedgerUseCase) newStockRecord(productID, warehouseID, locationID string) *entity.StockRecord {
	now := uc.now().UTC()
	return &entity.StockRecord{
		ID:          uuid.New().String(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		LocationID:  locationID,
		StockStatus: inventory.DeriveStatus(0, nil, nil),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
