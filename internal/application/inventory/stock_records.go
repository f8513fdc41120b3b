package inventory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// GetStockRecord obtiene un registro de stock por ID.
func (uc *LedgerUseCase) GetStockRecord(ctx context.Context, id string) (*entity.StockRecord, error) {
	rec, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("registro de stock %s: %w", id, domain.ErrNotFound)
	}
	return rec, nil
}

// GetStockRecordByProduct obtiene el registro sin ubicación de un producto en una bodega.
func (uc *LedgerUseCase) GetStockRecordByProduct(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	rec, err := uc.stockRepo.GetByKey(ctx, productID, warehouseID, "")
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("stock de producto %s en bodega %s: %w", productID, warehouseID, domain.ErrNotFound)
	}
	return rec, nil
}

// UpsertStockRecord crea el registro (con cantidades y costo iniciales opcionales) o, si ya existe,
// reemplaza sus umbrales y estado de activación. Las cantidades de un registro existente solo
// cambian vía movimientos y reservas.
func (uc *LedgerUseCase) UpsertStockRecord(ctx context.Context, in dto.UpsertStockRecordInput) (out *entity.StockRecord, err error) {
	ctx, span := tracer.Start(ctx, "inventory.UpsertStockRecord", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("warehouse.id", in.WarehouseID),
	))
	defer func() { endSpan(span, err) }()

	if err := validateUpsert(in); err != nil {
		return nil, err
	}
	if uc.catalog != nil {
		product, err := uc.catalog.GetProduct(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
		}
	}

	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRecordRepository, _ repository.MovementRepository) error {
		rec, err := stockRepo.GetByKeyForUpdate(ctx, in.ProductID, in.WarehouseID, in.LocationID)
		if err != nil {
			return err
		}
		creating := rec == nil
		if creating {
			rec = uc.newStockRecord(in.ProductID, in.WarehouseID, in.LocationID)
			rec.QuantityOnHand = in.InitialOnHand
			rec.QuantityAvailable = in.InitialOnHand
			rec.QuantityInTransit = in.InitialInTransit
			if in.InitialUnitCost != nil {
				rec.AverageCost = in.InitialUnitCost.Round(inventory.CostScale)
				rec.LastPurchaseCost = *in.InitialUnitCost
			}
		}
		rec.ReorderPoint = in.ReorderPoint
		rec.ReorderQuantity = in.ReorderQuantity
		rec.MinStockLevel = in.MinStockLevel
		rec.MaxStockLevel = in.MaxStockLevel
		if in.IsActive != nil {
			rec.IsActive = *in.IsActive
		}
		rec.StockStatus = inventory.DeriveStatus(rec.QuantityOnHand, rec.ReorderPoint, rec.MinStockLevel)
		rec.UpdatedAt = uc.now().UTC()

		if creating {
			err = stockRepo.Create(ctx, rec)
		} else {
			err = stockRepo.Update(ctx, rec)
		}
		if err != nil {
			return err
		}
		out = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidateCache()
	return out, nil
}

func validateUpsert(in dto.UpsertStockRecordInput) error {
	if in.ProductID == "" || in.WarehouseID == "" {
		return fmt.Errorf("product_id y warehouse_id requeridos: %w", domain.ErrValidation)
	}
	if in.InitialOnHand < 0 || in.InitialInTransit < 0 {
		return fmt.Errorf("cantidades iniciales negativas: %w", domain.ErrValidation)
	}
	if in.InitialUnitCost != nil && in.InitialUnitCost.IsNegative() {
		return fmt.Errorf("costo inicial negativo: %w", domain.ErrValidation)
	}
	for _, v := range []*int64{in.ReorderPoint, in.ReorderQuantity, in.MinStockLevel, in.MaxStockLevel} {
		if v != nil && *v < 0 {
			return fmt.Errorf("umbral negativo: %w", domain.ErrValidation)
		}
	}
	if in.MinStockLevel != nil && in.MaxStockLevel != nil && *in.MinStockLevel > *in.MaxStockLevel {
		return fmt.Errorf("min_stock_level mayor que max_stock_level: %w", domain.ErrValidation)
	}
	return nil
}
