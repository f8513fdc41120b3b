package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// LedgerUseCase motor de stock: registra movimientos de forma transaccional con bloqueo
// de fila (SELECT FOR UPDATE), maneja reservas y ajustes, y emite eventos después del commit.
type LedgerUseCase struct {
	txRunner  TxRunner
	stockRepo repository.StockRecordRepository
	movRepo   repository.MovementRepository
	catalog   repository.CatalogRepository
	notifier  Notifier
	cache     CacheInvalidator
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso. stockRepo y movRepo se usan solo para lecturas
// fuera de transacción; toda escritura pasa por txRunner. cache puede ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	stockRepo repository.StockRecordRepository,
	movRepo repository.MovementRepository,
	catalog repository.CatalogRepository,
	notifier Notifier,
	cache CacheInvalidator,
	log zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		stockRepo: stockRepo,
		movRepo:   movRepo,
		catalog:   catalog,
		notifier:  notifier,
		cache:     cache,
		log:       log.With().Str("component", "ledger").Logger(),
		now:       time.Now,
	}
}

// movementArgs datos de un asiento ya validados, independientes del origen (movimiento, ajuste, traslado).
type movementArgs struct {
	movementType entity.MovementType
	quantity     int64
	unitCost     *decimal.Decimal
	reference    entity.Reference
	performedBy  string
	notes        string
}

// RecordMovement bloquea el registro de stock, aplica el movimiento (cantidades, costo promedio,
// estado), agrega la entrada al ledger y hace Commit o Rollback. Después del commit emite
// inventory_change, inventory_movement y stock_alert (si aplica) e invalida la caché de reorden.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, in dto.RecordMovementInput) (res *dto.MovementResult, err error) {
	ctx, span := tracer.Start(ctx, "inventory.RecordMovement", trace.WithAttributes(
		attribute.String("stock_record.id", in.StockRecordID),
		attribute.String("movement.type", string(in.MovementType)),
		attribute.Int64("movement.quantity", in.Quantity),
	))
	defer func() { endSpan(span, err) }()

	if in.StockRecordID == "" {
		return nil, fmt.Errorf("stock_record_id requerido: %w", domain.ErrValidation)
	}
	args := movementArgs{
		movementType: in.MovementType,
		quantity:     in.Quantity,
		unitCost:     in.UnitCost,
		reference:    in.Reference,
		performedBy:  in.PerformedBy,
		notes:        in.Notes,
	}
	if err := args.validate(); err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRecordRepository, movRepo repository.MovementRepository) error {
		rec, err := stockRepo.GetForUpdate(ctx, in.StockRecordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("registro de stock %s: %w", in.StockRecordID, domain.ErrNotFound)
		}
		res, err = uc.applyMovement(ctx, stockRepo, movRepo, rec, args)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, res)
	return res, nil
}

func (a movementArgs) validate() error {
	if err := a.movementType.CheckQuantity(a.quantity); err != nil {
		return err
	}
	if a.unitCost != nil && a.unitCost.IsNegative() {
		return fmt.Errorf("costo unitario negativo: %w", domain.ErrValidation)
	}
	return nil
}

// applyMovement muta rec (ya bloqueado) y agrega la entrada al ledger dentro de la tx del caller.
// No emite eventos: eso ocurre en afterCommit.
func (uc *LedgerUseCase) applyMovement(
	ctx context.Context,
	stockRepo repository.StockRecordRepository,
	movRepo repository.MovementRepository,
	rec *entity.StockRecord,
	args movementArgs,
) (*dto.MovementResult, error) {
	if !rec.IsActive {
		return nil, fmt.Errorf("registro de stock %s inactivo: %w", rec.ID, domain.ErrValidation)
	}
	q := args.quantity
	if q < 0 && -q > rec.QuantityAvailable {
		return nil, fmt.Errorf("salida de %d con %d disponibles: %w", -q, rec.QuantityAvailable, domain.ErrInsufficientStock)
	}

	onHandBefore := rec.QuantityOnHand
	quantityAfter := onHandBefore + q
	availableAfter := rec.QuantityAvailable + q
	if availableAfter < 0 {
		availableAfter = 0
	}

	// Costo promedio ponderado: solo entradas con costo informado lo recalculan.
	unitCost := rec.AverageCost
	if args.unitCost != nil {
		unitCost = *args.unitCost
		if q > 0 {
			rec.AverageCost = inventory.CostCalculator(onHandBefore, rec.AverageCost, q, unitCost)
			if args.movementType == entity.MovementTypePurchase {
				rec.LastPurchaseCost = unitCost
			}
		}
	}

	last, err := movRepo.LastForRecord(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	var runningTotal, sequence int64
	if last != nil {
		runningTotal, sequence = last.RunningTotal, last.Sequence
	}

	now := uc.now().UTC()
	rec.QuantityOnHand = quantityAfter
	rec.QuantityAvailable = availableAfter
	rec.StockStatus = inventory.DeriveStatus(quantityAfter, rec.ReorderPoint, rec.MinStockLevel)
	rec.LastMovementAt = &now
	rec.UpdatedAt = now
	if !rec.InvariantHolds() {
		return nil, fmt.Errorf("invariante de cantidades en %s: %w", rec.ID, domain.ErrValidation)
	}
	if err := stockRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	mov := &entity.MovementRecord{
		ID:            uuid.New().String(),
		StockRecordID: rec.ID,
		ProductID:     rec.ProductID,
		WarehouseID:   rec.WarehouseID,
		MovementType:  args.movementType,
		Quantity:      q,
		UnitCost:      unitCost,
		TotalCost:     inventory.Valuation(q, unitCost),
		Reference:     args.reference,
		PerformedBy:   args.performedBy,
		Notes:         args.notes,
		QuantityAfter: quantityAfter,
		RunningTotal:  runningTotal + q,
		Sequence:      sequence + 1,
		CreatedAt:     now,
	}
	if err := movRepo.Append(ctx, mov); err != nil {
		return nil, err
	}
	return &dto.MovementResult{
		Movement:       mov,
		StockRecord:    rec.Clone(),
		PreviousOnHand: onHandBefore,
	}, nil
}

// afterCommit emite los eventos de cada asiento e invalida la caché. Nunca falla:
// los errores de notificación se registran como NotificationFailure.
func (uc *LedgerUseCase) afterCommit(ctx context.Context, results ...*dto.MovementResult) {
	for _, res := range results {
		if res == nil || res.Movement == nil {
			continue
		}
		uc.emitMovementEvents(ctx, res)
	}
	uc.invalidateCache()
}

func (uc *LedgerUseCase) emitMovementEvents(ctx context.Context, res *dto.MovementResult) {
	rec, mov := res.StockRecord, res.Movement
	occurred := mov.CreatedAt

	uc.notify(ctx, entity.Notification{
		Type:       entity.NotificationInventoryChange,
		OccurredAt: occurred,
		Payload: entity.InventoryChange{
			ID:                rec.ID,
			ProductID:         rec.ProductID,
			WarehouseID:       rec.WarehouseID,
			OldQuantity:       res.PreviousOnHand,
			NewQuantity:       rec.QuantityOnHand,
			QuantityAvailable: rec.QuantityAvailable,
			StockStatus:       rec.StockStatus,
			ChangeReason:      string(mov.MovementType),
		},
	})
	uc.notify(ctx, entity.Notification{
		Type:       entity.NotificationInventoryMovement,
		OccurredAt: occurred,
		Payload: entity.InventoryMovement{
			ID:              mov.ID,
			InventoryID:     rec.ID,
			ProductID:       rec.ProductID,
			WarehouseID:     rec.WarehouseID,
			MovementType:    mov.MovementType,
			Quantity:        mov.Quantity,
			QuantityAfter:   mov.QuantityAfter,
			PerformedBy:     mov.PerformedBy,
			ReferenceNumber: mov.Reference.Number,
		},
	})
	if rec.StockStatus.IsAlert() {
		uc.notify(ctx, entity.Notification{
			Type:       entity.NotificationStockAlert,
			OccurredAt: occurred,
			Payload:    uc.buildStockAlert(ctx, rec),
		})
	}
}

func (uc *LedgerUseCase) buildStockAlert(ctx context.Context, rec *entity.StockRecord) entity.StockAlert {
	alert := entity.StockAlert{
		InventoryID:     rec.ID,
		ProductID:       rec.ProductID,
		WarehouseID:     rec.WarehouseID,
		CurrentQuantity: rec.QuantityOnHand,
		ReorderPoint:    rec.ReorderPoint,
		AlertType:       rec.StockStatus,
		Priority:        inventory.AlertPriority(rec.StockStatus),
	}
	name := rec.ProductID
	if uc.catalog != nil {
		product, err := uc.catalog.GetProduct(ctx, rec.ProductID)
		if err != nil {
			uc.log.Warn().Err(err).Str("product_id", rec.ProductID).Msg("catálogo no disponible para alerta de stock")
		} else if product != nil {
			alert.ProductSKU = product.SKU
			alert.ProductName = product.Name
			name = fmt.Sprintf("%s (%s)", product.Name, product.SKU)
		}
	}
	alert.Message = fmt.Sprintf("%s: %s en bodega %s tiene %d unidades",
		alertLabel(rec.StockStatus), name, rec.WarehouseID, rec.QuantityOnHand)
	return alert
}

func alertLabel(status entity.StockStatus) string {
	switch status {
	case entity.StockStatusOutOfStock:
		return "Producto agotado"
	case entity.StockStatusCriticalStock:
		return "Stock crítico"
	default:
		return "Stock bajo"
	}
}

func (uc *LedgerUseCase) notify(ctx context.Context, n entity.Notification) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.log.Warn().
			Err(fmt.Errorf("%w: %v", domain.ErrNotificationFailure, err)).
			Str("event", n.Type).
			Msg("notificación descartada")
	}
}

func (uc *LedgerUseCase) invalidateCache() {
	if uc.cache != nil {
		uc.cache.Invalidate()
	}
}
