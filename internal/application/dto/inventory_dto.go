package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RecordMovementInput entrada del procesador de movimientos.
// Quantity es con signo: positivo entrada, negativo salida.
// UnitCost opcional: en entradas recalcula el costo promedio; en salidas se usa para valorizar
// (si es nil se usa el costo promedio actual).
type RecordMovementInput struct {
	StockRecordID string
	MovementType  entity.MovementType
	Quantity      int64
	UnitCost      *decimal.Decimal
	Reference     entity.Reference
	PerformedBy   string
	Notes         string
}

// MovementResult resultado de un movimiento confirmado.
// Movement es nil cuando la operación fue un no-op (ajuste sin diferencia).
type MovementResult struct {
	Movement    *entity.MovementRecord
	StockRecord *entity.StockRecord
	// PreviousOnHand cantidad física antes del movimiento (para inventory_change).
	PreviousOnHand int64
}

// TransferInput traslado de Quantity unidades entre dos bodegas del mismo producto.
type TransferInput struct {
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64 // positivo
	Reference       entity.Reference
	PerformedBy     string
	Notes           string
}

// TransferResult los dos asientos del traslado.
type TransferResult struct {
	Out *MovementResult
	In  *MovementResult
}

// CommitReservationInput convierte una reserva previa en venta (libera y descuenta en una sola transacción).
type CommitReservationInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int64 // positivo
	UnitCost    *decimal.Decimal
	Reference   entity.Reference
	PerformedBy string
	Notes       string
}

// UpsertStockRecordInput inicializa un registro o reconfigura sus umbrales.
// Las cantidades iniciales solo aplican al crear; los umbrales reemplazan la configuración vigente.
type UpsertStockRecordInput struct {
	ProductID        string
	WarehouseID      string
	LocationID       string
	InitialOnHand    int64
	InitialInTransit int64
	InitialUnitCost  *decimal.Decimal
	ReorderPoint     *int64
	ReorderQuantity  *int64
	MinStockLevel    *int64
	MaxStockLevel    *int64
	IsActive         *bool // nil = sin cambio (activo al crear)
}

// MovementPage página del historial de movimientos.
type MovementPage struct {
	Items  []*entity.MovementRecord `json:"items"`
	PageResponse
}

// ReorderSuggestionDTO sugerencia de reposición para un registro bajo su punto de reorden.
type ReorderSuggestionDTO struct {
	StockRecordID      string          `json:"stock_record_id"`
	ProductID          string          `json:"product_id"`
	WarehouseID        string          `json:"warehouse_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	QuantityAvailable  int64           `json:"quantity_available"`
	ReorderPoint       int64           `json:"reorder_point"`
	Deficit            int64           `json:"deficit"`             // ReorderPoint - QuantityAvailable
	SuggestedOrderQty  int64           `json:"suggested_order_qty"`
	UnitCost           decimal.Decimal `json:"unit_cost"`           // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	SupplierID         string          `json:"supplier_id,omitempty"`
	SupplierName       string          `json:"supplier_name,omitempty"`
	LeadTimeDays       int             `json:"lead_time_days,omitempty"`
	Priority           int             `json:"priority"` // 1 = más urgente
	GeneratedAt        time.Time       `json:"generated_at"`
}
