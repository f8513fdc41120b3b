package entity

import "time"

// Tipos de evento emitidos después del commit.
const (
	NotificationInventoryChange   = "inventory_change"
	NotificationInventoryMovement = "inventory_movement"
	NotificationStockAlert        = "stock_alert"
)

// Prioridades de stock_alert.
const (
	AlertPriorityCritical = "critical"
	AlertPriorityHigh     = "high"
)

// Notification sobre que viaja por la cola de salida hacia el gateway.
type Notification struct {
	Type       string    `json:"type"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// InventoryChange cambio de cantidades de un registro de stock.
type InventoryChange struct {
	ID                string      `json:"id"`
	ProductID         string      `json:"productId"`
	WarehouseID       string      `json:"warehouseId"`
	OldQuantity       int64       `json:"oldQuantity"`
	NewQuantity       int64       `json:"newQuantity"`
	QuantityAvailable int64       `json:"quantityAvailable"`
	StockStatus       StockStatus `json:"stockStatus"`
	ChangeReason      string      `json:"changeReason"`
}

// InventoryMovement resumen de la entrada de ledger recién creada.
type InventoryMovement struct {
	ID              string       `json:"id"`
	InventoryID     string       `json:"inventoryId"`
	ProductID       string       `json:"productId"`
	WarehouseID     string       `json:"warehouseId"`
	MovementType    MovementType `json:"movementType"`
	Quantity        int64        `json:"quantity"`
	QuantityAfter   int64        `json:"quantityAfter"`
	PerformedBy     string       `json:"performedBy"`
	ReferenceNumber string       `json:"referenceNumber"`
}

// StockAlert alerta de umbral (low/critical/out of stock).
type StockAlert struct {
	InventoryID     string      `json:"inventoryId"`
	ProductID       string      `json:"productId"`
	ProductSKU      string      `json:"productSku"`
	ProductName     string      `json:"productName"`
	WarehouseID     string      `json:"warehouseId"`
	CurrentQuantity int64       `json:"currentQuantity"`
	ReorderPoint    *int64      `json:"reorderPoint"`
	AlertType       StockStatus `json:"alertType"`
	Priority        string      `json:"priority"`
	Message         string      `json:"message"`
}
