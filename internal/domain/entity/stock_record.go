package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus clasificación derivada del stock usada para alertas.
type StockStatus string

const (
	StockStatusInStock       StockStatus = "in_stock"
	StockStatusLowStock      StockStatus = "low_stock"
	StockStatusCriticalStock StockStatus = "critical_stock"
	StockStatusOutOfStock    StockStatus = "out_of_stock"
)

// IsAlert indica si el estado dispara un stock_alert.
func (s StockStatus) IsAlert() bool {
	return s == StockStatusLowStock || s == StockStatusCriticalStock || s == StockStatusOutOfStock
}

// StockRecord representa el estado actual de un producto en una bodega (y ubicación opcional).
// Es la fila desnormalizada que el motor actualiza junto con el ledger de movimientos.
// Invariante: QuantityAvailable + QuantityReserved <= QuantityOnHand, ambos >= 0.
type StockRecord struct {
	ID          string
	ProductID   string
	WarehouseID string
	LocationID  string // vacío = sin ubicación

	QuantityOnHand    int64
	QuantityAvailable int64
	QuantityReserved  int64
	QuantityInTransit int64

	// Umbrales opcionales (nil = no configurado)
	ReorderPoint    *int64
	ReorderQuantity *int64
	MinStockLevel   *int64
	MaxStockLevel   *int64

	AverageCost      decimal.Decimal // costo promedio ponderado
	LastPurchaseCost decimal.Decimal
	StockStatus      StockStatus

	IsActive       bool
	LastMovementAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InvariantHolds verifica las cantidades no negativas y que disponible+reservado no exceda el físico.
func (s *StockRecord) InvariantHolds() bool {
	if s.QuantityOnHand < 0 || s.QuantityAvailable < 0 || s.QuantityReserved < 0 || s.QuantityInTransit < 0 {
		return false
	}
	return s.QuantityAvailable+s.QuantityReserved <= s.QuantityOnHand
}

// Clone devuelve una copia profunda (los punteros de umbrales no se comparten).
func (s *StockRecord) Clone() *StockRecord {
	if s == nil {
		return nil
	}
	c := *s
	c.ReorderPoint = cloneInt(s.ReorderPoint)
	c.ReorderQuantity = cloneInt(s.ReorderQuantity)
	c.MinStockLevel = cloneInt(s.MinStockLevel)
	c.MaxStockLevel = cloneInt(s.MaxStockLevel)
	if s.LastMovementAt != nil {
		t := *s.LastMovementAt
		c.LastMovementAt = &t
	}
	return &c
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
