package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// MovementType tipo cerrado de movimiento de inventario.
type MovementType string

const (
	MovementTypePurchase      MovementType = "purchase"
	MovementTypeSale          MovementType = "sale"
	MovementTypeTransfer      MovementType = "transfer"
	MovementTypeAdjustmentIn  MovementType = "adjustment_in"
	MovementTypeAdjustmentOut MovementType = "adjustment_out"
	MovementTypeReturn        MovementType = "return"
	MovementTypeDamage        MovementType = "damage"
	MovementTypeExpiry        MovementType = "expiry"
)

// Referencias de negocio usadas por el propio motor.
const (
	ReferenceTypeStockAdjustment = "stock_adjustment"
	ReferenceTypeStockTransfer   = "stock_transfer"
	ReferenceTypeReservation     = "reservation"
)

var movementTypes = map[MovementType]struct{}{
	MovementTypePurchase:      {},
	MovementTypeSale:          {},
	MovementTypeTransfer:      {},
	MovementTypeAdjustmentIn:  {},
	MovementTypeAdjustmentOut: {},
	MovementTypeReturn:        {},
	MovementTypeDamage:        {},
	MovementTypeExpiry:        {},
}

// ParseMovementType convierte el string recibido en el borde a MovementType.
// Un tipo desconocido es domain.ErrValidation.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := movementTypes[t]; !ok {
		return "", fmt.Errorf("tipo de movimiento %q: %w", s, domain.ErrValidation)
	}
	return t, nil
}

// Valid indica si t es uno de los tipos conocidos.
func (t MovementType) Valid() bool {
	_, ok := movementTypes[t]
	return ok
}

// IsInbound tipos que solo suman stock.
func (t MovementType) IsInbound() bool {
	return t == MovementTypePurchase || t == MovementTypeReturn || t == MovementTypeAdjustmentIn
}

// IsOutbound tipos que solo restan stock.
func (t MovementType) IsOutbound() bool {
	return t == MovementTypeSale || t == MovementTypeAdjustmentOut || t == MovementTypeDamage || t == MovementTypeExpiry
}

// CheckQuantity valida que el signo de quantity sea coherente con el tipo.
// transfer acepta ambos signos; cero nunca es válido.
func (t MovementType) CheckQuantity(quantity int64) error {
	switch {
	case !t.Valid():
		return fmt.Errorf("tipo de movimiento %q: %w", t, domain.ErrValidation)
	case quantity == 0:
		return fmt.Errorf("cantidad cero: %w", domain.ErrValidation)
	case t.IsInbound() && quantity < 0:
		return fmt.Errorf("%s requiere cantidad positiva: %w", t, domain.ErrValidation)
	case t.IsOutbound() && quantity > 0:
		return fmt.Errorf("%s requiere cantidad negativa: %w", t, domain.ErrValidation)
	}
	return nil
}

// Reference referencia de negocio del movimiento (orden, factura, ajuste...).
type Reference struct {
	Type   string
	ID     string
	Number string
}

// MovementRecord entrada inmutable del ledger. Solo la crea el procesador de movimientos.
type MovementRecord struct {
	ID            string
	StockRecordID string
	ProductID     string
	WarehouseID   string
	MovementType  MovementType
	Quantity      int64 // positivo entrada, negativo salida
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Reference     Reference
	PerformedBy   string
	Notes         string
	QuantityAfter int64
	RunningTotal  int64 // suma acumulada de Quantity en el ledger del registro
	Sequence      int64 // posición 1..N dentro del ledger del registro
	CreatedAt     time.Time
}
