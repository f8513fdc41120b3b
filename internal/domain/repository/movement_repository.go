package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementSort columnas permitidas para ordenar el historial.
type MovementSort string

const (
	SortByCreatedAt MovementSort = "created_at"
	SortByQuantity  MovementSort = "quantity"
	SortBySequence  MovementSort = "sequence"
)

// Límites de paginación del historial.
const (
	DefaultMovementLimit = 20
	MaxMovementLimit     = 100
)

// MovementFilter filtros de consulta del ledger. Los campos vacíos no filtran.
type MovementFilter struct {
	StockRecordID string
	ProductID     string
	WarehouseID   string
	Types         []entity.MovementType
	From          *time.Time // inclusive
	To            *time.Time // inclusive
	SortBy        MovementSort
	Ascending     bool
	Limit         int
	Offset        int
}

// Normalize aplica valores por defecto y acota la paginación.
func (f *MovementFilter) Normalize() {
	switch f.SortBy {
	case SortByCreatedAt, SortByQuantity, SortBySequence:
	default:
		f.SortBy = SortByCreatedAt
	}
	if f.Limit <= 0 {
		f.Limit = DefaultMovementLimit
	}
	if f.Limit > MaxMovementLimit {
		f.Limit = MaxMovementLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// MovementRepository define el puerto de persistencia del ledger (solo inserción, nunca update/delete).
type MovementRepository interface {
	Append(ctx context.Context, movement *entity.MovementRecord) error
	GetByID(ctx context.Context, id string) (*entity.MovementRecord, error)
	// LastForRecord devuelve la última entrada del registro (nil si no tiene historial).
	LastForRecord(ctx context.Context, stockRecordID string) (*entity.MovementRecord, error)
	// List devuelve la página pedida y el total de entradas que cumplen el filtro.
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementRecord, int, error)
}
