package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ReferenceRequest referencia de negocio recibida por la API.
type ReferenceRequest struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Number string `json:"number"`
}

func (r ReferenceRequest) toEntity() entity.Reference {
	return entity.Reference{Type: r.Type, ID: r.ID, Number: r.Number}
}

// RecordMovementRequest cuerpo de POST /api/inventory/stock-records/:id/movements.
type RecordMovementRequest struct {
	MovementType string           `json:"movement_type"`
	Quantity     int64            `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference    ReferenceRequest `json:"reference"`
	Notes        string           `json:"notes"`
}

// ToInput valida el tipo y arma la entrada del caso de uso.
func (r RecordMovementRequest) ToInput(stockRecordID, performedBy string) (RecordMovementInput, error) {
	t, err := entity.ParseMovementType(r.MovementType)
	if err != nil {
		return RecordMovementInput{}, err
	}
	return RecordMovementInput{
		StockRecordID: stockRecordID,
		MovementType:  t,
		Quantity:      r.Quantity,
		UnitCost:      r.UnitCost,
		Reference:     r.Reference.toEntity(),
		PerformedBy:   performedBy,
		Notes:         r.Notes,
	}, nil
}

// ReservationRequest cuerpo de reserve/release.
type ReservationRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
}

// CommitReservationRequest cuerpo de POST /api/inventory/reservations/commit.
type CommitReservationRequest struct {
	ProductID   string           `json:"product_id"`
	WarehouseID string           `json:"warehouse_id"`
	Quantity    int64            `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference   ReferenceRequest `json:"reference"`
	Notes       string           `json:"notes"`
}

// ToInput arma la entrada del caso de uso.
func (r CommitReservationRequest) ToInput(performedBy string) CommitReservationInput {
	return CommitReservationInput{
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		UnitCost:    r.UnitCost,
		Reference:   r.Reference.toEntity(),
		PerformedBy: performedBy,
		Notes:       r.Notes,
	}
}

// AdjustStockRequest cuerpo de POST /api/inventory/stock-records/:id/adjust.
type AdjustStockRequest struct {
	TargetOnHand *int64 `json:"target_on_hand"`
	Reason       string `json:"reason"`
}

// TransferRequest cuerpo de POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID       string           `json:"product_id"`
	FromWarehouseID string           `json:"from_warehouse_id"`
	ToWarehouseID   string           `json:"to_warehouse_id"`
	Quantity        int64            `json:"quantity"`
	Reference       ReferenceRequest `json:"reference"`
	Notes           string           `json:"notes"`
}

// ToInput arma la entrada del caso de uso.
func (r TransferRequest) ToInput(performedBy string) TransferInput {
	return TransferInput{
		ProductID:       r.ProductID,
		FromWarehouseID: r.FromWarehouseID,
		ToWarehouseID:   r.ToWarehouseID,
		Quantity:        r.Quantity,
		Reference:       r.Reference.toEntity(),
		PerformedBy:     performedBy,
		Notes:           r.Notes,
	}
}

// UpsertStockRecordRequest cuerpo de PUT /api/inventory/stock-records.
type UpsertStockRecordRequest struct {
	ProductID        string           `json:"product_id"`
	WarehouseID      string           `json:"warehouse_id"`
	LocationID       string           `json:"location_id"`
	InitialOnHand    int64            `json:"initial_on_hand"`
	InitialInTransit int64            `json:"initial_in_transit"`
	InitialUnitCost  *decimal.Decimal `json:"initial_unit_cost,omitempty"`
	ReorderPoint     *int64           `json:"reorder_point,omitempty"`
	ReorderQuantity  *int64           `json:"reorder_quantity,omitempty"`
	MinStockLevel    *int64           `json:"min_stock_level,omitempty"`
	MaxStockLevel    *int64           `json:"max_stock_level,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

// ToInput arma la entrada del caso de uso.
func (r UpsertStockRecordRequest) ToInput() UpsertStockRecordInput {
	return UpsertStockRecordInput(r)
}

// StockRecordResponse representación pública de un registro de stock.
type StockRecordResponse struct {
	ID                string             `json:"id"`
	ProductID         string             `json:"product_id"`
	WarehouseID       string             `json:"warehouse_id"`
	LocationID        string             `json:"location_id,omitempty"`
	QuantityOnHand    int64              `json:"quantity_on_hand"`
	QuantityAvailable int64              `json:"quantity_available"`
	QuantityReserved  int64              `json:"quantity_reserved"`
	QuantityInTransit int64              `json:"quantity_in_transit"`
	ReorderPoint      *int64             `json:"reorder_point"`
	ReorderQuantity   *int64             `json:"reorder_quantity"`
	MinStockLevel     *int64             `json:"min_stock_level"`
	MaxStockLevel     *int64             `json:"max_stock_level"`
	AverageCost       decimal.Decimal    `json:"average_cost"`
	LastPurchaseCost  decimal.Decimal    `json:"last_purchase_cost"`
	StockStatus       entity.StockStatus `json:"stock_status"`
	IsActive          bool               `json:"is_active"`
	LastMovementAt    *time.Time         `json:"last_movement_at"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// NewStockRecordResponse convierte la entidad a su forma JSON.
func NewStockRecordResponse(rec *entity.StockRecord) *StockRecordResponse {
	if rec == nil {
		return nil
	}
	return &StockRecordResponse{
		ID:                rec.ID,
		ProductID:         rec.ProductID,
		WarehouseID:       rec.WarehouseID,
		LocationID:        rec.LocationID,
		QuantityOnHand:    rec.QuantityOnHand,
		QuantityAvailable: rec.QuantityAvailable,
		QuantityReserved:  rec.QuantityReserved,
		QuantityInTransit: rec.QuantityInTransit,
		ReorderPoint:      rec.ReorderPoint,
		ReorderQuantity:   rec.ReorderQuantity,
		MinStockLevel:     rec.MinStockLevel,
		MaxStockLevel:     rec.MaxStockLevel,
		AverageCost:       rec.AverageCost,
		LastPurchaseCost:  rec.LastPurchaseCost,
		StockStatus:       rec.StockStatus,
		IsActive:          rec.IsActive,
		LastMovementAt:    rec.LastMovementAt,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

// MovementResponse representación pública de una entrada del ledger.
type MovementResponse struct {
	ID              string              `json:"id"`
	StockRecordID   string              `json:"stock_record_id"`
	ProductID       string              `json:"product_id"`
	WarehouseID     string              `json:"warehouse_id"`
	MovementType    entity.MovementType `json:"movement_type"`
	Quantity        int64               `json:"quantity"`
	UnitCost        decimal.Decimal     `json:"unit_cost"`
	TotalCost       decimal.Decimal     `json:"total_cost"`
	ReferenceType   string              `json:"reference_type,omitempty"`
	ReferenceID     string              `json:"reference_id,omitempty"`
	ReferenceNumber string              `json:"reference_number,omitempty"`
	PerformedBy     string              `json:"performed_by"`
	Notes           string              `json:"notes,omitempty"`
	QuantityAfter   int64               `json:"quantity_after"`
	RunningTotal    int64               `json:"running_total"`
	Sequence        int64               `json:"sequence"`
	CreatedAt       time.Time           `json:"created_at"`
}

// NewMovementResponse convierte la entrada del ledger a su forma JSON.
func NewMovementResponse(m *entity.MovementRecord) *MovementResponse {
	if m == nil {
		return nil
	}
	return &MovementResponse{
		ID:              m.ID,
		StockRecordID:   m.StockRecordID,
		ProductID:       m.ProductID,
		WarehouseID:     m.WarehouseID,
		MovementType:    m.MovementType,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		TotalCost:       m.TotalCost,
		ReferenceType:   m.Reference.Type,
		ReferenceID:     m.Reference.ID,
		ReferenceNumber: m.Reference.Number,
		PerformedBy:     m.PerformedBy,
		Notes:           m.Notes,
		QuantityAfter:   m.QuantityAfter,
		RunningTotal:    m.RunningTotal,
		Sequence:        m.Sequence,
		CreatedAt:       m.CreatedAt,
	}
}

// MovementResultResponse resultado de una operación que escribe en el ledger.
// Movement es nil cuando no hubo cambio (ajuste al mismo valor).
type MovementResultResponse struct {
	Movement    *MovementResponse    `json:"movement"`
	StockRecord *StockRecordResponse `json:"stock_record"`
}

// NewMovementResultResponse convierte el resultado del caso de uso.
func NewMovementResultResponse(res *MovementResult) MovementResultResponse {
	if res == nil {
		return MovementResultResponse{}
	}
	return MovementResultResponse{
		Movement:    NewMovementResponse(res.Movement),
		StockRecord: NewStockRecordResponse(res.StockRecord),
	}
}

// TransferResponse los dos asientos del traslado.
type TransferResponse struct {
	Out MovementResultResponse `json:"out"`
	In  MovementResultResponse `json:"in"`
}

// MovementPageResponse página del historial.
type MovementPageResponse struct {
	Items []*MovementResponse `json:"items"`
	PageResponse
}

// NewMovementPageResponse convierte la página del caso de uso.
func NewMovementPageResponse(p *MovementPage) MovementPageResponse {
	items := make([]*MovementResponse, 0, len(p.Items))
	for _, m := range p.Items {
		items = append(items, NewMovementResponse(m))
	}
	return MovementPageResponse{Items: items, PageResponse: p.PageResponse}
}
