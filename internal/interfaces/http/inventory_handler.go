package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del ledger de stock (protegido).
type InventoryHandler struct {
	ledger        *inventory.LedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, replenishment *inventory.ReplenishmentUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		ledger:        ledger,
		replenishment: replenishment,
		log:           log.With().Str("component", "http").Logger(),
	}
}

func (h *InventoryHandler) fail(c *fiber.Ctx, err error) error {
	if status, _ := errorStatus(err); status == fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	}
	return writeError(c, err)
}

// GetStockRecord godoc
// @Summary      Obtener registro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del registro"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-records/{id} [get]
func (h *InventoryHandler) GetStockRecord(c *fiber.Ctx) error {
	rec, err := h.ledger.GetStockRecord(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// FindStockRecord godoc
// @Summary      Buscar registro por producto y bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true  "Producto"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-records [get]
func (h *InventoryHandler) FindStockRecord(c *fiber.Ctx) error {
	productID, warehouseID := c.Query("product_id"), c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return badRequest(c, "VALIDATION", "product_id y warehouse_id requeridos")
	}
	rec, err := h.ledger.GetStockRecordByProduct(c.UserContext(), productID, warehouseID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// UpsertStockRecord godoc
// @Summary      Inicializar o reconfigurar un registro de stock
// @Description  Crea el registro con cantidades iniciales o reemplaza umbrales y activación.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UpsertStockRecordRequest  true  "Registro"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-records [put]
func (h *InventoryHandler) UpsertStockRecord(c *fiber.Ctx) error {
	var in dto.UpsertStockRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	rec, err := h.ledger.UpsertStockRecord(c.UserContext(), in.ToInput())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "ID del registro"
// @Param        body  body      dto.RecordMovementRequest  true  "movement_type, quantity con signo, unit_cost opcional"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-records/{id}/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var req dto.RecordMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	in, err := req.ToInput(c.Params("id"), GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.ledger.RecordMovement(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResultResponse(res))
}

// AdjustStock godoc
// @Summary      Ajustar el físico a un conteo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID del registro"
// @Param        body  body      dto.AdjustStockRequest  true  "target_on_hand y motivo"
// @Success      200   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-records/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var req dto.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if req.TargetOnHand == nil {
		return badRequest(c, "VALIDATION", "target_on_hand requerido")
	}
	res, err := h.ledger.AdjustStock(c.UserContext(), c.Params("id"), *req.TargetOnHand, req.Reason, GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewMovementResultResponse(res))
}

// Reserve godoc
// @Summary      Reservar stock
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReservationRequest  true  "Reserva"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	var req dto.ReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	rec, err := h.ledger.ReserveStock(c.UserContext(), req.ProductID, req.WarehouseID, req.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// Release godoc
// @Summary      Liberar stock reservado
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReservationRequest  true  "Liberación"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	var req dto.ReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	rec, err := h.ledger.ReleaseReservedStock(c.UserContext(), req.ProductID, req.WarehouseID, req.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// CommitReservation godoc
// @Summary      Convertir una reserva en venta
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CommitReservationRequest  true  "Reserva a confirmar"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/commit [post]
func (h *InventoryHandler) CommitReservation(c *fiber.Ctx) error {
	var req dto.CommitReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.ledger.CommitReservation(c.UserContext(), req.ToInput(GetUserID(c)))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResultResponse(res))
}

// Transfer godoc
// @Summary      Trasladar stock entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TransferRequest  true  "Traslado"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.ledger.TransferStock(c.UserContext(), req.ToInput(GetUserID(c)))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		Out: dto.NewMovementResultResponse(res.Out),
		In:  dto.NewMovementResultResponse(res.In),
	})
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        stock_record_id  query  string  false  "Registro"
// @Param        product_id       query  string  false  "Producto"
// @Param        warehouse_id     query  string  false  "Bodega"
// @Param        type             query  string  false  "Tipos separados por coma"
// @Param        from             query  string  false  "RFC3339, inclusive"
// @Param        to               query  string  false  "RFC3339, inclusive"
// @Param        sort_by          query  string  false  "created_at | quantity | sequence"
// @Param        order            query  string  false  "asc | desc"
// @Param        limit            query  int     false  "Máx. 100"
// @Param        offset           query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		StockRecordID: c.Query("stock_record_id"),
		ProductID:     c.Query("product_id"),
		WarehouseID:   c.Query("warehouse_id"),
		SortBy:        repository.MovementSort(c.Query("sort_by")),
		Ascending:     strings.EqualFold(c.Query("order"), "asc"),
		Limit:         c.QueryInt("limit", repository.DefaultMovementLimit),
		Offset:        c.QueryInt("offset", 0),
	}
	if raw := c.Query("type"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			t, err := entity.ParseMovementType(s)
			if err != nil {
				return h.fail(c, err)
			}
			filter.Types = append(filter.Types, t)
		}
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return badRequest(c, "VALIDATION", "from debe ser RFC3339")
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return badRequest(c, "VALIDATION", "to debe ser RFC3339")
	}

	page, err := h.ledger.GetMovements(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewMovementPageResponse(page))
}

// GetMovement godoc
// @Summary      Obtener una entrada del ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	mov, err := h.ledger.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewMovementResponse(mov))
}

// GetReorderSuggestions godoc
// @Summary      Sugerencias de reposición
// @Description  Registros bajo su punto de reorden, mayor déficit primero. Servido desde caché.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega. Vacío = todas."
// @Success      200  {array}   dto.ReorderSuggestionDTO
// @Router       /api/inventory/reorder-suggestions [get]
func (h *InventoryHandler) GetReorderSuggestions(c *fiber.Ctx) error {
	list := h.replenishment.GetReorderSuggestions(c.UserContext(), c.Query("warehouse_id"))
	return c.JSON(fiber.Map{
		"total":       len(list),
		"suggestions": list,
	})
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
