package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/catalog"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
)

type apiFixture struct {
	app *fiber.App
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	store.PutSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Andina", LeadTimeDays: 4})
	store.PutProduct(entity.Product{ID: "prod-1", SKU: "CAF-500", Name: "Café 500g", IsActive: true, SupplierID: "sup-1"})
	store.PutWarehouse(entity.Warehouse{ID: "bod-a", Name: "Bodega A", IsActive: true})
	store.PutWarehouse(entity.Warehouse{ID: "bod-b", Name: "Bodega B", IsActive: true})

	cache, err := inventory.NewReorderCache(time.Minute, 16, zerolog.Nop())
	require.NoError(t, err)
	ledger := inventory.NewLedgerUseCase(store, store.StockRecords(), store.Movements(), store, nil, cache, zerolog.Nop())
	replenishment := inventory.NewReplenishmentUseCase(store, cache, 10)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:        ledger,
		Replenishment: replenishment,
		Catalog:       catalog.NewUseCase(store),
		JWTSecret:     testJWTSecret,
		Log:           zerolog.Nop(),
	})
	return &apiFixture{app: app}
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", bearer(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// initRecord crea prod-1 en bod-a con 10 unidades a 10.00 y punto de reorden 5.
func (f *apiFixture) initRecord(t *testing.T) dto.StockRecordResponse {
	t.Helper()
	resp := f.do(t, http.MethodPut, "/api/inventory/stock-records", apphttp.RoleAdmin, fiber.Map{
		"product_id":        "prod-1",
		"warehouse_id":      "bod-a",
		"initial_on_hand":   10,
		"initial_unit_cost": "10.00",
		"reorder_point":     5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.StockRecordResponse](t, resp)
}

func TestAPI_MovementFlow(t *testing.T) {
	f := newAPI(t)
	rec := f.initRecord(t)
	assert.Equal(t, int64(10), rec.QuantityOnHand)
	assert.Equal(t, entity.StockStatusInStock, rec.StockStatus)

	resp := f.do(t, http.MethodPost, "/api/inventory/stock-records/"+rec.ID+"/movements", apphttp.RoleBodeguero, fiber.Map{
		"movement_type": "purchase",
		"quantity":      10,
		"unit_cost":     "12.00",
		"reference":     fiber.Map{"type": "purchase_order", "number": "OC-17"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[dto.MovementResultResponse](t, resp)
	require.NotNil(t, res.Movement)
	assert.Equal(t, int64(20), res.StockRecord.QuantityOnHand)
	assert.True(t, decimal.NewFromInt(11).Equal(res.StockRecord.AverageCost), "costo promedio %s", res.StockRecord.AverageCost)
	assert.Equal(t, testUserID, res.Movement.PerformedBy, "performed_by sale del token")
	assert.Equal(t, "OC-17", res.Movement.ReferenceNumber)

	resp = f.do(t, http.MethodGet, "/api/inventory/movements?stock_record_id="+rec.ID+"&type=purchase", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.MovementPageResponse](t, resp)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, res.Movement.ID, page.Items[0].ID)

	resp = f.do(t, http.MethodGet, "/api/inventory/movements/"+res.Movement.ID, apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mov := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, int64(20), mov.QuantityAfter)

	resp = f.do(t, http.MethodGet, "/api/inventory/stock-records?product_id=prod-1&warehouse_id=bod-a", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, rec.ID, decode[dto.StockRecordResponse](t, resp).ID)
}

func TestAPI_ErrorMapping(t *testing.T) {
	f := newAPI(t)
	rec := f.initRecord(t)
	movements := "/api/inventory/stock-records/" + rec.ID + "/movements"

	tests := []struct {
		name     string
		method   string
		path     string
		role     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"venta mayor al disponible", http.MethodPost, movements, apphttp.RoleAdmin,
			fiber.Map{"movement_type": "sale", "quantity": -11}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"tipo desconocido", http.MethodPost, movements, apphttp.RoleAdmin,
			fiber.Map{"movement_type": "gift", "quantity": 1}, http.StatusBadRequest, "VALIDATION"},
		{"signo contrario al tipo", http.MethodPost, movements, apphttp.RoleAdmin,
			fiber.Map{"movement_type": "purchase", "quantity": -1}, http.StatusBadRequest, "VALIDATION"},
		{"registro inexistente", http.MethodGet, "/api/inventory/stock-records/no-existe", apphttp.RoleAdmin,
			nil, http.StatusNotFound, "NOT_FOUND"},
		{"vendedor no registra movimientos", http.MethodPost, movements, apphttp.RoleVendedor,
			fiber.Map{"movement_type": "purchase", "quantity": 1}, http.StatusForbidden, "FORBIDDEN"},
		{"liberar más de lo reservado", http.MethodPost, "/api/inventory/reservations/release", apphttp.RoleVendedor,
			fiber.Map{"product_id": "prod-1", "warehouse_id": "bod-a", "quantity": 1}, http.StatusConflict, "INVALID_RELEASE"},
		{"ajuste sin objetivo", http.MethodPost, "/api/inventory/stock-records/" + rec.ID + "/adjust", apphttp.RoleAdmin,
			fiber.Map{"reason": "conteo"}, http.StatusBadRequest, "VALIDATION"},
		{"fecha inválida", http.MethodGet, "/api/inventory/movements?from=ayer", apphttp.RoleAdmin,
			nil, http.StatusBadRequest, "VALIDATION"},
		{"búsqueda sin bodega", http.MethodGet, "/api/inventory/stock-records?product_id=prod-1", apphttp.RoleAdmin,
			nil, http.StatusBadRequest, "VALIDATION"},
		{"sin token", http.MethodGet, "/api/inventory/movements", "",
			nil, http.StatusUnauthorized, "MISSING_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, tt.method, tt.path, tt.role, tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantErr, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestAPI_ReservationLifecycle(t *testing.T) {
	f := newAPI(t)
	rec := f.initRecord(t)

	resp := f.do(t, http.MethodPost, "/api/inventory/reservations", apphttp.RoleVendedor, fiber.Map{
		"product_id": "prod-1", "warehouse_id": "bod-a", "quantity": 4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.StockRecordResponse](t, resp)
	assert.Equal(t, int64(6), got.QuantityAvailable)
	assert.Equal(t, int64(4), got.QuantityReserved)

	resp = f.do(t, http.MethodPost, "/api/inventory/reservations/commit", apphttp.RoleVendedor, fiber.Map{
		"product_id": "prod-1", "warehouse_id": "bod-a", "quantity": 3,
		"reference": fiber.Map{"type": "sales_order", "id": "SO-9"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[dto.MovementResultResponse](t, resp)
	assert.Equal(t, entity.MovementTypeSale, res.Movement.MovementType)
	assert.Equal(t, int64(-3), res.Movement.Quantity)
	assert.Equal(t, int64(7), res.StockRecord.QuantityOnHand)
	assert.Equal(t, int64(6), res.StockRecord.QuantityAvailable)
	assert.Equal(t, int64(1), res.StockRecord.QuantityReserved)

	resp = f.do(t, http.MethodPost, "/api/inventory/reservations/release", apphttp.RoleVendedor, fiber.Map{
		"product_id": "prod-1", "warehouse_id": "bod-a", "quantity": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[dto.StockRecordResponse](t, resp)
	assert.Equal(t, int64(7), got.QuantityAvailable)
	assert.Zero(t, got.QuantityReserved)
	assert.Equal(t, rec.ID, got.ID)
}

func TestAPI_AdjustTransferAndReorder(t *testing.T) {
	f := newAPI(t)
	rec := f.initRecord(t)

	resp := f.do(t, http.MethodPost, "/api/inventory/stock-records/"+rec.ID+"/adjust", apphttp.RoleBodeguero, fiber.Map{
		"target_on_hand": 8, "reason": "conteo cíclico",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adj := decode[dto.MovementResultResponse](t, resp)
	require.NotNil(t, adj.Movement)
	assert.Equal(t, entity.MovementTypeAdjustmentOut, adj.Movement.MovementType)
	assert.Equal(t, int64(-2), adj.Movement.Quantity)

	resp = f.do(t, http.MethodPost, "/api/inventory/transfers", apphttp.RoleBodeguero, fiber.Map{
		"product_id": "prod-1", "from_warehouse_id": "bod-a", "to_warehouse_id": "bod-b", "quantity": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tr := decode[dto.TransferResponse](t, resp)
	assert.Equal(t, int64(3), tr.Out.StockRecord.QuantityOnHand)
	assert.Equal(t, int64(5), tr.In.StockRecord.QuantityOnHand)
	assert.Equal(t, "bod-b", tr.In.StockRecord.WarehouseID)

	// bod-a quedó en 3 con punto de reorden 5.
	resp = f.do(t, http.MethodGet, "/api/inventory/reorder-suggestions?warehouse_id=bod-a", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Total       int                        `json:"total"`
		Suggestions []dto.ReorderSuggestionDTO `json:"suggestions"`
	}](t, resp)
	require.Equal(t, 1, body.Total)
	assert.Equal(t, rec.ID, body.Suggestions[0].StockRecordID)
	assert.Equal(t, int64(2), body.Suggestions[0].Deficit)
	assert.Equal(t, "CAF-500", body.Suggestions[0].SKU)
}

func TestAPI_Catalog(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodGet, "/api/products/prod-1", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, "CAF-500", p.SKU)
	assert.Equal(t, "sup-1", p.SupplierID)

	resp = f.do(t, http.MethodGet, "/api/suppliers/sup-1", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, decode[dto.SupplierResponse](t, resp).LeadTimeDays)

	resp = f.do(t, http.MethodGet, "/api/warehouses/bod-z", apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
