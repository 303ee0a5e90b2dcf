package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/fx"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/reports"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/tienda-api/internal/interfaces/http"
)

// newAPI arma la API completa sobre memoria: tienda w1 y producto p1 ($2.00) sin stock, tasa 40.
func newAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	db := memory.New()
	ctx := context.Background()
	require.NoError(t, db.Stores().Create(ctx, &entity.Store{ID: "w1", Code: "W1", Name: "Principal", IsActive: true}))
	require.NoError(t, db.Products().Create(ctx, &entity.Product{ID: "p1", SKU: "P1", Name: "Franela", PriceUSD: decimal.RequireFromString("2.00")}))

	log := zerolog.Nop()
	ledger := inventory.NewLedger()
	provider := fx.NewProvider(db.Rates(), fx.NoopRateCache{}, "40", log)

	app := fiber.New()
	app.Use(apphttp.AccessLog(log))
	apphttp.Router(app, apphttp.RouterDeps{
		CreateSale: sales.NewCreateSaleUseCase(db, ledger, provider, db.Products(), db.Stores(), db.Sales(), nil, sales.DefaultVATRate, log),
		SaleQuery:  sales.NewQueryUseCase(db.Sales()),
		SalePDF:    sales.NewPDFUseCase(db.Sales(), db.Stores(), pdf.NewMarotoReceiptGenerator("Tienda Test")),
		FX:         provider,
		ProductUC:  catalog.NewProductUseCase(db, ledger, db.Products(), db.Stores(), db.Stocks(), nil, log),
		StoreUC:    catalog.NewStoreUseCase(db.Stores()),
		StockUC:    inventory.NewStockUseCase(db, ledger, db.Products(), db.Stores(), db.Stocks(), nil, log),
		AlertsUC:   inventory.NewStockAlertsUseCase(db.Products(), db.Stocks(), 5),
		ReportsUC:  reports.NewUseCase(db.Reports(), provider),
		JWTSecret:  testJWTSecret,
	})
	return app, db
}

func call(t *testing.T, app *fiber.App, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func restock(t *testing.T, app *fiber.App, qty int) {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/stock/adjust", "bodeguero",
		dto.AdjustStockRequest{ProductID: "p1", StoreID: "w1", Delta: qty})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func saleBody(qty int) fiber.Map {
	return fiber.Map{
		"store_id":       "w1",
		"payment_method": "PUNTO",
		"customer":       fiber.Map{"name": "Ana Pérez", "id_doc": "V-12345678"},
		"items":          []fiber.Map{{"product_id": "p1", "quantity": qty}},
	}
}

func TestHealth(t *testing.T) {
	app, _ := newAPI(t)
	resp := call(t, app, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_VentaCompleta(t *testing.T) {
	app, db := newAPI(t)
	restock(t, app, 10)

	resp := call(t, app, http.MethodPost, "/api/sales", "vendedor", saleBody(3))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale dto.SaleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sale))
	resp.Body.Close()

	assert.Equal(t, "240.00", sale.TotalLocal.StringFixed(2))
	assert.Equal(t, "6.00", sale.TotalUSD.StringFixed(2))
	assert.Equal(t, testUserID, sale.CreatedBy)

	st, err := db.Stocks().Get(context.Background(), "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, 7, st.Quantity)

	got := call(t, app, http.MethodGet, "/api/sales/"+sale.ID, "bodeguero", nil)
	defer got.Body.Close()
	assert.Equal(t, http.StatusOK, got.StatusCode)

	inv := call(t, app, http.MethodGet, "/api/sales/"+sale.ID+"/invoice?currency=VES", "vendedor", nil)
	defer inv.Body.Close()
	require.Equal(t, http.StatusOK, inv.StatusCode)
	assert.Equal(t, "application/pdf", inv.Header.Get("Content-Type"))
	assert.Contains(t, inv.Header.Get("Content-Disposition"), "-VES.pdf")
	raw, _ := io.ReadAll(inv.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestAPI_StockInsuficienteResponde409(t *testing.T) {
	app, db := newAPI(t)
	restock(t, app, 2)

	resp := call(t, app, http.MethodPost, "/api/sales", "vendedor", saleBody(5))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, resp).Code)

	st, err := db.Stocks().Get(context.Background(), "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Quantity)
}

func TestAPI_ErroresDeValidacionIndicanCampo(t *testing.T) {
	app, _ := newAPI(t)
	restock(t, app, 10)

	tests := []struct {
		name  string
		edit  func(b fiber.Map)
		field string
	}{
		{"carrito vacío", func(b fiber.Map) { b["items"] = []fiber.Map{} }, "items"},
		{"pago móvil sin referencia", func(b fiber.Map) { b["payment_method"] = "PAGO_MOVIL" }, "payment_reference"},
		{"IVA sin cliente", func(b fiber.Map) { b["customer"] = fiber.Map{} }, "customer.name"},
		{"moneda desconocida", func(b fiber.Map) { b["pay_currency"] = "EUR" }, "pay_currency"},
		{"producto inexistente", func(b fiber.Map) { b["items"] = []fiber.Map{{"product_id": "nope", "quantity": 1}} }, "items[0].product_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := saleBody(1)
			tt.edit(body)
			resp := call(t, app, http.MethodPost, "/api/sales", "vendedor", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.field, decodeError(t, resp).Field)
		})
	}
}

func TestAPI_Permisos(t *testing.T) {
	app, _ := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/sales", "bodeguero", saleBody(1))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/stock/adjust", "vendedor",
		dto.AdjustStockRequest{ProductID: "p1", StoreID: "w1", Delta: 1})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/products", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_Tasa(t *testing.T) {
	app, _ := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/fx", "admin", fiber.Map{"rate": "0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "rate", decodeError(t, resp).Field)

	resp = call(t, app, http.MethodPost, "/api/fx", "admin", fiber.Map{"rate": "45.5"})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/fx", "vendedor", nil)
	defer resp.Body.Close()
	var cur dto.CurrentRateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cur))
	assert.Equal(t, "45.50", cur.Rate.StringFixed(2))
	assert.Equal(t, "VES", cur.Currency)
}

func TestAPI_AjusteNegativoNoBajaDeCero(t *testing.T) {
	app, _ := newAPI(t)
	restock(t, app, 1)

	resp := call(t, app, http.MethodPost, "/api/stock/adjust", "admin",
		dto.AdjustStockRequest{ProductID: "p1", StoreID: "w1", Delta: -2})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, resp).Code)

	resp = call(t, app, http.MethodGet, "/api/products/p1", "admin", nil)
	defer resp.Body.Close()
	var p dto.ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.True(t, p.IsActive)
}
