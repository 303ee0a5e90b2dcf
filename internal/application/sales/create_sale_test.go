package sales_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/events"
	"github.com/jhoicas/tienda-api/internal/application/fx"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
)

type fixedRate struct{ rate decimal.Decimal }

func (f fixedRate) CurrentRate(context.Context) decimal.Decimal { return f.rate }

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixture: tienda W1 con 10 unidades de P1 ($2.00) y 5 de P2 ($3.50).
func fixture(t *testing.T) *memory.Store {
	t.Helper()
	db := memory.New()
	ctx := context.Background()
	require.NoError(t, db.Stores().Create(ctx, &entity.Store{ID: "w1", Code: "W1", Name: "Principal", IsActive: true}))
	require.NoError(t, db.Products().Create(ctx, &entity.Product{ID: "p1", SKU: "P1", Name: "Franela", PriceUSD: dec("2.00")}))
	require.NoError(t, db.Products().Create(ctx, &entity.Product{ID: "p2", SKU: "P2", Name: "Gorra", PriceUSD: dec("3.50")}))

	ledger := inventory.NewLedger()
	require.NoError(t, db.Run(ctx, func(stockRepo repository.StockRepository, productRepo repository.ProductRepository) error {
		for id, qty := range map[string]int{"p1": 10, "p2": 5} {
			if _, err := ledger.Adjust(ctx, stockRepo, id, "w1", qty); err != nil {
				return err
			}
			if _, err := ledger.SyncActive(ctx, stockRepo, productRepo, id); err != nil {
				return err
			}
		}
		return nil
	}))
	return db
}

func newUseCase(db *memory.Store, rates sales.RateProvider, pub events.Publisher) *sales.CreateSaleUseCase {
	return sales.NewCreateSaleUseCase(db, inventory.NewLedger(), rates, db.Products(), db.Stores(), db.Sales(),
		pub, dec("0.16"), zerolog.Nop())
}

func stockOf(t *testing.T, db *memory.Store, productID string) int {
	t.Helper()
	st, err := db.Stocks().Get(context.Background(), productID, "w1")
	require.NoError(t, err)
	require.NotNil(t, st)
	return st.Quantity
}

func cart(method string, qty int) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		StoreID:          "w1",
		PaymentMethod:    method,
		PaymentReference: "00123",
		Customer:         dto.CustomerRequest{Name: "Ana Pérez", IDDoc: "V-12345678"},
		Items:            []dto.SaleItemRequest{{ProductID: "p1", Quantity: qty}},
	}
}

func TestCreateSale_EscenarioA_PuntoConIVA(t *testing.T) {
	db := fixture(t)
	rec := &recorder{}
	uc := newUseCase(db, fixedRate{dec("40")}, rec)

	resp, err := uc.CreateSale(context.Background(), "u-1", cart("PUNTO", 3))
	require.NoError(t, err)

	assert.Equal(t, "240.00", resp.TotalLocal.StringFixed(2))
	assert.Equal(t, "206.90", resp.SubtotalLocal.StringFixed(2))
	assert.Equal(t, "33.10", resp.VATLocal.StringFixed(2))
	assert.Equal(t, "6.00", resp.TotalUSD.StringFixed(2))
	assert.True(t, resp.FXRateUsed.Equal(dec("40")))
	assert.True(t, resp.SubtotalLocal.Add(resp.VATLocal).Equal(resp.TotalLocal))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "2.00", resp.Lines[0].UnitPriceUSD.StringFixed(2))
	assert.Equal(t, "80.00", resp.Lines[0].UnitPriceLocal.StringFixed(2))
	assert.Equal(t, "u-1", resp.CreatedBy)

	assert.Equal(t, 7, stockOf(t, db, "p1"))
	assert.Equal(t, []string{events.TypeSaleCreated, events.TypeStockChanged}, rec.types())
}

func TestCreateSale_EscenarioB_DivisasSinIVA(t *testing.T) {
	db := fixture(t)
	uc := newUseCase(db, fixedRate{dec("40")}, nil)

	req := cart("divisas", 3)
	req.Customer = dto.CustomerRequest{}
	resp, err := uc.CreateSale(context.Background(), "u-1", req)
	require.NoError(t, err)

	assert.Equal(t, "240.00", resp.TotalLocal.StringFixed(2))
	assert.Equal(t, "240.00", resp.SubtotalLocal.StringFixed(2))
	assert.True(t, resp.VATLocal.IsZero())
	assert.Equal(t, "DIVISAS", resp.PaymentMethod)
}

func TestCreateSale_EscenarioC_StockInsuficiente(t *testing.T) {
	db := fixture(t)
	rec := &recorder{}
	uc := newUseCase(db, fixedRate{dec("40")}, rec)

	_, err := uc.CreateSale(context.Background(), "u-1", cart("PUNTO", 15))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, stockOf(t, db, "p1"))
	list, err := db.Sales().List(context.Background(), repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, rec.types())
}

func TestCreateSale_RollbackDeLineasPrevias(t *testing.T) {
	db := fixture(t)
	uc := newUseCase(db, fixedRate{dec("40")}, nil)

	req := cart("USDT", 0)
	req.Items = []dto.SaleItemRequest{
		{ProductID: "p1", Quantity: 4}, // se descuenta primero (orden p1 < p2)
		{ProductID: "p2", Quantity: 6}, // solo hay 5
	}
	_, err := uc.CreateSale(context.Background(), "u-1", req)
	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "p2", se.ProductID)

	assert.Equal(t, 10, stockOf(t, db, "p1"))
	assert.Equal(t, 5, stockOf(t, db, "p2"))
}

func TestCreateSale_EscenarioD_VentasConcurrentes(t *testing.T) {
	db := fixture(t)
	uc := newUseCase(db, fixedRate{dec("40")}, nil)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.CreateSale(context.Background(), "u-1", cart("DIVISAS", 6))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 4, stockOf(t, db, "p1"))
}

func TestCreateSale_VentasCruzadasSinInterbloqueo(t *testing.T) {
	db := fixture(t)
	uc := newUseCase(db, fixedRate{dec("40")}, nil)

	a := cart("DIVISAS", 0)
	a.Items = []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}}
	b := cart("DIVISAS", 0)
	b.Items = []dto.SaleItemRequest{{ProductID: "p2", Quantity: 1}, {ProductID: "p1", Quantity: 1}}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		req := a
		if i%2 == 1 {
			req = b
		}
		wg.Add(1)
		go func(req dto.CreateSaleRequest) {
			defer wg.Done()
			_, err := uc.CreateSale(context.Background(), "u-1", req)
			assert.NoError(t, err)
		}(req)
	}
	wg.Wait()

	assert.Equal(t, 6, stockOf(t, db, "p1"))
	assert.Equal(t, 1, stockOf(t, db, "p2"))
}

func TestCreateSale_EscenarioE_TasaCongelada(t *testing.T) {
	db := fixture(t)
	ctx := context.Background()
	provider := fx.NewProvider(db.Rates(), fx.NoopRateCache{}, "1", zerolog.Nop())
	_, err := provider.RecordRate(ctx, dec("40"), "admin")
	require.NoError(t, err)

	uc := newUseCase(db, provider, nil)
	resp, err := uc.CreateSale(ctx, "u-1", cart("PUNTO", 1))
	require.NoError(t, err)

	_, err = provider.RecordRate(ctx, dec("45"), "admin")
	require.NoError(t, err)

	got, err := sales.NewQueryUseCase(db.Sales()).GetSale(ctx, resp.ID)
	require.NoError(t, err)
	assert.True(t, got.FXRateUsed.Equal(dec("40")))
	assert.Equal(t, "80.00", got.TotalLocal.StringFixed(2))
	assert.Equal(t, "80.00", got.Lines[0].UnitPriceLocal.StringFixed(2))
}

func TestCreateSale_PrecioDeCatalogoPosteriorNoAfecta(t *testing.T) {
	db := fixture(t)
	ctx := context.Background()
	uc := newUseCase(db, fixedRate{dec("40")}, nil)
	resp, err := uc.CreateSale(ctx, "u-1", cart("DIVISAS", 1))
	require.NoError(t, err)

	require.NoError(t, db.Products().Update(ctx, &entity.Product{ID: "p1", Name: "Franela", PriceUSD: dec("9.99")}))

	got, err := sales.NewQueryUseCase(db.Sales()).GetSale(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.00", got.Lines[0].UnitPriceUSD.StringFixed(2))
}

func TestCreateSale_PreciosExplicitos(t *testing.T) {
	db := fixture(t)
	uc := newUseCase(db, fixedRate{dec("40")}, nil)

	usd := dec("1.50")
	bs := dec("100")
	req := cart("DIVISAS", 0)
	req.Items = []dto.SaleItemRequest{
		{ProductID: "p1", Quantity: 1, UnitPriceUSD: &usd, UnitPrice: &bs},
		{ProductID: "p2", Quantity: 2, UnitPrice: &bs},
	}
	resp, err := uc.CreateSale(context.Background(), "u-1", req)
	require.NoError(t, err)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "60.00", resp.Lines[0].UnitPriceLocal.StringFixed(2))
	assert.Equal(t, "2.50", resp.Lines[1].UnitPriceUSD.StringFixed(2))
	assert.Equal(t, "260.00", resp.TotalLocal.StringFixed(2))
}

func TestCreateSale_ActivoSeRecalcula(t *testing.T) {
	db := fixture(t)
	uc := newUseCase(db, fixedRate{dec("40")}, nil)
	req := cart("DIVISAS", 0)
	req.Items = []dto.SaleItemRequest{{ProductID: "p2", Quantity: 5}}

	_, err := uc.CreateSale(context.Background(), "u-1", req)
	require.NoError(t, err)

	p, err := db.Products().GetByID(context.Background(), "p2")
	require.NoError(t, err)
	assert.False(t, p.IsActive)
}

func TestCreateSale_Validaciones(t *testing.T) {
	db := fixture(t)
	uc := newUseCase(db, fixedRate{dec("40")}, nil)
	negVAT := dec("-0.1")

	cases := []struct {
		name  string
		edit  func(r *dto.CreateSaleRequest)
		field string
	}{
		{"sin método de pago", func(r *dto.CreateSaleRequest) { r.PaymentMethod = " " }, "payment_method"},
		{"método desconocido", func(r *dto.CreateSaleRequest) { r.PaymentMethod = "CHEQUE" }, "payment_method"},
		{"pago móvil sin referencia", func(r *dto.CreateSaleRequest) {
			r.PaymentMethod = "PAGO_MOVIL"
			r.PaymentReference = "  "
		}, "payment_reference"},
		{"con IVA sin nombre", func(r *dto.CreateSaleRequest) { r.Customer.Name = "" }, "customer.name"},
		{"con IVA sin documento", func(r *dto.CreateSaleRequest) { r.Customer.IDDoc = "" }, "customer.id_doc"},
		{"carrito vacío", func(r *dto.CreateSaleRequest) { r.Items = nil }, "items"},
		{"cantidad cero", func(r *dto.CreateSaleRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"producto inexistente", func(r *dto.CreateSaleRequest) { r.Items[0].ProductID = "nope" }, "items[0].product_id"},
		{"tienda inexistente", func(r *dto.CreateSaleRequest) { r.StoreID = "nope" }, "store_id"},
		{"iva negativo", func(r *dto.CreateSaleRequest) { r.VATRate = &negVAT }, "vat_rate"},
		{"moneda inválida", func(r *dto.CreateSaleRequest) { r.PayCurrency = "EUR" }, "pay_currency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := cart("PUNTO", 1)
			tc.edit(&req)
			_, err := uc.CreateSale(context.Background(), "u-1", req)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 10, stockOf(t, db, "p1"))
}

func TestCreateSale_SinIVANoExigeCliente(t *testing.T) {
	db := fixture(t)
	uc := newUseCase(db, fixedRate{dec("40")}, nil)
	req := cart("USDT", 1)
	req.Customer = dto.CustomerRequest{}
	req.PayCurrency = "bs"

	resp, err := uc.CreateSale(context.Background(), "u-1", req)
	require.NoError(t, err)
	assert.Equal(t, entity.CurrencyVES, resp.PayCurrency)
}
