package sales

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/events"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/pricing"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Estados de una venta en curso.
type state string

const (
	stateValidating     state = "validating"
	stateReservingStock state = "reserving_stock"
	statePricing        state = "pricing"
	statePersisting     state = "persisting"
	stateCommitted      state = "committed"
	stateAborted        state = "aborted"
)

// DefaultVATRate IVA por defecto si la configuración no trae uno válido.
var DefaultVATRate = decimal.RequireFromString("0.16")

// CreateSaleUseCase crea una venta: descuenta stock, congela precios y desglosa IVA
// en una sola transacción. Cualquier fallo deja todo como estaba.
type CreateSaleUseCase struct {
	txRunner    SaleTxRunner
	ledger      *inventory.Ledger
	rates       RateProvider
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	saleRepo    repository.SaleRepository
	publisher   events.Publisher
	vatRate     decimal.Decimal
	log         zerolog.Logger
	now         func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso. vatRate es el IVA por defecto.
func NewCreateSaleUseCase(
	txRunner SaleTxRunner,
	ledger *inventory.Ledger,
	rates RateProvider,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	saleRepo repository.SaleRepository,
	publisher events.Publisher,
	vatRate decimal.Decimal,
	log zerolog.Logger,
) *CreateSaleUseCase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if vatRate.IsNegative() || vatRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		vatRate = DefaultVATRate
	}
	return &CreateSaleUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		rates:       rates,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		saleRepo:    saleRepo,
		publisher:   publisher,
		vatRate:     pricing.RoundRate(vatRate),
		log:         log,
		now:         time.Now,
	}
}

// saleInput entrada ya validada y normalizada.
type saleInput struct {
	store     *entity.Store
	method    entity.PaymentMethod
	reference string
	currency  string
	vatRate   decimal.Decimal
	customer  entity.Customer
	notes     string
	items     []dto.SaleItemRequest
	products  map[string]*entity.Product
}

// CreateSale ejecuta la venta completa para userID.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	saleID := uuid.New().String()
	log := uc.log.With().Str("sale_id", saleID).Logger()
	current := stateValidating
	enter := func(s state) {
		current = s
		log.Debug().Str("state", string(s)).Msg("venta: transición")
	}
	abort := func(err error) error {
		log.Warn().Err(err).Str("state", string(current)).Msg("venta abortada")
		current = stateAborted
		return err
	}

	enter(stateValidating)
	input, err := uc.validate(ctx, in)
	if err != nil {
		return nil, abort(err)
	}

	// Una sola lectura de la tasa por venta.
	rate := pricing.EffectiveRate(uc.rates.CurrentRate(ctx))
	now := uc.now().UTC()

	// Orden de bloqueo: product_id ascendente (evita interbloqueos entre ventas).
	order := make([]int, len(input.items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return input.items[order[a]].ProductID < input.items[order[b]].ProductID
	})

	var (
		sale      *entity.Sale
		breakdown pricing.Breakdown
		touched   = make(map[string]*entity.Stock)
		active    = make(map[string]bool)
	)
	err = uc.txRunner.RunSale(ctx, func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		enter(stateReservingStock)
		for _, i := range order {
			item := input.items[i]
			stock, err := uc.ledger.Adjust(ctx, stockRepo, item.ProductID, input.store.ID, -item.Quantity)
			if err != nil {
				return err
			}
			touched[item.ProductID] = stock
		}

		enter(statePricing)
		lines := make([]pricing.LineInput, len(input.items))
		for i, item := range input.items {
			lines[i] = pricing.LineInput{
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				UnitPriceUSD:    item.UnitPriceUSD,
				UnitPriceLocal:  item.UnitPrice,
				CatalogPriceUSD: input.products[item.ProductID].PriceUSD,
			}
		}
		breakdown = pricing.Calculate(lines, rate, input.method, input.vatRate)
		for _, pl := range breakdown.Lines {
			if pl.NonPositive {
				log.Warn().Str("product_id", pl.ProductID).Str("unit_price_usd", pl.UnitPriceUSD.String()).
					Msg("venta: precio unitario no positivo")
			}
		}

		enter(statePersisting)
		sale = &entity.Sale{
			ID:               saleID,
			StoreID:          input.store.ID,
			CreatedBy:        userID,
			CreatedAt:        now,
			Customer:         input.customer,
			PaymentMethod:    input.method,
			PaymentReference: input.reference,
			PayCurrency:      input.currency,
			Notes:            input.notes,
			VATRate:          breakdown.VATRate,
			SubtotalLocal:    breakdown.SubtotalLocal,
			VATLocal:         breakdown.VATLocal,
			TotalLocal:       breakdown.TotalLocal,
			TotalUSD:         breakdown.TotalUSD,
			FXRateUsed:       breakdown.Rate,
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		for _, pl := range breakdown.Lines {
			p := input.products[pl.ProductID]
			line := entity.SaleLine{
				ID:             uuid.New().String(),
				SaleID:         saleID,
				ProductID:      pl.ProductID,
				ProductSKU:     p.SKU,
				ProductName:    p.Name,
				Quantity:       pl.Quantity,
				UnitPriceUSD:   pl.UnitPriceUSD,
				UnitPriceLocal: pl.UnitPriceLocal,
			}
			if err := saleRepo.CreateLine(ctx, &line); err != nil {
				return err
			}
			sale.Lines = append(sale.Lines, line)
		}

		// Bloqueos de producto siempre después de los de stock, en el mismo orden.
		ids := make([]string, 0, len(touched))
		for id := range touched {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			isActive, err := uc.ledger.SyncActive(ctx, stockRepo, productRepo, id)
			if err != nil {
				return err
			}
			active[id] = isActive
		}
		return nil
	})
	if err != nil {
		return nil, abort(err)
	}

	current = stateCommitted
	log.Info().
		Str("state", string(current)).
		Str("store_id", sale.StoreID).
		Str("payment_method", string(sale.PaymentMethod)).
		Str("total_bs", sale.TotalLocal.StringFixed(2)).
		Str("total_usd", sale.TotalUSD.StringFixed(2)).
		Str("fx", sale.FXRateUsed.String()).
		Int("lines", len(sale.Lines)).
		Msg("venta confirmada")

	uc.publishCommitted(sale, touched, active)
	return toSaleResponse(sale), nil
}

func (uc *CreateSaleUseCase) publishCommitted(sale *entity.Sale, touched map[string]*entity.Stock, active map[string]bool) {
	uc.publisher.Publish(events.New(events.TypeSaleCreated, events.SaleCreated{
		SaleID:        sale.ID,
		StoreID:       sale.StoreID,
		PaymentMethod: string(sale.PaymentMethod),
		TotalLocal:    sale.TotalLocal.StringFixed(2),
		TotalUSD:      sale.TotalUSD.StringFixed(2),
		Lines:         len(sale.Lines),
	}))
	for id, stock := range touched {
		uc.publisher.Publish(events.New(events.TypeStockChanged, events.StockChanged{
			ProductID:     id,
			StoreID:       stock.StoreID,
			Quantity:      stock.Quantity,
			ProductActive: active[id],
			Reason:        "sale",
		}))
	}
}

// validate revisa la entrada sin tocar stock. Todo error es *domain.ValidationError.
func (uc *CreateSaleUseCase) validate(ctx context.Context, in dto.CreateSaleRequest) (*saleInput, error) {
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, domain.NewValidationError("payment_method", "requerido")
	}
	method, ok := entity.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, domain.NewValidationError("payment_method", "debe ser PAGO_MOVIL, PUNTO, DIVISAS o USDT")
	}
	reference := strings.TrimSpace(in.PaymentReference)
	if method.RequiresReference() && reference == "" {
		return nil, domain.NewValidationError("payment_reference", "requerido para PAGO_MOVIL")
	}

	customer := entity.Customer{
		Name:    strings.TrimSpace(in.Customer.Name),
		Address: strings.TrimSpace(in.Customer.Address),
		IDDoc:   strings.TrimSpace(in.Customer.IDDoc),
		Phone:   strings.TrimSpace(in.Customer.Phone),
	}
	if method.AppliesVAT() {
		if customer.Name == "" {
			return nil, domain.NewValidationError("customer.name", "requerido cuando el pago causa IVA")
		}
		if customer.IDDoc == "" {
			return nil, domain.NewValidationError("customer.id_doc", "requerido cuando el pago causa IVA")
		}
	}

	vatRate := uc.vatRate
	if in.VATRate != nil {
		if in.VATRate.IsNegative() || in.VATRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, domain.NewValidationError("vat_rate", "debe estar entre 0 y 1")
		}
		vatRate = pricing.RoundRate(*in.VATRate)
	}

	currency, err := NormalizeCurrency(in.PayCurrency)
	if err != nil {
		return nil, domain.NewValidationError("pay_currency", "debe ser USD o VES")
	}

	if strings.TrimSpace(in.StoreID) == "" {
		return nil, domain.NewValidationError("store_id", "requerido")
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "la venta debe tener al menos un producto")
	}
	products := make(map[string]*entity.Product, len(in.Items))
	for i, item := range in.Items {
		field := "items[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, domain.NewValidationError(field+".product_id", "requerido")
		}
		if item.Quantity <= 0 {
			return nil, domain.NewValidationError(field+".quantity", "debe ser mayor que 0")
		}
		if _, seen := products[item.ProductID]; seen {
			continue
		}
		p, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NewValidationError(field+".product_id", "producto no existe")
		}
		products[item.ProductID] = p
	}

	store, err := uc.storeRepo.GetByID(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.NewValidationError("store_id", "tienda no existe")
	}

	return &saleInput{
		store:     store,
		method:    method,
		reference: reference,
		currency:  currency,
		vatRate:   vatRate,
		customer:  customer,
		notes:     strings.TrimSpace(in.Notes),
		items:     in.Items,
		products:  products,
	}, nil
}

// NormalizeCurrency acepta USD y VES (también BS/BSS/BOLIVARES). Vacío es válido.
func NormalizeCurrency(raw string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return "", nil
	case "USD", "$":
		return entity.CurrencyUSD, nil
	case "VES", "BS", "BSS", "BS.", "BOLIVARES":
		return entity.CurrencyVES, nil
	}
	return "", domain.ErrInvalidInput
}
