package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/events"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/pricing"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// ProductUseCase alta, edición y consulta de productos.
// El stock inicial pasa por el libro de stock; is_active nunca se escribe desde aquí.
type ProductUseCase struct {
	txRunner    inventory.TxRunner
	ledger      *inventory.Ledger
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	stockRepo   repository.StockRepository
	publisher   events.Publisher
	log         zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.Ledger,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	stockRepo repository.StockRepository,
	publisher events.Publisher,
	log zerolog.Logger,
) *ProductUseCase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ProductUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		stockRepo:   stockRepo,
		publisher:   publisher,
		log:         log,
	}
}

// Create crea el producto y sus filas de stock inicial en una sola transacción.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	name := strings.TrimSpace(in.Name)
	if sku == "" {
		return nil, domain.NewValidationError("sku", "requerido")
	}
	if name == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	if in.PriceUSD.IsNegative() {
		return nil, domain.NewValidationError("price_usd", "no puede ser negativo")
	}
	existing, err := uc.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	seen := make(map[string]bool, len(in.InitialStocks))
	for i, st := range in.InitialStocks {
		field := "initial_stocks[" + strconv.Itoa(i) + "]"
		if st.Quantity < 0 {
			return nil, domain.NewValidationError(field+".quantity", "no puede ser negativa")
		}
		if st.MinThreshold < 0 {
			return nil, domain.NewValidationError(field+".min_threshold", "no puede ser negativo")
		}
		if seen[st.StoreID] {
			return nil, domain.NewValidationError(field+".store_id", "tienda repetida")
		}
		seen[st.StoreID] = true
		store, err := uc.storeRepo.GetByID(ctx, st.StoreID)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, domain.NewValidationError(field+".store_id", "tienda no existe")
		}
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         sku,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		PriceUSD:    pricing.RoundMoney(in.PriceUSD),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var stocks []*entity.Stock
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, productRepo repository.ProductRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		for _, st := range in.InitialStocks {
			minThreshold := st.MinThreshold
			row, err := uc.ledger.Set(ctx, stockRepo, product.ID, st.StoreID, st.Quantity, &minThreshold)
			if err != nil {
				return err
			}
			stocks = append(stocks, row)
		}
		active, err := uc.ledger.SyncActive(ctx, stockRepo, productRepo, product.ID)
		product.IsActive = active
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("product_id", product.ID).Str("sku", product.SKU).Int("stores", len(stocks)).Msg("producto creado")
	total := 0
	resp := toProductResponse(product)
	for _, st := range stocks {
		total += st.Quantity
		resp.Stocks = append(resp.Stocks, dto.StockResponse{
			ProductID: st.ProductID, StoreID: st.StoreID, Quantity: st.Quantity,
			MinThreshold: st.MinThreshold, ProductActive: product.IsActive, UpdatedAt: st.UpdatedAt,
		})
		uc.publisher.Publish(events.New(events.TypeStockChanged, events.StockChanged{
			ProductID: st.ProductID, StoreID: st.StoreID, Quantity: st.Quantity,
			ProductActive: product.IsActive, Reason: "initial",
		}))
	}
	resp.TotalStock = &total
	return resp, nil
}

// Update cambia nombre, descripción o precio. Las ventas ya registradas conservan sus precios.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "no puede estar vacío")
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.PriceUSD != nil {
		if in.PriceUSD.IsNegative() {
			return nil, domain.NewValidationError("price_usd", "no puede ser negativo")
		}
		product.PriceUSD = pricing.RoundMoney(*in.PriceUSD)
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID producto con su stock por tienda.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	stocks, err := uc.stockRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product)
	total := 0
	for _, st := range stocks {
		total += st.Quantity
		resp.Stocks = append(resp.Stocks, dto.StockResponse{
			ProductID: st.ProductID, StoreID: st.StoreID, Quantity: st.Quantity,
			MinThreshold: st.MinThreshold, ProductActive: product.IsActive, UpdatedAt: st.UpdatedAt,
		})
	}
	resp.TotalStock = &total
	return resp, nil
}

// List productos por nombre. active nil = todos.
func (uc *ProductUseCase) List(ctx context.Context, active *bool, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.productRepo.List(ctx, repository.ProductFilter{Active: active, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Items: make([]dto.ProductResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, p := range list {
		total, err := uc.stockRepo.SumByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		resp := toProductResponse(p)
		resp.TotalStock = &total
		out.Items = append(out.Items, *resp)
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		PriceUSD:    p.PriceUSD,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
