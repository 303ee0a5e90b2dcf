package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/events"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// StockUseCase ajustes manuales de stock (entradas, conteos, bajas) fuera de una venta.
// Cada operación es una transacción con bloqueo de fila y recálculo de IsActive.
type StockUseCase struct {
	txRunner    TxRunner
	ledger      *Ledger
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	stockRepo   repository.StockRepository
	publisher   events.Publisher
	log         zerolog.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	ledger *Ledger,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	stockRepo repository.StockRepository,
	publisher events.Publisher,
	log zerolog.Logger,
) *StockUseCase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &StockUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		stockRepo:   stockRepo,
		publisher:   publisher,
		log:         log,
	}
}

// Adjust suma delta al stock de (producto, tienda).
func (uc *StockUseCase) Adjust(ctx context.Context, in dto.AdjustStockRequest) (*dto.StockResponse, error) {
	if in.Delta == 0 {
		return nil, domain.NewValidationError("delta", "debe ser distinto de 0")
	}
	if err := uc.checkRefs(ctx, in.ProductID, in.StoreID); err != nil {
		return nil, err
	}
	var (
		stock  *entity.Stock
		active bool
	)
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, productRepo repository.ProductRepository) error {
		var err error
		if stock, err = uc.ledger.Adjust(ctx, stockRepo, in.ProductID, in.StoreID, in.Delta); err != nil {
			return err
		}
		active, err = uc.ledger.SyncActive(ctx, stockRepo, productRepo, in.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", in.ProductID).Str("store_id", in.StoreID).
		Int("delta", in.Delta).Int("quantity", stock.Quantity).Msg("stock ajustado")
	uc.publish(stock, active, "adjust")
	return toStockResponse(stock, active), nil
}

// Set fija la cantidad absoluta (y el mínimo, si viene).
func (uc *StockUseCase) Set(ctx context.Context, in dto.SetStockRequest) (*dto.StockResponse, error) {
	if err := uc.checkRefs(ctx, in.ProductID, in.StoreID); err != nil {
		return nil, err
	}
	var (
		stock  *entity.Stock
		active bool
	)
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, productRepo repository.ProductRepository) error {
		var err error
		if stock, err = uc.ledger.Set(ctx, stockRepo, in.ProductID, in.StoreID, in.Quantity, in.MinThreshold); err != nil {
			return err
		}
		active, err = uc.ledger.SyncActive(ctx, stockRepo, productRepo, in.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(stock, active, "set")
	return toStockResponse(stock, active), nil
}

// Delete elimina la fila de stock y recalcula IsActive del producto.
func (uc *StockUseCase) Delete(ctx context.Context, productID, storeID string) error {
	var active bool
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, productRepo repository.ProductRepository) error {
		if err := stockRepo.Delete(ctx, productID, storeID); err != nil {
			return err
		}
		var err error
		active, err = uc.ledger.SyncActive(ctx, stockRepo, productRepo, productID)
		return err
	})
	if err != nil {
		return err
	}
	uc.publish(&entity.Stock{ProductID: productID, StoreID: storeID}, active, "delete")
	return nil
}

// ListByProduct stock del producto en cada tienda.
func (uc *StockUseCase) ListByProduct(ctx context.Context, productID string) ([]dto.StockResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.stockRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toStockResponse(s, product.IsActive))
	}
	return out, nil
}

func (uc *StockUseCase) checkRefs(ctx context.Context, productID, storeID string) error {
	if productID == "" {
		return domain.NewValidationError("product_id", "requerido")
	}
	if storeID == "" {
		return domain.NewValidationError("store_id", "requerido")
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (uc *StockUseCase) publish(s *entity.Stock, active bool, reason string) {
	uc.publisher.Publish(events.New(events.TypeStockChanged, events.StockChanged{
		ProductID:     s.ProductID,
		StoreID:       s.StoreID,
		Quantity:      s.Quantity,
		ProductActive: active,
		Reason:        reason,
	}))
}

func toStockResponse(s *entity.Stock, active bool) *dto.StockResponse {
	return &dto.StockResponse{
		ProductID:     s.ProductID,
		StoreID:       s.StoreID,
		Quantity:      s.Quantity,
		MinThreshold:  s.MinThreshold,
		ProductActive: active,
		UpdatedAt:     s.UpdatedAt,
	}
}
