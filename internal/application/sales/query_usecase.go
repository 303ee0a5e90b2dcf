package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// QueryUseCase lectura de ventas confirmadas.
type QueryUseCase struct {
	saleRepo repository.SaleRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(saleRepo repository.SaleRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo}
}

// GetSale venta con sus líneas.
func (uc *QueryUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := loadSale(ctx, uc.saleRepo, id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// ListSales ventas más recientes primero, sin líneas. storeID vacío = todas.
func (uc *QueryUseCase) ListSales(ctx context.Context, storeID string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	list, err := uc.saleRepo.List(ctx, repository.SaleFilter{StoreID: storeID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	out := &dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, *toSaleResponse(s))
	}
	return out, nil
}

func loadSale(ctx context.Context, saleRepo repository.SaleRepository, id string) (*entity.Sale, error) {
	sale, err := saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := saleRepo.GetLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener líneas de venta: %w", err)
	}
	sale.Lines = lines
	return sale, nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:        s.ID,
		StoreID:   s.StoreID,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		Customer: dto.CustomerResponse{
			Name:    s.Customer.Name,
			Address: s.Customer.Address,
			IDDoc:   s.Customer.IDDoc,
			Phone:   s.Customer.Phone,
		},
		PaymentMethod:    string(s.PaymentMethod),
		PaymentReference: s.PaymentReference,
		PayCurrency:      s.PayCurrency,
		Notes:            s.Notes,
		VATRate:          s.VATRate,
		SubtotalLocal:    s.SubtotalLocal,
		VATLocal:         s.VATLocal,
		TotalLocal:       s.TotalLocal,
		TotalUSD:         s.TotalUSD,
		FXRateUsed:       s.FXRateUsed,
	}
	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:             l.ID,
			ProductID:      l.ProductID,
			SKU:            l.ProductSKU,
			Name:           l.ProductName,
			Quantity:       l.Quantity,
			UnitPriceUSD:   l.UnitPriceUSD,
			UnitPriceLocal: l.UnitPriceLocal,
			LineTotal:      l.TotalLocal(),
		})
	}
	return resp
}
