package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// StockAlertsUseCase clasifica productos en inactivos, agotados y con stock bajo.
type StockAlertsUseCase struct {
	productRepo       repository.ProductRepository
	stockRepo         repository.StockRepository
	fallbackThreshold int
}

// NewStockAlertsUseCase construye el caso de uso. fallback se usa si ninguna fila define mínimo.
func NewStockAlertsUseCase(productRepo repository.ProductRepository, stockRepo repository.StockRepository, fallback int) *StockAlertsUseCase {
	if fallback <= 0 {
		fallback = 5
	}
	return &StockAlertsUseCase{productRepo: productRepo, stockRepo: stockRepo, fallbackThreshold: fallback}
}

// Alerts umbral efectivo por producto = mayor min_threshold positivo de sus filas, o el umbral
// de respaldo. threshold <= 0 usa el configurado.
func (uc *StockAlertsUseCase) Alerts(ctx context.Context, threshold int) (*dto.StockAlertsResponse, error) {
	if threshold <= 0 {
		threshold = uc.fallbackThreshold
	}

	products, err := uc.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	stocks, err := uc.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// productID → (total, mayor mínimo positivo)
	type agg struct{ total, maxMin int }
	byProduct := make(map[string]agg, len(products))
	for _, s := range stocks {
		a := byProduct[s.ProductID]
		a.total += s.Quantity
		if s.MinThreshold > a.maxMin {
			a.maxMin = s.MinThreshold
		}
		byProduct[s.ProductID] = a
	}

	sort.SliceStable(products, func(i, j int) bool {
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	})

	resp := &dto.StockAlertsResponse{
		FallbackThreshold: threshold,
		Inactive:          []dto.StockAlertItem{},
		OutOfStock:        []dto.StockAlertItem{},
		LowStock:          []dto.StockAlertItem{},
	}
	for _, p := range products {
		a := byProduct[p.ID]
		effective := threshold
		if a.maxMin > 0 {
			effective = a.maxMin
		}
		item := dto.StockAlertItem{
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			TotalStock: a.total,
			Threshold:  effective,
			IsActive:   p.IsActive,
		}
		switch {
		case !p.IsActive:
			resp.Inactive = append(resp.Inactive, item)
		case a.total <= 0:
			resp.OutOfStock = append(resp.OutOfStock, item)
		case a.total <= effective:
			resp.LowStock = append(resp.LowStock, item)
		}
	}
	return resp, nil
}
