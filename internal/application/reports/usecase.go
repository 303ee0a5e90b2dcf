// Package reports vistas de solo lectura sobre datos ya confirmados.
package reports

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/pricing"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Períodos de TopSellers.
const (
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodYear   = "year"
	PeriodCustom = "custom"
)

// RateProvider tasa vigente para el panel.
type RateProvider interface {
	CurrentRate(ctx context.Context) decimal.Decimal
}

// UseCase estadísticas del panel y ranking de productos.
type UseCase struct {
	repo  repository.ReportRepository
	rates RateProvider
	now   func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.ReportRepository, rates RateProvider) *UseCase {
	return &UseCase{repo: repo, rates: rates, now: time.Now}
}

// Stats conteo de productos, stock global y por tienda, ventas de 30 días y tasa vigente.
func (uc *UseCase) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	counts, err := uc.repo.ProductCounts(ctx)
	if err != nil {
		return nil, err
	}
	byStore, err := uc.repo.StockByStore(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := uc.repo.SalesSince(ctx, uc.now().UTC().Add(-30*24*time.Hour))
	if err != nil {
		return nil, err
	}

	resp := &dto.StatsResponse{}
	resp.Products.Total = counts.Total
	resp.Products.Active = counts.Active
	resp.Products.Inactive = counts.Total - counts.Active
	resp.Stock.ByStore = make([]dto.StoreStockItem, 0, len(byStore))
	for _, s := range byStore {
		resp.Stock.Global += s.Total
		resp.Stock.ByStore = append(resp.Stock.ByStore, dto.StoreStockItem{StoreCode: s.StoreCode, Total: s.Total})
	}
	resp.SalesLast30d.Count = sales.Count
	resp.SalesLast30d.Total = pricing.RoundMoney(sales.TotalLocal)
	resp.FXUSD = pricing.RoundMoney(uc.rates.CurrentRate(ctx))
	resp.FXBase = entity.CurrencyUSD
	resp.FXCurrency = entity.CurrencyVES
	return resp, nil
}

// TopSellersQuery parámetros del ranking. Start y End (ambos) tienen prioridad sobre Period.
type TopSellersQuery struct {
	Period string
	Start  string
	End    string
	Limit  int
}

// TopSellers productos con más unidades vendidas en el rango [start, end).
func (uc *UseCase) TopSellers(ctx context.Context, q TopSellersQuery) (*dto.TopSellersResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	period := strings.ToLower(strings.TrimSpace(q.Period))
	if period == "" {
		period = PeriodMonth
	}
	start, startOK := parseDate(q.Start)
	end, endOK := parseDate(q.End)
	if startOK && endOK {
		period = PeriodCustom
		if !start.Before(end) {
			return nil, domain.NewValidationError("start", "debe ser anterior a end")
		}
	} else {
		var ok bool
		start, end, ok = PeriodRange(period, uc.now().UTC())
		if !ok {
			return nil, domain.NewValidationError("period", "usa week, month o year")
		}
	}

	rows, err := uc.repo.TopSellers(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.TopSellersResponse{
		PeriodUsed:  period,
		TopProducts: make([]dto.TopSellerItem, 0, len(rows)),
	}
	resp.Range.Start = start.Format(time.RFC3339)
	resp.Range.End = end.Format(time.RFC3339)
	for _, r := range rows {
		resp.TopProducts = append(resp.TopProducts, dto.TopSellerItem{
			ProductID:       r.ProductID,
			Name:            r.Name,
			SKU:             r.SKU,
			TotalUnits:      r.TotalUnits,
			TotalSalesLines: r.TotalLines,
		})
	}
	if len(resp.TopProducts) > 0 {
		best := resp.TopProducts[0]
		resp.BestSeller = &best
	}
	return resp, nil
}

// PeriodRange rango calendario que contiene now: semana desde el lunes, mes o año.
func PeriodRange(period string, now time.Time) (start, end time.Time, ok bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7 // lunes = 0
		start = day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	case PeriodYear:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// parseDate acepta YYYY-MM-DD (medianoche UTC) o RFC3339.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
