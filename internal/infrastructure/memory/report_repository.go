package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*reportRepo)(nil)

type reportRepo struct {
	s *Store
}

func (r *reportRepo) ProductCounts(_ context.Context) (repository.ProductCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c := repository.ProductCounts{Total: len(r.s.products)}
	for _, p := range r.s.products {
		if p.IsActive {
			c.Active++
		}
	}
	return c, nil
}

func (r *reportRepo) StockByStore(_ context.Context) ([]repository.StoreStockTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := make(map[string]int, len(r.s.stores))
	for _, st := range r.s.stores {
		totals[st.Code] = 0
	}
	for k, st := range r.s.stocks {
		if store, ok := r.s.stores[k.storeID]; ok {
			totals[store.Code] += st.Quantity
		}
	}
	out := make([]repository.StoreStockTotal, 0, len(totals))
	for code, total := range totals {
		out = append(out, repository.StoreStockTotal{StoreCode: code, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoreCode < out[j].StoreCode })
	return out, nil
}

func (r *reportRepo) SalesSince(_ context.Context, since time.Time) (repository.SalesSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := repository.SalesSummary{TotalLocal: decimal.Zero}
	for _, sale := range r.s.sales {
		if sale.CreatedAt.Before(since) {
			continue
		}
		sum.Count++
		sum.TotalLocal = sum.TotalLocal.Add(sale.TotalLocal)
	}
	return sum, nil
}

func (r *reportRepo) TopSellers(_ context.Context, start, end time.Time, limit int) ([]repository.TopSellerRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make(map[string]*repository.TopSellerRow)
	for saleID, lines := range r.s.lines {
		sale, ok := r.s.sales[saleID]
		if !ok || sale.CreatedAt.Before(start) || !sale.CreatedAt.Before(end) {
			continue
		}
		for _, l := range lines {
			row, ok := rows[l.ProductID]
			if !ok {
				row = &repository.TopSellerRow{ProductID: l.ProductID}
				if p, found := r.s.products[l.ProductID]; found {
					row.SKU, row.Name = p.SKU, p.Name
				}
				rows[l.ProductID] = row
			}
			row.TotalUnits += l.Quantity
			row.TotalLines++
		}
	}
	out := make([]repository.TopSellerRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalUnits != b.TotalUnits {
			return a.TotalUnits > b.TotalUnits
		}
		if a.TotalLines != b.TotalLines {
			return a.TotalLines > b.TotalLines
		}
		return a.Name < b.Name
	})
	return paginate(out, limit, 0), nil
}
