package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*saleRepo)(nil)

type saleRepo struct {
	s  *Store
	tx *tx
}

func (r *saleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if !sale.SubtotalLocal.Add(sale.VATLocal).Equal(sale.TotalLocal) {
		return domain.NewValidationError("total", "subtotal + iva debe ser igual al total")
	}
	return autocommit(ctx, r.s, r.tx, func(t *tx) error {
		r.s.mu.RLock()
		_, exists := r.s.sales[sale.ID]
		r.s.mu.RUnlock()
		if exists {
			return domain.ErrDuplicate
		}
		for _, pending := range t.sales {
			if pending.ID == sale.ID {
				return domain.ErrDuplicate
			}
		}
		cp := *sale
		t.sales = append(t.sales, &cp)
		return nil
	})
}

func (r *saleRepo) CreateLine(ctx context.Context, line *entity.SaleLine) error {
	return autocommit(ctx, r.s, r.tx, func(t *tx) error {
		t.lines = append(t.lines, *line)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	if r.tx != nil {
		for _, pending := range r.tx.sales {
			if pending.ID == id {
				cp := *pending
				cp.Lines = nil
				return &cp, nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if sale, ok := r.s.sales[id]; ok {
		cp := *sale
		return &cp, nil
	}
	return nil, nil
}

func (r *saleRepo) GetLines(_ context.Context, saleID string) ([]entity.SaleLine, error) {
	var lines []entity.SaleLine
	if r.tx != nil {
		for _, l := range r.tx.lines {
			if l.SaleID == saleID {
				lines = append(lines, l)
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lines = append(lines, r.s.lines[saleID]...)
	out := make([]entity.SaleLine, len(lines))
	for i, l := range lines {
		if p, ok := r.s.products[l.ProductID]; ok {
			l.ProductSKU = p.SKU
			l.ProductName = p.Name
		}
		out[i] = l
	}
	return out, nil
}

func (r *saleRepo) List(_ context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	out := make([]*entity.Sale, 0, len(r.s.saleIDs))
	for _, id := range r.s.saleIDs {
		sale := r.s.sales[id]
		if filter.StoreID != "" && sale.StoreID != filter.StoreID {
			continue
		}
		cp := *sale
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Limit, filter.Offset), nil
}
