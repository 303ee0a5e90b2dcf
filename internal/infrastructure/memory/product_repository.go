package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct {
	s  *Store
	tx *tx
}

func productLockKey(id string) string { return "product:" + id }

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	return autocommit(ctx, r.s, r.tx, func(t *tx) error {
		if t.getProduct(product.ID) != nil {
			return domain.ErrDuplicate
		}
		if p, _ := r.bySKU(t, product.SKU); p != nil {
			return domain.ErrDuplicate
		}
		t.putProduct(product)
		t.created[product.ID] = struct{}{}
		return nil
	})
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := autocommit(ctx, r.s, r.tx, func(t *tx) error {
		out = t.getProduct(id)
		return nil
	})
	return out, err
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := autocommit(ctx, r.s, r.tx, func(t *tx) error {
		out, _ = r.bySKU(t, sku)
		return nil
	})
	return out, err
}

func (r *productRepo) bySKU(t *tx, sku string) (*entity.Product, bool) {
	for _, p := range t.products {
		if p.SKU == sku {
			cp := *p
			return &cp, true
		}
	}
	r.s.mu.RLock()
	id, ok := r.s.skuIndex[sku]
	r.s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	p := t.getProduct(id)
	// el SKU pudo cambiar en la capa local
	if p == nil || p.SKU != sku {
		return nil, false
	}
	return p, true
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := autocommit(ctx, r.s, r.tx, func(t *tx) error {
		if err := t.lock(ctx, productLockKey(id)); err != nil {
			return err
		}
		out = t.getProduct(id)
		if out == nil {
			return domain.ErrNotFound
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Update(ctx context.Context, product *entity.Product) error {
	return autocommit(ctx, r.s, r.tx, func(t *tx) error {
		if err := t.lock(ctx, productLockKey(product.ID)); err != nil {
			return err
		}
		cur := t.getProduct(product.ID)
		if cur == nil {
			return domain.ErrNotFound
		}
		cur.Name = product.Name
		cur.Description = product.Description
		cur.PriceUSD = product.PriceUSD
		cur.UpdatedAt = product.UpdatedAt
		t.putProduct(cur)
		return nil
	})
}

func (r *productRepo) SetActive(ctx context.Context, id string, active bool) error {
	return autocommit(ctx, r.s, r.tx, func(t *tx) error {
		if err := t.lock(ctx, productLockKey(id)); err != nil {
			return err
		}
		cur := t.getProduct(id)
		if cur == nil {
			return domain.ErrNotFound
		}
		cur.IsActive = active
		t.putProduct(cur)
		return nil
	})
}

func (r *productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := autocommit(ctx, r.s, r.tx, func(t *tx) error {
		merged := make(map[string]*entity.Product)
		r.s.mu.RLock()
		for id, p := range r.s.products {
			cp := *p
			merged[id] = &cp
		}
		r.s.mu.RUnlock()
		for id, p := range t.products {
			cp := *p
			merged[id] = &cp
		}
		for _, p := range merged {
			if filter.Active != nil && p.IsActive != *filter.Active {
				continue
			}
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].ID < out[j].ID
		})
		out = paginate(out, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
