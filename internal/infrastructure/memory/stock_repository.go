package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.StockRepository = (*stockRepo)(nil)

type stockRepo struct {
	s  *Store
	tx *tx
}

func stockLockKey(productID, storeID string) string {
	return "stock:" + productID + "/" + storeID
}

func (r *stockRepo) Get(ctx context.Context, productID, storeID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := autocommit(ctx, r.s, r.tx, func(t *tx) error {
		out = t.getStock(stockKey{productID, storeID})
		return nil
	})
	return out, err
}

func (r *stockRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := autocommit(ctx, r.s, r.tx, func(t *tx) error {
		if err := t.lock(ctx, stockLockKey(productID, storeID)); err != nil {
			return err
		}
		k := stockKey{productID, storeID}
		st := t.getStock(k)
		if st == nil {
			st = &entity.Stock{ProductID: productID, StoreID: storeID}
			t.putStock(st)
		}
		out = st
		return nil
	})
	return out, err
}

func (r *stockRepo) Save(ctx context.Context, stock *entity.Stock) error {
	if stock.Quantity < 0 {
		return fmt.Errorf("stock %s/%s en %d: %w", stock.ProductID, stock.StoreID, stock.Quantity, domain.ErrInsufficientStock)
	}
	return autocommit(ctx, r.s, r.tx, func(t *tx) error {
		if err := t.lock(ctx, stockLockKey(stock.ProductID, stock.StoreID)); err != nil {
			return err
		}
		t.putStock(stock)
		return nil
	})
}

func (r *stockRepo) Delete(ctx context.Context, productID, storeID string) error {
	return autocommit(ctx, r.s, r.tx, func(t *tx) error {
		if err := t.lock(ctx, stockLockKey(productID, storeID)); err != nil {
			return err
		}
		k := stockKey{productID, storeID}
		if t.getStock(k) == nil {
			return domain.ErrNotFound
		}
		delete(t.stocks, k)
		t.deleted[k] = struct{}{}
		return nil
	})
}

func (r *stockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	err := autocommit(ctx, r.s, r.tx, func(t *tx) error {
		out = t.stocksWhere(func(k stockKey) bool { return k.productID == productID })
		return nil
	})
	return out, err
}

func (r *stockRepo) ListAll(ctx context.Context) ([]*entity.Stock, error) {
	var out []*entity.Stock
	err := autocommit(ctx, r.s, r.tx, func(t *tx) error {
		out = t.stocksWhere(func(stockKey) bool { return true })
		return nil
	})
	return out, err
}

func (r *stockRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	rows, err := r.ListByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, st := range rows {
		total += st.Quantity
	}
	return total, nil
}
