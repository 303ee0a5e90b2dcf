package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*storeRepo)(nil)

type storeRepo struct {
	s *Store
}

func (r *storeRepo) Create(_ context.Context, store *entity.Store) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stores[store.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.s.codeIndex[store.Code]; ok {
		return domain.ErrDuplicate
	}
	cp := *store
	r.s.stores[store.ID] = &cp
	r.s.codeIndex[store.Code] = store.ID
	return nil
}

func (r *storeRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if st, ok := r.s.stores[id]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

func (r *storeRepo) GetByCode(ctx context.Context, code string) (*entity.Store, error) {
	r.s.mu.RLock()
	id, ok := r.s.codeIndex[code]
	r.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *storeRepo) List(_ context.Context, limit, offset int) ([]*entity.Store, error) {
	r.s.mu.RLock()
	out := make([]*entity.Store, 0, len(r.s.stores))
	for _, st := range r.s.stores {
		cp := *st
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, limit, offset), nil
}
