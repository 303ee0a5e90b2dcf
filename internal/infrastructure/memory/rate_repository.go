package memory

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ExchangeRateRepository = (*rateRepo)(nil)

type rateRepo struct {
	s *Store
}

func (r *rateRepo) Create(_ context.Context, rate *entity.ExchangeRate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rate
	r.s.rates = append(r.s.rates, &cp)
	return nil
}

// Latest el último insertado es el vigente (mismo criterio que ORDER BY created_at DESC).
func (r *rateRepo) Latest(_ context.Context) (*entity.ExchangeRate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if len(r.s.rates) == 0 {
		return nil, nil
	}
	cp := *r.s.rates[len(r.s.rates)-1]
	return &cp, nil
}

func (r *rateRepo) List(_ context.Context, limit int) ([]*entity.ExchangeRate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.ExchangeRate, 0, len(r.s.rates))
	for i := len(r.s.rates) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		cp := *r.s.rates[i]
		out = append(out, &cp)
	}
	return out, nil
}
