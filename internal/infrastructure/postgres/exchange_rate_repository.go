package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)

const rateColumns = `id, usd_to_bs, effective_date, created_by, created_at`

// ExchangeRateRepo historial de tasas sobre PostgreSQL. Solo inserción.
type ExchangeRateRepo struct {
	q Querier
}

// NewExchangeRateRepository construye el repositorio de tasas.
func NewExchangeRateRepository(q Querier) *ExchangeRateRepo {
	return &ExchangeRateRepo{q: q}
}

func scanRate(row pgx.Row) (*entity.ExchangeRate, error) {
	var e entity.ExchangeRate
	if err := row.Scan(&e.ID, &e.Rate, &e.EffectiveDate, &e.CreatedBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create agrega una tasa al historial.
func (r *ExchangeRateRepo) Create(ctx context.Context, e *entity.ExchangeRate) error {
	_, err := r.q.Exec(ctx, `INSERT INTO fx_rates (`+rateColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Rate, e.EffectiveDate, e.CreatedBy, e.CreatedAt)
	if err != nil {
		return mapError("insert fx rate", err)
	}
	return nil
}

// Latest tasa más reciente; (nil, nil) sin historial.
func (r *ExchangeRateRepo) Latest(ctx context.Context) (*entity.ExchangeRate, error) {
	e, err := scanRate(r.q.QueryRow(ctx,
		`SELECT `+rateColumns+` FROM fx_rates ORDER BY created_at DESC, id DESC LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest fx rate: %w", err)
	}
	return e, nil
}

// List últimas limit tasas, más recientes primero.
func (r *ExchangeRateRepo) List(ctx context.Context, limit int) ([]*entity.ExchangeRate, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+rateColumns+` FROM fx_rates ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list fx rates: %w", err)
	}
	defer rows.Close()
	var out []*entity.ExchangeRate
	for rows.Next() {
		e, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fx rate: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
