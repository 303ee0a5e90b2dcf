package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ExchangeRateRepository historial de tasas (solo inserción).
type ExchangeRateRepository interface {
	Create(ctx context.Context, rate *entity.ExchangeRate) error
	// Latest devuelve (nil, nil) si no hay historial.
	Latest(ctx context.Context) (*entity.ExchangeRate, error)
	// List más recientes primero.
	List(ctx context.Context, limit int) ([]*entity.ExchangeRate, error)
}
