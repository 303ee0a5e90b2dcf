// Package redis caché de la tasa vigente sobre Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/fx"
	"github.com/jhoicas/tienda-api/pkg/config"
)

// RateKey clave de la tasa vigente.
const RateKey = "fx:current"

var _ fx.RateCache = (*RateCache)(nil)

// RateCache guarda la tasa vigente como texto decimal con TTL.
type RateCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRateCache crea el cliente. ttl <= 0 usa 60 segundos.
func NewRateCache(cfg config.RedisConfig, ttl time.Duration) *RateCache {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRateCacheFromClient(client, ttl)
}

// NewRateCacheFromClient usa un cliente ya construido.
func NewRateCacheFromClient(client *goredis.Client, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RateCache{client: client, ttl: ttl}
}

// Ping verifica la conexión.
func (c *RateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RateCache) Close() error {
	return c.client.Close()
}

// Get devuelve (tasa, true, nil) si hay valor; (0, false, nil) si la clave no existe.
func (c *RateCache) Get(ctx context.Context) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, RateKey).Result()
	if errors.Is(err, goredis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("valor en caché inválido %q: %w", val, err)
	}
	return rate, true, nil
}

// Set guarda la tasa con el TTL configurado.
func (c *RateCache) Set(ctx context.Context, rate decimal.Decimal) error {
	return c.client.Set(ctx, RateKey, rate.String(), c.ttl).Err()
}

// Delete invalida la tasa en caché.
func (c *RateCache) Delete(ctx context.Context) error {
	return c.client.Del(ctx, RateKey).Err()
}
