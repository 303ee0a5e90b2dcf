// Package fx provee la tasa de cambio vigente (Bs por USD) y su historial.
package fx

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/events"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/pricing"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// RateCache caché compartida de la tasa vigente (ej. Redis).
type RateCache interface {
	Get(ctx context.Context) (decimal.Decimal, bool, error)
	Set(ctx context.Context, rate decimal.Decimal) error
	Delete(ctx context.Context) error
}

// NoopRateCache caché deshabilitada.
type NoopRateCache struct{}

func (NoopRateCache) Get(context.Context) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}
func (NoopRateCache) Set(context.Context, decimal.Decimal) error { return nil }
func (NoopRateCache) Delete(context.Context) error               { return nil }

// ParseConfiguredRate interpreta la tasa configurada (FX_USD_TO_BS).
// Vacío, no numérico o <= 0 devuelve 1.
func ParseConfiguredRate(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.NewFromInt(1)
	}
	d = pricing.RoundRate(d)
	if !d.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return d
}

// Provider tasa vigente: historial más reciente > tasa configurada > 1.
// CurrentRate nunca falla; los errores de caché o BD se registran y se degradan.
type Provider struct {
	repo       repository.ExchangeRateRepository
	cache      RateCache
	publisher  events.Publisher
	configured decimal.Decimal
	log        zerolog.Logger
	now        func() time.Time

	mu   sync.RWMutex
	last *decimal.Decimal // última tasa de historial conocida
}

// NewProvider construye el proveedor. configured es el valor crudo de configuración.
func NewProvider(repo repository.ExchangeRateRepository, cache RateCache, configured string, log zerolog.Logger) *Provider {
	if cache == nil {
		cache = NoopRateCache{}
	}
	return &Provider{
		repo:       repo,
		cache:      cache,
		publisher:  events.NoopPublisher{},
		configured: ParseConfiguredRate(configured),
		log:        log,
		now:        time.Now,
	}
}

// WithPublisher publica fx.changed al registrar una tasa.
func (p *Provider) WithPublisher(pub events.Publisher) *Provider {
	if pub != nil {
		p.publisher = pub
	}
	return p
}

// Load lee la tasa más reciente del historial y precarga la caché. Se llama al arrancar.
func (p *Provider) Load(ctx context.Context) error {
	latest, err := p.repo.Latest(ctx)
	if err != nil {
		return err
	}
	if latest == nil {
		p.log.Info().Str("rate", p.configured.String()).Msg("sin historial de tasas, usando tasa configurada")
		return nil
	}
	p.remember(latest.Rate)
	if err := p.cache.Set(ctx, latest.Rate); err != nil {
		p.log.Warn().Err(err).Msg("fx: no se pudo precargar la caché")
	}
	p.log.Info().Str("rate", latest.Rate.String()).Msg("tasa vigente cargada")
	return nil
}

// Refresh descarta la caché y recarga desde el historial.
func (p *Provider) Refresh(ctx context.Context) error {
	if err := p.cache.Delete(ctx); err != nil {
		p.log.Warn().Err(err).Msg("fx: no se pudo invalidar la caché")
	}
	return p.Load(ctx)
}

// CurrentRate devuelve la tasa vigente (> 0).
func (p *Provider) CurrentRate(ctx context.Context) decimal.Decimal {
	if rate, ok, err := p.cache.Get(ctx); err != nil {
		p.log.Warn().Err(err).Msg("fx: error leyendo caché")
	} else if ok && rate.IsPositive() {
		return rate
	}

	latest, err := p.repo.Latest(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("fx: error leyendo historial, usando última tasa conocida")
		return p.fallback()
	}
	if latest == nil || !latest.Rate.IsPositive() {
		return p.configured
	}
	p.remember(latest.Rate)
	if err := p.cache.Set(ctx, latest.Rate); err != nil {
		p.log.Warn().Err(err).Msg("fx: error escribiendo caché")
	}
	return latest.Rate
}

// RecordRate agrega una tasa al historial con fecha de hoy.
// Devuelve domain.ErrInvalidRate si value <= 0 (tras redondear a 4 decimales).
func (p *Provider) RecordRate(ctx context.Context, value decimal.Decimal, actor string) (*entity.ExchangeRate, error) {
	value = pricing.RoundRate(value)
	if !value.IsPositive() {
		return nil, domain.ErrInvalidRate
	}
	now := p.now().UTC()
	rate := &entity.ExchangeRate{
		ID:            uuid.New().String(),
		Rate:          value,
		EffectiveDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		CreatedBy:     actor,
		CreatedAt:     now,
	}
	if err := p.repo.Create(ctx, rate); err != nil {
		return nil, err
	}
	p.remember(value)
	if err := p.cache.Set(ctx, value); err != nil {
		p.log.Warn().Err(err).Msg("fx: error actualizando caché")
	}
	p.log.Info().Str("rate", value.String()).Str("by", actor).Msg("tasa registrada")
	p.publisher.Publish(events.New(events.TypeRateChanged, events.RateChanged{
		Rate:          value.StringFixed(pricing.RateScale),
		EffectiveDate: rate.EffectiveDate.Format("2006-01-02"),
	}))
	return rate, nil
}

// History devuelve las últimas limit tasas (más recientes primero).
func (p *Provider) History(ctx context.Context, limit int) ([]dto.ExchangeRateResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	list, err := p.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExchangeRateResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRateResponse(r))
	}
	return out, nil
}

// Current tasa vigente para mostrar.
func (p *Provider) Current(ctx context.Context) dto.CurrentRateResponse {
	rate := p.CurrentRate(ctx)
	return dto.CurrentRateResponse{
		Base:     entity.CurrencyUSD,
		Currency: entity.CurrencyVES,
		Rate:     pricing.RoundMoney(rate),
		RateRaw:  rate,
	}
}

func (p *Provider) remember(rate decimal.Decimal) {
	p.mu.Lock()
	p.last = &rate
	p.mu.Unlock()
}

func (p *Provider) fallback() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last != nil {
		return *p.last
	}
	return p.configured
}

func toRateResponse(r *entity.ExchangeRate) dto.ExchangeRateResponse {
	return dto.ExchangeRateResponse{
		ID:            r.ID,
		Rate:          r.Rate,
		EffectiveDate: r.EffectiveDate.Format("2006-01-02"),
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
	}
}
