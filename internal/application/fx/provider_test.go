package fx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeRateRepo struct {
	mu    sync.Mutex
	rates []*entity.ExchangeRate
	err   error
}

func (r *fakeRateRepo) Create(_ context.Context, rate *entity.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rates = append(r.rates, rate)
	return nil
}

func (r *fakeRateRepo) Latest(context.Context) (*entity.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if len(r.rates) == 0 {
		return nil, nil
	}
	return r.rates[len(r.rates)-1], nil
}

func (r *fakeRateRepo) List(_ context.Context, limit int) ([]*entity.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.ExchangeRate{}
	for i := len(r.rates) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.rates[i])
	}
	return out, nil
}

type memCache struct {
	val    *decimal.Decimal
	getErr error
}

func (c *memCache) Get(context.Context) (decimal.Decimal, bool, error) {
	if c.getErr != nil {
		return decimal.Zero, false, c.getErr
	}
	if c.val == nil {
		return decimal.Zero, false, nil
	}
	return *c.val, true, nil
}
func (c *memCache) Set(_ context.Context, r decimal.Decimal) error { c.val = &r; return nil }
func (c *memCache) Delete(context.Context) error                 { c.val = nil; return nil }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── tests ─────────────────────────────────────────────────────────────────────

func TestParseConfiguredRate(t *testing.T) {
	tests := map[string]string{
		"":        "1",
		"abc":     "1",
		"0":       "1",
		"-3":      "1",
		" 36.5 ":  "36.5",
		"40.12345": "40.1235",
	}
	for raw, want := range tests {
		assert.True(t, d(want).Equal(ParseConfiguredRate(raw)), "raw=%q", raw)
	}
}

func TestCurrentRate_SinHistorialUsaConfigurada(t *testing.T) {
	p := NewProvider(&fakeRateRepo{}, nil, "36.5", zerolog.Nop())
	assert.True(t, d("36.5").Equal(p.CurrentRate(context.Background())))

	p = NewProvider(&fakeRateRepo{}, nil, "no-numérico", zerolog.Nop())
	assert.True(t, d("1").Equal(p.CurrentRate(context.Background())))
}

func TestCurrentRate_HistorialTienePrioridad(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRateRepo{}
	p := NewProvider(repo, nil, "36.5", zerolog.Nop())

	_, err := p.RecordRate(ctx, d("40"), "admin")
	require.NoError(t, err)
	assert.True(t, d("40").Equal(p.CurrentRate(ctx)))

	_, err = p.RecordRate(ctx, d("45"), "admin")
	require.NoError(t, err)
	assert.True(t, d("45").Equal(p.CurrentRate(ctx)))
}

func TestRecordRate_RechazaNoPositiva(t *testing.T) {
	repo := &fakeRateRepo{}
	p := NewProvider(repo, nil, "", zerolog.Nop())

	for _, v := range []string{"0", "-1", "0.00001"} {
		_, err := p.RecordRate(context.Background(), d(v), "admin")
		assert.ErrorIs(t, err, domain.ErrInvalidRate, "valor %s", v)
	}
	assert.Empty(t, repo.rates, "una tasa inválida no debe modificar el historial")
}

func TestRecordRate_RedondeaYFechaDeHoy(t *testing.T) {
	repo := &fakeRateRepo{}
	p := NewProvider(repo, nil, "", zerolog.Nop())
	p.now = func() time.Time { return time.Date(2026, 3, 14, 17, 30, 0, 0, time.UTC) }

	r, err := p.RecordRate(context.Background(), d("36.123456"), "ana")
	require.NoError(t, err)
	assert.True(t, d("36.1235").Equal(r.Rate))
	assert.Equal(t, "2026-03-14", r.EffectiveDate.Format("2006-01-02"))
	assert.Equal(t, "ana", r.CreatedBy)
}

func TestCurrentRate_UsaCacheYLaActualizaAlRegistrar(t *testing.T) {
	ctx := context.Background()
	cache := &memCache{}
	repo := &fakeRateRepo{}
	p := NewProvider(repo, cache, "", zerolog.Nop())

	_, err := p.RecordRate(ctx, d("50"), "admin")
	require.NoError(t, err)
	require.NotNil(t, cache.val)
	assert.True(t, d("50").Equal(*cache.val))

	// la caché gana sobre el repositorio mientras esté vigente
	repo.rates = nil
	assert.True(t, d("50").Equal(p.CurrentRate(ctx)))

	require.NoError(t, p.Refresh(ctx))
	assert.Nil(t, cache.val)
	assert.True(t, d("1").Equal(p.CurrentRate(ctx)))
}

func TestCurrentRate_NuncaFalla(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRateRepo{}
	cache := &memCache{getErr: errors.New("redis caído")}
	p := NewProvider(repo, cache, "30", zerolog.Nop())

	require.NoError(t, repo.Create(ctx, &entity.ExchangeRate{Rate: d("42")}))
	assert.True(t, d("42").Equal(p.CurrentRate(ctx)), "error de caché se ignora")

	repo.err = errors.New("bd caída")
	assert.True(t, d("42").Equal(p.CurrentRate(ctx)), "error de BD usa la última tasa conocida")

	fresh := NewProvider(repo, nil, "30", zerolog.Nop())
	assert.True(t, d("30").Equal(fresh.CurrentRate(ctx)), "sin tasa conocida usa la configurada")
}

func TestHistory_MasRecientePrimero(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(&fakeRateRepo{}, nil, "", zerolog.Nop())
	for _, v := range []string{"40", "41", "42"} {
		_, err := p.RecordRate(ctx, d(v), "admin")
		require.NoError(t, err)
	}
	h, err := p.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.True(t, d("42").Equal(h[0].Rate))
	assert.True(t, d("41").Equal(h[1].Rate))
}
