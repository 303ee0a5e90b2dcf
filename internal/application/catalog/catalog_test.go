package catalog_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
)

func setup(t *testing.T) (*memory.Store, *catalog.StoreUseCase, *catalog.ProductUseCase) {
	t.Helper()
	db := memory.New()
	stores := catalog.NewStoreUseCase(db.Stores())
	products := catalog.NewProductUseCase(db, inventory.NewLedger(), db.Products(), db.Stores(), db.Stocks(), nil, zerolog.Nop())
	return db, stores, products
}

func TestStore_CreateCodigoUnico(t *testing.T) {
	_, stores, _ := setup(t)
	ctx := context.Background()

	s, err := stores.Create(ctx, dto.CreateStoreRequest{Code: " ccs-01 ", Name: "Caracas"})
	require.NoError(t, err)
	assert.Equal(t, "CCS-01", s.Code)
	assert.True(t, s.IsActive)

	_, err = stores.Create(ctx, dto.CreateStoreRequest{Code: "CCS-01", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := stores.GetByCode(ctx, "ccs-01")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = stores.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_CreateConStockInicial(t *testing.T) {
	_, stores, products := setup(t)
	ctx := context.Background()
	s1, err := stores.Create(ctx, dto.CreateStoreRequest{Code: "S1", Name: "Uno"})
	require.NoError(t, err)
	s2, err := stores.Create(ctx, dto.CreateStoreRequest{Code: "S2", Name: "Dos"})
	require.NoError(t, err)

	p, err := products.Create(ctx, dto.CreateProductRequest{
		SKU: "cam-001", Name: "Camisa", PriceUSD: decimal.RequireFromString("12.345"),
		InitialStocks: []dto.InitialStockRequest{
			{StoreID: s1.ID, Quantity: 4, MinThreshold: 2},
			{StoreID: s2.ID, Quantity: 0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "CAM-001", p.SKU)
	assert.Equal(t, "12.35", p.PriceUSD.StringFixed(2))
	assert.True(t, p.IsActive)
	require.NotNil(t, p.TotalStock)
	assert.Equal(t, 4, *p.TotalStock)
	assert.Len(t, p.Stocks, 2)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Stocks, 2)
	assert.True(t, got.IsActive)
}

func TestProduct_CreateSinStockQuedaInactivo(t *testing.T) {
	_, _, products := setup(t)
	p, err := products.Create(context.Background(), dto.CreateProductRequest{SKU: "X", Name: "X"})
	require.NoError(t, err)
	assert.False(t, p.IsActive)
}

func TestProduct_CreateTiendaInexistenteNoCreaNada(t *testing.T) {
	db, _, products := setup(t)
	ctx := context.Background()
	_, err := products.Create(ctx, dto.CreateProductRequest{
		SKU: "X", Name: "X",
		InitialStocks: []dto.InitialStockRequest{{StoreID: "nope", Quantity: 1}},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "initial_stocks[0].store_id", ve.Field)

	p, err := db.Products().GetBySKU(ctx, "X")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProduct_UpdateNoTocaActivo(t *testing.T) {
	_, stores, products := setup(t)
	ctx := context.Background()
	s1, err := stores.Create(ctx, dto.CreateStoreRequest{Code: "S1", Name: "Uno"})
	require.NoError(t, err)
	p, err := products.Create(ctx, dto.CreateProductRequest{
		SKU: "A", Name: "A", PriceUSD: decimal.NewFromInt(1),
		InitialStocks: []dto.InitialStockRequest{{StoreID: s1.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	price := decimal.RequireFromString("3.5")
	name := "Nuevo"
	up, err := products.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name, PriceUSD: &price})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", up.Name)
	assert.Equal(t, "3.50", up.PriceUSD.StringFixed(2))
	assert.True(t, up.IsActive)

	neg := decimal.NewFromInt(-1)
	_, err = products.Update(ctx, p.ID, dto.UpdateProductRequest{PriceUSD: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = products.Update(ctx, "nope", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_ListFiltraActivos(t *testing.T) {
	_, stores, products := setup(t)
	ctx := context.Background()
	s1, err := stores.Create(ctx, dto.CreateStoreRequest{Code: "S1", Name: "Uno"})
	require.NoError(t, err)
	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A",
		InitialStocks: []dto.InitialStockRequest{{StoreID: s1.ID, Quantity: 3}}})
	require.NoError(t, err)
	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "B", Name: "B"})
	require.NoError(t, err)

	active := true
	list, err := products.List(ctx, &active, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "A", list.Items[0].SKU)
	assert.Equal(t, 3, *list.Items[0].TotalStock)

	all, err := products.List(ctx, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "a", Name: "Dup"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
