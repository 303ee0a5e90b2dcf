package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

func seedProduct(t *testing.T, s *Store, id, sku string) {
	t.Helper()
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: id, SKU: sku, Name: "Producto " + sku, PriceUSD: decimal.NewFromInt(10),
	}))
}

func TestRun_RollbackNoDejaRastro(t *testing.T) {
	s := New()
	seedProduct(t, s, "p1", "SKU-1")
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(stocks repository.StockRepository, products repository.ProductRepository) error {
		st, err := stocks.GetForUpdate(ctx, "p1", "s1")
		require.NoError(t, err)
		st.Quantity = 50
		require.NoError(t, stocks.Save(ctx, st))
		require.NoError(t, products.SetActive(ctx, "p1", true))
		return boom
	})
	require.ErrorIs(t, err, boom)

	st, err := s.Stocks().Get(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Nil(t, st)
	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, p.IsActive)
}

func TestRun_CommitVisibleDespues(t *testing.T) {
	s := New()
	seedProduct(t, s, "p1", "SKU-1")
	ctx := context.Background()

	err := s.Run(ctx, func(stocks repository.StockRepository, _ repository.ProductRepository) error {
		st, err := stocks.GetForUpdate(ctx, "p1", "s1")
		if err != nil {
			return err
		}
		st.Quantity = 7
		if err := stocks.Save(ctx, st); err != nil {
			return err
		}
		// la propia tx ve su escritura
		total, err := stocks.SumByProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		return nil
	})
	require.NoError(t, err)

	total, err := s.Stocks().SumByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}

func TestGetForUpdate_BloqueaHastaCommit(t *testing.T) {
	s := New()
	ctx := context.Background()
	locked := make(chan struct{})
	releaseFirst := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		firstDone <- s.Run(ctx, func(stocks repository.StockRepository, _ repository.ProductRepository) error {
			if _, err := stocks.GetForUpdate(ctx, "p1", "s1"); err != nil {
				return err
			}
			close(locked)
			<-releaseFirst
			return nil
		})
	}()
	<-locked

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := s.Run(waitCtx, func(stocks repository.StockRepository, _ repository.ProductRepository) error {
		_, err := stocks.GetForUpdate(waitCtx, "p1", "s1")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(releaseFirst)
	require.NoError(t, <-firstDone)

	err = s.Run(ctx, func(stocks repository.StockRepository, _ repository.ProductRepository) error {
		_, err := stocks.GetForUpdate(ctx, "p1", "s1")
		return err
	})
	assert.NoError(t, err)
}

func TestGetForUpdate_Reentrante(t *testing.T) {
	s := New()
	seedProduct(t, s, "p1", "SKU-1")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := s.Run(ctx, func(stocks repository.StockRepository, products repository.ProductRepository) error {
		if _, err := stocks.GetForUpdate(ctx, "p1", "s1"); err != nil {
			return err
		}
		if _, err := stocks.GetForUpdate(ctx, "p1", "s1"); err != nil {
			return err
		}
		if _, err := products.GetForUpdate(ctx, "p1"); err != nil {
			return err
		}
		return products.SetActive(ctx, "p1", true)
	})
	assert.NoError(t, err)
}

func TestProducts_SKUDuplicado(t *testing.T) {
	s := New()
	seedProduct(t, s, "p1", "SKU-1")
	err := s.Products().Create(context.Background(), &entity.Product{ID: "p2", SKU: "SKU-1", Name: "otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStocks_DeleteInexistente(t *testing.T) {
	s := New()
	err := s.Stocks().Delete(context.Background(), "p1", "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSales_RechazaTotalesInconsistentes(t *testing.T) {
	s := New()
	err := s.Sales().Create(context.Background(), &entity.Sale{
		ID:            "v1",
		SubtotalLocal: decimal.RequireFromString("10.00"),
		VATLocal:      decimal.RequireFromString("1.60"),
		TotalLocal:    decimal.RequireFromString("11.59"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReports_TopSellersOrden(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, "p1", "A")
	seedProduct(t, s, "p2", "B")
	now := time.Now().UTC()

	err := s.RunSale(ctx, func(_ repository.StockRepository, _ repository.ProductRepository, sales repository.SaleRepository) error {
		sale := &entity.Sale{ID: "v1", CreatedAt: now, SubtotalLocal: decimal.Zero, VATLocal: decimal.Zero, TotalLocal: decimal.Zero}
		if err := sales.Create(ctx, sale); err != nil {
			return err
		}
		for _, l := range []entity.SaleLine{
			{ID: "l1", SaleID: "v1", ProductID: "p1", Quantity: 2},
			{ID: "l2", SaleID: "v1", ProductID: "p2", Quantity: 5},
		} {
			if err := sales.CreateLine(ctx, &l); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	rows, err := s.Reports().TopSellers(ctx, now.Add(-time.Hour), now.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p2", rows[0].ProductID)
	assert.Equal(t, 5, rows[0].TotalUnits)
	assert.Equal(t, "B", rows[0].SKU)

	lines, err := s.Sales().GetLines(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Producto A", lines[0].ProductName)
}

func TestStockSave_RechazaNegativoSinInventarCantidades(t *testing.T) {
	s := New()
	seedProduct(t, s, "p1", "SKU-1")
	ctx := context.Background()

	err := s.Stocks().Save(ctx, &entity.Stock{ProductID: "p1", StoreID: "s1", Quantity: -3})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var se *domain.StockError
	assert.False(t, errors.As(err, &se))

	st, err := s.Stocks().Get(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Nil(t, st)
}
