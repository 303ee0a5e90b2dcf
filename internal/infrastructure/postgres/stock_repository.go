package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `product_id, store_id, quantity, min_threshold, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	if err := row.Scan(&s.ProductID, &s.StoreID, &s.Quantity, &s.MinThreshold, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el stock de un producto en una tienda; (nil, nil) si no hay fila.
func (r *StockRepo) Get(ctx context.Context, productID, storeID string) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stock WHERE product_id = $1 AND store_id = $2`, productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate crea la fila en 0 si falta y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Stock, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, store_id, quantity, min_threshold, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (product_id, store_id) DO NOTHING`, productID, storeID); err != nil {
		return nil, mapError("crear fila de stock", err)
	}
	s, err := scanStock(r.q.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stock WHERE product_id = $1 AND store_id = $2 FOR UPDATE`, productID, storeID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Save persiste cantidad y mínimo (upsert por producto y tienda).
func (r *StockRepo) Save(ctx context.Context, s *entity.Stock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, store_id, quantity, min_threshold, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, min_threshold = EXCLUDED.min_threshold, updated_at = EXCLUDED.updated_at`,
		s.ProductID, s.StoreID, s.Quantity, s.MinThreshold, s.UpdatedAt)
	if err != nil {
		return mapError("guardar stock", err)
	}
	return nil
}

// Delete elimina la fila; domain.ErrNotFound si no existía.
func (r *StockRepo) Delete(ctx context.Context, productID, storeID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock WHERE product_id = $1 AND store_id = $2`, productID, storeID)
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var out []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByProduct filas del producto en todas las tiendas.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock WHERE product_id = $1 ORDER BY store_id`, productID)
}

// ListAll todas las filas de stock.
func (r *StockRepo) ListAll(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock ORDER BY product_id, store_id`)
}

// SumByProduct stock total del producto (0 si no tiene filas).
func (r *StockRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0)::int FROM stock WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum stock: %w", err)
	}
	return total, nil
}
