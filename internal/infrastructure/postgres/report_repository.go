package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el repositorio de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// ProductCounts total de productos y activos.
func (r *ReportRepo) ProductCounts(ctx context.Context) (repository.ProductCounts, error) {
	var c repository.ProductCounts
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*)::int, COUNT(*) FILTER (WHERE is_active)::int FROM products`).Scan(&c.Total, &c.Active)
	if err != nil {
		return c, fmt.Errorf("product counts: %w", err)
	}
	return c, nil
}

// StockByStore stock total por código de tienda (tiendas sin stock aparecen con 0).
func (r *ReportRepo) StockByStore(ctx context.Context) ([]repository.StoreStockTotal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT s.code, COALESCE(SUM(st.quantity), 0)::int
		FROM stores s
		LEFT JOIN stock st ON st.store_id = s.id
		GROUP BY s.code
		ORDER BY s.code`)
	if err != nil {
		return nil, fmt.Errorf("stock by store: %w", err)
	}
	defer rows.Close()
	var out []repository.StoreStockTotal
	for rows.Next() {
		var t repository.StoreStockTotal
		if err := rows.Scan(&t.StoreCode, &t.Total); err != nil {
			return nil, fmt.Errorf("scan stock by store: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SalesSince cantidad y total en Bs de las ventas desde since.
func (r *ReportRepo) SalesSince(ctx context.Context, since time.Time) (repository.SalesSummary, error) {
	var s repository.SalesSummary
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*)::int, COALESCE(SUM(total), 0) FROM sales WHERE created_at >= $1`, since).
		Scan(&s.Count, &s.TotalLocal)
	if err != nil {
		return s, fmt.Errorf("sales since: %w", err)
	}
	return s, nil
}

// TopSellers unidades y líneas por producto en [start, end).
func (r *ReportRepo) TopSellers(ctx context.Context, start, end time.Time, limit int) ([]repository.TopSellerRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.sku, p.name,
		       COALESCE(SUM(si.quantity), 0)::int AS total_units,
		       COUNT(si.id)::int AS total_lines
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY p.id, p.sku, p.name
		ORDER BY total_units DESC, total_lines DESC, p.name
		LIMIT $3`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	defer rows.Close()
	var out []repository.TopSellerRow
	for rows.Next() {
		var t repository.TopSellerRow
		if err := rows.Scan(&t.ProductID, &t.SKU, &t.Name, &t.TotalUnits, &t.TotalLines); err != nil {
			return nil, fmt.Errorf("scan top seller: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
