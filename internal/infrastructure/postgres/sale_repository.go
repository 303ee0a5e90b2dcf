package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, store_id, created_by, created_at,
	customer_name, customer_address, customer_id_doc, customer_phone,
	payment_method, payment_reference, pay_currency, notes,
	vat_rate, subtotal, vat_amount, total, total_usd, fx_rate_used`

// SaleRepo implementación de SaleRepository (usable con pool o tx). Sin UPDATE: las ventas son inmutables.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s      entity.Sale
		method string
	)
	err := row.Scan(&s.ID, &s.StoreID, &s.CreatedBy, &s.CreatedAt,
		&s.Customer.Name, &s.Customer.Address, &s.Customer.IDDoc, &s.Customer.Phone,
		&method, &s.PaymentReference, &s.PayCurrency, &s.Notes,
		&s.VATRate, &s.SubtotalLocal, &s.VATLocal, &s.TotalLocal, &s.TotalUSD, &s.FXRateUsed)
	if err != nil {
		return nil, err
	}
	s.PaymentMethod = entity.PaymentMethod(method)
	return &s, nil
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		s.ID, s.StoreID, s.CreatedBy, s.CreatedAt,
		s.Customer.Name, s.Customer.Address, s.Customer.IDDoc, s.Customer.Phone,
		string(s.PaymentMethod), s.PaymentReference, s.PayCurrency, s.Notes,
		s.VATRate, s.SubtotalLocal, s.VATLocal, s.TotalLocal, s.TotalUSD, s.FXRateUsed)
	if err != nil {
		return mapError("insert sale", err)
	}
	return nil
}

// CreateLine persiste una línea con precios congelados.
func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price_usd, unit_price_bs)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.SaleID, l.ProductID, l.Quantity, l.UnitPriceUSD, l.UnitPriceLocal)
	if err != nil {
		return mapError("insert sale item", err)
	}
	return nil
}

// GetByID cabecera de la venta; (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetLines líneas de la venta con SKU y nombre actuales del producto.
func (r *SaleRepo) GetLines(ctx context.Context, saleID string) ([]entity.SaleLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT si.id, si.sale_id, si.product_id, p.sku, p.name, si.quantity, si.unit_price_usd, si.unit_price_bs
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1
		ORDER BY p.name, si.id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	var out []entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.ProductSKU, &l.ProductName,
			&l.Quantity, &l.UnitPriceUSD, &l.UnitPriceLocal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// List ventas más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE ($1 = '' OR store_id::text = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, f.StoreID, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var out []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
