package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// SaleFilter filtros de listado de ventas.
type SaleFilter struct {
	StoreID string
	Limit   int
	Offset  int
}

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
// No hay Update: una venta creada es inmutable.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLine(ctx context.Context, line *entity.SaleLine) error
	// GetByID devuelve (nil, nil) si no existe. No carga las líneas.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetLines devuelve las líneas con SKU y nombre del producto.
	GetLines(ctx context.Context, saleID string) ([]entity.SaleLine, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
}
