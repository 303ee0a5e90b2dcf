package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ProductFilter filtros de listado. Limit <= 0 = sin límite.
type ProductFilter struct {
	Active *bool
	Limit  int
	Offset int
}

// ProductRepository define el puerto de persistencia para Product.
// GetByID / GetBySKU devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
	// Devuelve domain.ErrNotFound si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update modifica nombre, descripción y precio. No toca IsActive.
	Update(ctx context.Context, product *entity.Product) error
	// SetActive persiste el flag derivado; solo lo usa el recálculo de stock.
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
}
