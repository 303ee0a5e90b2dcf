package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por (producto, tienda).
// Las escrituras se hacen dentro de una transacción (TxRunner).
type StockRepository interface {
	// Get devuelve (nil, nil) si la fila no existe.
	Get(ctx context.Context, productID, storeID string) (*entity.Stock, error)
	// GetForUpdate crea la fila con cantidad 0 si no existe y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Stock, error)
	Save(ctx context.Context, stock *entity.Stock) error
	// Delete devuelve domain.ErrNotFound si la fila no existe.
	Delete(ctx context.Context, productID, storeID string) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error)
	ListAll(ctx context.Context) ([]*entity.Stock, error)
	// SumByProduct stock total del producto en todas las tiendas.
	SumByProduct(ctx context.Context, productID string) (int, error)
}
