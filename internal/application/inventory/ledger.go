package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Ledger libro de stock. Aplica ajustes sobre la fila (producto, tienda) bloqueada
// con GetForUpdate; el bloqueo dura hasta el fin de la transacción del llamador.
// Todo llamador que modifique o borre stock debe invocar SyncActive después.
type Ledger struct {
	now func() time.Time
}

// NewLedger construye el libro de stock.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// Adjust suma delta (con signo) a la fila. Si no existe se crea en 0.
// Devuelve *domain.StockError (ErrInsufficientStock) si el resultado fuera negativo;
// en ese caso la fila no se modifica y el llamador debe abortar la transacción.
func (l *Ledger) Adjust(ctx context.Context, stockRepo repository.StockRepository, productID, storeID string, delta int) (*entity.Stock, error) {
	stock, err := stockRepo.GetForUpdate(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	next := stock.Quantity + delta
	if next < 0 {
		return nil, &domain.StockError{
			ProductID: productID,
			StoreID:   storeID,
			Available: stock.Quantity,
			Requested: -delta,
		}
	}
	stock.Quantity = next
	stock.UpdatedAt = l.now()
	if err := stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// Set fija la cantidad absoluta (y opcionalmente el mínimo) bajo el mismo bloqueo.
func (l *Ledger) Set(ctx context.Context, stockRepo repository.StockRepository, productID, storeID string, quantity int, minThreshold *int) (*entity.Stock, error) {
	if quantity < 0 {
		return nil, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	if minThreshold != nil && *minThreshold < 0 {
		return nil, domain.NewValidationError("min_threshold", "no puede ser negativo")
	}
	stock, err := stockRepo.GetForUpdate(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	stock.Quantity = quantity
	if minThreshold != nil {
		stock.MinThreshold = *minThreshold
	}
	stock.UpdatedAt = l.now()
	if err := stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// SyncActive recalcula Product.IsActive = stock total > 0 y lo persiste si cambió.
// Bloquea la fila del producto para que dos transacciones sobre tiendas distintas
// no calculen la suma con datos viejos.
func (l *Ledger) SyncActive(ctx context.Context, stockRepo repository.StockRepository, productRepo repository.ProductRepository, productID string) (bool, error) {
	product, err := productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return false, err
	}
	total, err := stockRepo.SumByProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	active := total > 0
	if product.IsActive != active {
		if err := productRepo.SetActive(ctx, productID, active); err != nil {
			return false, err
		}
	}
	return active, nil
}
