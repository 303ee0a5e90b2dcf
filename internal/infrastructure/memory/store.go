// Package memory implementa los repositorios en memoria con transacciones.
//
// Semántica equivalente a PostgreSQL con SELECT ... FOR UPDATE: cada transacción
// toma bloqueos exclusivos por clave (fila de stock o producto) que mantiene hasta
// Commit/Rollback, escribe en una capa local y la vuelca al confirmar. Lo que una
// transacción abortada escribió nunca es visible para otras.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

type stockKey struct {
	productID string
	storeID   string
}

// Store base de datos en memoria. Segura para uso concurrente.
type Store struct {
	mu        sync.RWMutex
	products  map[string]*entity.Product
	skuIndex  map[string]string
	stores    map[string]*entity.Store
	codeIndex map[string]string
	stocks    map[stockKey]*entity.Stock
	rates     []*entity.ExchangeRate
	sales     map[string]*entity.Sale
	saleIDs   []string
	lines     map[string][]entity.SaleLine

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// New crea una base vacía.
func New() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		skuIndex:  make(map[string]string),
		stores:    make(map[string]*entity.Store),
		codeIndex: make(map[string]string),
		stocks:    make(map[stockKey]*entity.Stock),
		sales:     make(map[string]*entity.Sale),
		lines:     make(map[string][]entity.SaleLine),
		locks:     make(map[string]chan struct{}),
	}
}

// Repositorios fuera de transacción (cada operación confirma sola).

func (s *Store) Products() repository.ProductRepository   { return &productRepo{s: s} }
func (s *Store) Stocks() repository.StockRepository       { return &stockRepo{s: s} }
func (s *Store) Stores() repository.StoreRepository       { return &storeRepo{s: s} }
func (s *Store) Rates() repository.ExchangeRateRepository { return &rateRepo{s: s} }
func (s *Store) Sales() repository.SaleRepository         { return &saleRepo{s: s} }
func (s *Store) Reports() repository.ReportRepository     { return &reportRepo{s: s} }

// Run ejecuta fn en una transacción con repos de stock y productos.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.inTx(ctx, func(t *tx) error {
		return fn(&stockRepo{s: s, tx: t}, &productRepo{s: s, tx: t})
	})
}

// RunSale ejecuta fn en una transacción con repos de stock, productos y ventas.
func (s *Store) RunSale(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.inTx(ctx, func(t *tx) error {
		return fn(&stockRepo{s: s, tx: t}, &productRepo{s: s, tx: t}, &saleRepo{s: s, tx: t})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(t *tx) error) (err error) {
	t := newTx(s)
	defer func() {
		if !t.done {
			t.rollback()
		}
	}()
	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}

// lockChan devuelve el semáforo (capacidad 1) de una clave.
func (s *Store) lockChan(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// tx estado de una transacción: bloqueos tomados y escrituras pendientes.
type tx struct {
	s    *Store
	done bool
	held map[string]chan struct{}

	stocks   map[stockKey]*entity.Stock
	deleted  map[stockKey]struct{}
	products map[string]*entity.Product
	created  map[string]struct{} // productos nuevos en esta tx
	sales    []*entity.Sale
	lines    []entity.SaleLine
}

func newTx(s *Store) *tx {
	return &tx{
		s:        s,
		held:     make(map[string]chan struct{}),
		stocks:   make(map[stockKey]*entity.Stock),
		deleted:  make(map[stockKey]struct{}),
		products: make(map[string]*entity.Product),
		created:  make(map[string]struct{}),
	}
}

// lock adquiere el bloqueo exclusivo de key. Reentrante dentro de la misma tx.
func (t *tx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	ch := t.s.lockChan(key)
	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *tx) release() {
	for key, ch := range t.held {
		<-ch
		delete(t.held, key)
	}
}

func (t *tx) rollback() {
	t.done = true
	t.release()
}

func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	// SKU único: se revalida al confirmar por si otra tx lo tomó mientras tanto.
	for id := range t.created {
		p := t.products[id]
		if other, ok := s.skuIndex[p.SKU]; ok && other != id {
			s.mu.Unlock()
			t.rollback()
			return domain.ErrDuplicate
		}
	}
	for id, p := range t.products {
		cp := *p
		s.products[id] = &cp
		s.skuIndex[cp.SKU] = id
	}
	for k := range t.deleted {
		delete(s.stocks, k)
	}
	for k, st := range t.stocks {
		cp := *st
		s.stocks[k] = &cp
	}
	for _, sale := range t.sales {
		cp := *sale
		cp.Lines = nil
		s.sales[cp.ID] = &cp
		s.saleIDs = append(s.saleIDs, cp.ID)
	}
	for _, l := range t.lines {
		s.lines[l.SaleID] = append(s.lines[l.SaleID], l)
	}
	s.mu.Unlock()

	t.done = true
	t.release()
	return nil
}

// ── lecturas con capa local ───────────────────────────────────────────────────

func (t *tx) getStock(k stockKey) *entity.Stock {
	if _, gone := t.deleted[k]; gone {
		return nil
	}
	if st, ok := t.stocks[k]; ok {
		cp := *st
		return &cp
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if st, ok := t.s.stocks[k]; ok {
		cp := *st
		return &cp
	}
	return nil
}

func (t *tx) putStock(st *entity.Stock) {
	k := stockKey{st.ProductID, st.StoreID}
	cp := *st
	t.stocks[k] = &cp
	delete(t.deleted, k)
}

// stocksWhere combina filas confirmadas y pendientes que cumplen match.
func (t *tx) stocksWhere(match func(k stockKey) bool) []*entity.Stock {
	merged := make(map[stockKey]*entity.Stock)
	t.s.mu.RLock()
	for k, st := range t.s.stocks {
		if match(k) {
			cp := *st
			merged[k] = &cp
		}
	}
	t.s.mu.RUnlock()
	for k := range t.deleted {
		delete(merged, k)
	}
	for k, st := range t.stocks {
		if match(k) {
			cp := *st
			merged[k] = &cp
		}
	}
	out := make([]*entity.Stock, 0, len(merged))
	for _, st := range merged {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].StoreID < out[j].StoreID
	})
	return out
}

func (t *tx) getProduct(id string) *entity.Product {
	if p, ok := t.products[id]; ok {
		cp := *p
		return &cp
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if p, ok := t.s.products[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

func (t *tx) putProduct(p *entity.Product) {
	cp := *p
	t.products[p.ID] = &cp
}

// autocommit ejecuta fn en su propia tx cuando el repo no está atado a una.
func autocommit(ctx context.Context, s *Store, bound *tx, fn func(t *tx) error) error {
	if bound != nil {
		return fn(bound)
	}
	return s.inTx(ctx, fn)
}
