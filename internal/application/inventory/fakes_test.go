package inventory_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventory-events/internal/application/inventory"
	"github.com/jhoicas/inventory-events/internal/domain"
	"github.com/jhoicas/inventory-events/internal/domain/entity"
	"github.com/jhoicas/inventory-events/internal/domain/event"
	"github.com/jhoicas/inventory-events/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: reproducen la semántica del adaptador PostgreSQL
// (upsert parcial, skip de SKUs desconocidos, rechazo de negativos) y la
// atomicidad de la unidad de trabajo (copy-on-begin, write-on-commit).
// ──────────────────────────────────────────────────────────────────────────────

// memStore estado compartido "durable" entre transacciones.
type memStore struct {
	products  map[string]entity.Product
	processed map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[string]entity.Product),
		processed: make(map[string]bool),
	}
}

func (s *memStore) seed(p entity.Product) { s.products[p.SKU] = p }

// memRepo implementación en memoria de InventoryRepository sobre un mapa
// (el del store o el working set de una transacción).
type memRepo struct {
	products map[string]entity.Product
	err      error // si se fija, toda operación falla con este error
}

var _ repository.InventoryRepository = (*memRepo)(nil)

func (r *memRepo) Create(_ context.Context, product *entity.Product) (*entity.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	existing, exists := r.products[product.SKU]
	if !exists {
		stored := entity.Product{SKU: product.SKU}
		if product.StockAvailable > 0 {
			stored.StockAvailable = product.StockAvailable
		}
		if product.StockReserved > 0 {
			stored.StockReserved = product.StockReserved
		}
		r.products[product.SKU] = stored
		return product, nil
	}
	// Conflicto: solo se actualizan los contadores con valor positivo.
	if product.StockAvailable > 0 {
		existing.StockAvailable = product.StockAvailable
	}
	if product.StockReserved > 0 {
		existing.StockReserved = product.StockReserved
	}
	r.products[product.SKU] = existing
	return product, nil
}

func (r *memRepo) FindBySKU(_ context.Context, sku string) (*entity.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[sku]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memRepo) FindAll(_ context.Context) ([]entity.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *memRepo) UpdateStockReserved(_ context.Context, sku string, value int) error {
	if r.err != nil {
		return r.err
	}
	p, ok := r.products[sku]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.StockReserved = value
	r.products[sku] = p
	return nil
}

func (r *memRepo) UpdateStockAvailable(_ context.Context, sku string, value int) error {
	if r.err != nil {
		return r.err
	}
	p, ok := r.products[sku]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.StockAvailable = value
	r.products[sku] = p
	return nil
}

func (r *memRepo) UpdateStock(_ context.Context, items []event.OrderItem) ([]entity.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	touched := make(map[string]entity.Product)
	for _, item := range items {
		p, ok := touched[item.SKU]
		if !ok {
			p, ok = r.products[item.SKU]
			if !ok {
				continue // SKU desconocido: se omite
			}
		}
		p.StockAvailable -= item.Quantity
		p.StockReserved += item.Quantity
		if p.StockAvailable < 0 {
			return nil, fmt.Errorf("%w: sku %s", domain.ErrInsufficientStock, item.SKU)
		}
		touched[item.SKU] = p
	}
	updated := make([]entity.Product, 0, len(touched))
	for sku, p := range touched {
		r.products[sku] = p
		updated = append(updated, p)
	}
	sort.Slice(updated, func(i, j int) bool { return updated[i].SKU < updated[j].SKU })
	return updated, nil
}

func (r *memRepo) IsStockAvailable(_ context.Context, items []event.OrderItem) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	for _, item := range items {
		p, ok := r.products[item.SKU]
		if !ok || p.StockAvailable < item.Quantity {
			return false, nil
		}
	}
	return true, nil
}

// memLedger libro de idempotencia en memoria atado a una transacción.
type memLedger struct {
	processed map[string]bool
	err       error
}

var _ repository.ProcessedOrderRepository = (*memLedger)(nil)

func (l *memLedger) MarkProcessed(_ context.Context, orderID string, _ time.Time) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.processed[orderID] {
		return false, nil
	}
	l.processed[orderID] = true
	return true, nil
}

// fakeUOW unidad de trabajo en memoria: Begin copia el store, los repos
// mutan la copia, Commit la vuelca al store y Rollback la descarta.
type fakeUOW struct {
	store *memStore

	workProducts  map[string]entity.Product
	workProcessed map[string]bool

	beginErr  error
	commitErr error
	repoErr   error

	active     bool
	used       bool
	committed  bool
	rolledBack bool
	disposes   int
}

var _ inventory.UnitOfWork = (*fakeUOW)(nil)

func (u *fakeUOW) Begin(context.Context) error {
	if u.used {
		return domain.ErrTransactionActive
	}
	if u.beginErr != nil {
		return u.beginErr
	}
	u.used = true
	u.active = true
	u.workProducts = make(map[string]entity.Product, len(u.store.products))
	for k, v := range u.store.products {
		u.workProducts[k] = v
	}
	u.workProcessed = make(map[string]bool, len(u.store.processed))
	for k, v := range u.store.processed {
		u.workProcessed[k] = v
	}
	return nil
}

func (u *fakeUOW) Commit(context.Context) error {
	if !u.active {
		return domain.ErrNoActiveTransaction
	}
	u.active = false
	if u.commitErr != nil {
		u.rolledBack = true
		return u.commitErr
	}
	u.store.products = u.workProducts
	u.store.processed = u.workProcessed
	u.committed = true
	return nil
}

func (u *fakeUOW) Rollback(context.Context) error {
	if !u.active {
		return nil
	}
	u.active = false
	u.rolledBack = true
	return nil
}

func (u *fakeUOW) Dispose(ctx context.Context) {
	if u.active {
		_ = u.Rollback(ctx)
	}
	u.disposes++
}

func (u *fakeUOW) Inventory() (repository.InventoryRepository, error) {
	if !u.active {
		return nil, domain.ErrNoActiveTransaction
	}
	return &memRepo{products: u.workProducts, err: u.repoErr}, nil
}

func (u *fakeUOW) ProcessedOrders() (repository.ProcessedOrderRepository, error) {
	if !u.active {
		return nil, domain.ErrNoActiveTransaction
	}
	return &memLedger{processed: u.workProcessed}, nil
}

// memFactory produce fakeUOWs sobre el mismo store y recuerda la última
// unidad entregada para inspeccionar su estado final.
type memFactory struct {
	store     *memStore
	beginErr  error
	commitErr error
	repoErr   error
	last      *fakeUOW
}

var _ inventory.UnitOfWorkFactory = (*memFactory)(nil)

func (f *memFactory) New() inventory.UnitOfWork {
	u := &fakeUOW{
		store:     f.store,
		beginErr:  f.beginErr,
		commitErr: f.commitErr,
		repoErr:   f.repoErr,
	}
	f.last = u
	return u
}
