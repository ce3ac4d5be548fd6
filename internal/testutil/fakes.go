// Package testutil provides in-memory repository fakes for tests. They mirror
// the pgx-backed implementations' contract, including pgx.ErrNoRows on misses.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/events"
	"github.com/stay-fcsd/ecommerce-api/internal/repository"
)

// UserRepo is an in-memory repository.UserRepository.
type UserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

// NewUserRepo creates the fake, pre-seeded with the given users.
func NewUserRepo(users ...*domain.User) *UserRepo {
	repo := &UserRepo{users: make(map[string]*domain.User)}
	for _, user := range users {
		copied := *user
		repo.users[user.Email] = &copied
	}
	return repo
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

func (r *UserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

// Delete removes a user so tests can simulate accounts that vanish after a
// token was issued.
func (r *UserRepo) Delete(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, email)
}

// ProductRepo is an in-memory repository.ProductRepository.
type ProductRepo struct {
	mu       sync.Mutex
	seq      int
	products map[string]*domain.Product
}

// NewProductRepo creates the fake.
func NewProductRepo() *ProductRepo {
	return &ProductRepo{products: make(map[string]*domain.Product)}
}

func (r *ProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	product.ID = fmt.Sprintf("product-%d", r.seq)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *ProductRepo) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product, ok := r.products[id]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		out = append(out, *product)
	}
	if offset >= len(out) {
		return []domain.Product{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// SetStock overwrites a product's stock so tests can simulate it changing
// underneath a carted item.
func (r *ProductRepo) SetStock(id string, stock int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product, ok := r.products[id]; ok {
		product.Stock = stock
	}
}

// CartRepo is an in-memory repository.CartRepository backed by a ProductRepo
// for line joins.
type CartRepo struct {
	mu       sync.Mutex
	seq      int
	items    map[string]*domain.CartItem
	products *ProductRepo
}

// NewCartRepo creates the fake.
func NewCartRepo(products *ProductRepo) *CartRepo {
	return &CartRepo{items: make(map[string]*domain.CartItem), products: products}
}

func (r *CartRepo) Upsert(_ context.Context, item *domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			existing.UpdatedAt = time.Now()
			*item = *existing
			return nil
		}
	}
	r.seq++
	item.ID = fmt.Sprintf("cart-%d", r.seq)
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *CartRepo) UpdateQuantity(_ context.Context, id, userID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return pgx.ErrNoRows
	}
	item.Quantity = quantity
	return nil
}

func (r *CartRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *CartRepo) GetByIDAndUser(_ context.Context, id, userID string) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (r *CartRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error) {
	r.mu.Lock()
	items := make([]domain.CartItem, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, *item)
		}
	}
	r.mu.Unlock()

	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		product, err := r.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.CartLine{Item: item, Product: *product})
	}
	return lines, nil
}

func (r *CartRepo) ClearByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
		}
	}
	return nil
}

// OrderRepo is an in-memory repository.OrderRepository. Like the Postgres
// implementation, Create also decrements stock and clears the buyer's cart,
// and fails without side effects when stock cannot cover a line.
type OrderRepo struct {
	mu       sync.Mutex
	seq      int
	orders   map[string]*domain.Order
	products *ProductRepo
	cart     *CartRepo
}

// NewOrderRepo creates the fake.
func NewOrderRepo(products *ProductRepo, cart *CartRepo) *OrderRepo {
	return &OrderRepo{
		orders:   make(map[string]*domain.Order),
		products: products,
		cart:     cart,
	}
}

func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.products.mu.Lock()
	for _, item := range order.Items {
		product, ok := r.products.products[item.ProductID]
		if !ok || product.Stock < item.Quantity {
			r.products.mu.Unlock()
			return repository.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		r.products.products[item.ProductID].Stock -= item.Quantity
	}
	r.products.mu.Unlock()

	if err := r.cart.ClearByUser(ctx, order.UserID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	order.ID = fmt.Sprintf("order-%d", r.seq)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].ID = fmt.Sprintf("%s-item-%d", order.ID, i)
	}
	copied := *order
	copied.Items = append([]domain.OrderItem{}, order.Items...)
	r.orders[order.ID] = &copied
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *OrderRepo) GetByIDAndUser(_ context.Context, id, userID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *order
	return &copied, nil
}

func (r *OrderRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	order.Status = status
	return nil
}

// Dispatcher records published events for assertions.
type Dispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *Dispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *Dispatcher) Subscribe(events.EventType, events.EventHandler) {}

// Published returns a copy of all recorded events.
func (d *Dispatcher) Published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}
