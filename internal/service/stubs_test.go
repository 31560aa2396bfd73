package service_test

import (
	"context"
	"sort"

	"github.com/IagoMorais/sistema-venda/internal/model"
	"github.com/IagoMorais/sistema-venda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository for testing. Its DB()
// returns nil, which makes the services run their transaction closure
// directly against the stub.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) LowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Quantity <= p.MinStockLevel {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) FindByIDsTx(_ *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	p, ok := r.products[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if p.Quantity < qty {
		return false, nil
	}
	p.Quantity -= qty
	return true, nil
}

func (r *stubProductRepo) RestoreStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Quantity += qty
	return nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubOrderRepo keeps orders and an index of their items.
type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	items  map[uuid.UUID]*model.OrderItem
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders: make(map[uuid.UUID]*model.Order),
		items:  make(map[uuid.UUID]*model.OrderItem),
	}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
		r.items[o.Items[i].ID] = &o.Items[i]
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) TransitionTx(_ *gorm.DB, id uuid.UUID, fromStatus string, fields map[string]interface{}) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != fromStatus {
		return false, nil
	}
	if v, ok := fields["status"]; ok {
		o.Status = v.(string)
	}
	if v, ok := fields["cashier_id"]; ok {
		cid := v.(uuid.UUID)
		o.CashierID = &cid
	}
	if v, ok := fields["payment_method"]; ok {
		m := v.(string)
		o.PaymentMethod = &m
	}
	if v, ok := fields["total_amount"]; ok {
		o.TotalAmount = v.(decimal.Decimal)
	}
	return true, nil
}

func (r *stubOrderRepo) FindWithItems(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return r.find(id)
}

func (r *stubOrderRepo) FindWithItemsTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.find(id)
}

func (r *stubOrderRepo) find(id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) ListByStatus(_ context.Context, status string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) StationQueue(_ context.Context, station string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		var pending []model.OrderItem
		for _, item := range o.Items {
			if item.Station == station && item.Status == model.ItemPending {
				pending = append(pending, item)
			}
		}
		if len(pending) > 0 {
			clone := *o
			clone.Items = pending
			out = append(out, clone)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) FindItem(_ context.Context, itemID uuid.UUID) (*model.OrderItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubOrderRepo) UpdateItemStatus(_ context.Context, itemID uuid.UUID, status string) (*model.OrderItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	item.Status = status
	return item, nil
}

func (r *stubOrderRepo) SalesStats(_ context.Context) (*repository.SalesTotals, []repository.ProductSales, error) {
	totals := &repository.SalesTotals{TotalRevenue: decimal.Zero}
	sales := make(map[uuid.UUID]*repository.ProductSales)
	for _, o := range r.orders {
		if o.Status != model.OrderPaid {
			continue
		}
		totals.TotalSales++
		totals.TotalRevenue = totals.TotalRevenue.Add(o.TotalAmount)
		for _, item := range o.Items {
			row, ok := sales[item.ProductID]
			if !ok {
				row = &repository.ProductSales{ProductID: item.ProductID}
				if item.Product != nil {
					row.Name = item.Product.Name
				}
				sales[item.ProductID] = row
			}
			row.Quantity += int64(item.Quantity)
		}
	}
	ranking := make([]repository.ProductSales, 0, len(sales))
	for _, row := range sales {
		ranking = append(ranking, *row)
	}
	sort.Slice(ranking, func(i, j int) bool { return ranking[i].Quantity > ranking[j].Quantity })
	if len(ranking) > 5 {
		ranking = ranking[:5]
	}
	return totals, ranking, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Seed helpers ──────────────────────────────────────────────────────────────

func seedProduct(repo *stubProductRepo, name, station string, price float64, quantity, minStock int) *model.Product {
	p := &model.Product{
		ID:            uuid.New(),
		Name:          name,
		Brand:         "Casa",
		Price:         decimal.NewFromFloat(price),
		Discount:      decimal.Zero,
		Quantity:      quantity,
		MinStockLevel: minStock,
		Station:       station,
		Active:        true,
	}
	repo.products[p.ID] = p
	return p
}
