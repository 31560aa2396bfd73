package repository

import (
	"context"

	"github.com/IagoMorais/sistema-venda/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesTotals aggregates all paid orders.
type SalesTotals struct {
	TotalSales   int64
	TotalRevenue decimal.Decimal
}

// ProductSales is one row of the best-sellers ranking.
type ProductSales struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int64
}

type OrderRepository interface {
	// CreateTx inserts the order and its items in the caller's transaction.
	CreateTx(tx *gorm.DB, o *model.Order) error
	// TransitionTx applies fields only while the order still is in fromStatus,
	// returning false when a concurrent transaction won the transition. The
	// guard serializes checkout and cancel the same way the stock decrement
	// guard serializes placements.
	TransitionTx(tx *gorm.DB, id uuid.UUID, fromStatus string, fields map[string]interface{}) (bool, error)
	FindWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindWithItemsTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	ListByStatus(ctx context.Context, status string) ([]model.Order, error)
	// StationQueue returns orders having at least one pending item for the
	// station, each loaded only with those matching items.
	StationQueue(ctx context.Context, station string) ([]model.Order, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*model.OrderItem, error)
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status string) (*model.OrderItem, error)
	// SalesStats runs both aggregate reads inside one repeatable-read
	// transaction so totals and ranking reflect the same snapshot.
	SalesStats(ctx context.Context) (*SalesTotals, []ProductSales, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) TransitionTx(tx *gorm.DB, id uuid.UUID, fromStatus string, fields map[string]interface{}) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) FindWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.findWithItems(r.db.WithContext(ctx), id)
}

func (r *orderRepo) FindWithItemsTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.findWithItems(tx, id)
}

func (r *orderRepo) findWithItems(db *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.created_at ASC")
	}).Preload("Items.Product").First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByStatus(ctx context.Context, status string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) StationQueue(ctx context.Context, station string) ([]model.Order, error) {
	var orderIDs []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("station = ? AND status = ?", station, model.ItemPending).
		Distinct("order_id").
		Pluck("order_id", &orderIDs).Error
	if err != nil || len(orderIDs) == 0 {
		return nil, err
	}

	var orders []model.Order
	err = r.db.WithContext(ctx).
		Preload("Items", "station = ? AND status = ?", station, model.ItemPending).
		Preload("Items.Product").
		Where("id IN ?", orderIDs).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderRepo) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status string) (*model.OrderItem, error) {
	res := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ?", itemID).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindItem(ctx, itemID)
}

func (r *orderRepo) SalesStats(ctx context.Context) (*SalesTotals, []ProductSales, error) {
	var totals SalesTotals
	var top []ProductSales

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY").Error; err != nil {
			return err
		}

		var row struct {
			Count   int64
			Revenue decimal.Decimal
		}
		if err := tx.Model(&model.Order{}).
			Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
			Where("status = ?", model.OrderPaid).
			Scan(&row).Error; err != nil {
			return err
		}
		totals = SalesTotals{TotalSales: row.Count, TotalRevenue: row.Revenue}

		return tx.Table("order_items").
			Select("order_items.product_id AS product_id, products.name AS name, SUM(order_items.quantity) AS quantity").
			Joins("INNER JOIN orders ON orders.id = order_items.order_id").
			Joins("INNER JOIN products ON products.id = order_items.product_id").
			Where("orders.status = ?", model.OrderPaid).
			Group("order_items.product_id, products.name").
			Order("quantity DESC").
			Limit(5).
			Scan(&top).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &totals, top, nil
}
