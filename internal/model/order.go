package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order lifecycle: open → paid (checkout) | cancelled. Paid and cancelled are
// terminal. Orders are never physically deleted.
const (
	OrderOpen      = "open"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

// Item preparation statuses, driven by station/waiter/cashier actors.
const (
	ItemPending   = "pending"
	ItemPreparing = "preparing"
	ItemReady     = "ready"
	ItemDelivered = "delivered"
)

// Payment methods accepted at checkout.
const (
	PayCash   = "cash"
	PayCredit = "credit"
	PayDebit  = "debit"
	PayPix    = "pix"
)

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TableNumber   string          `gorm:"not null"`
	Status        string          `gorm:"type:varchar(10);not null;default:'open';index"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2)"`
	PaymentMethod *string         `gorm:"type:varchar(10)"`
	WaiterID      uuid.UUID       `gorm:"type:uuid;not null"`
	CashierID     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
	ClosedAt      *time.Time

	Items   []OrderItem `gorm:"foreignKey:OrderID"`
	Waiter  *User       `gorm:"foreignKey:WaiterID"`
	Cashier *User       `gorm:"foreignKey:CashierID"`
}

// OrderItem snapshots price and station at placement time so later catalog
// edits never change what was actually ordered.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    int             `gorm:"not null"`
	PriceAtTime decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Station     string          `gorm:"type:varchar(10);not null;index"`
	Status      string          `gorm:"type:varchar(10);not null;default:'pending';index"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func ValidOrderStatus(status string) bool {
	switch status {
	case OrderOpen, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

func ValidItemStatus(status string) bool {
	switch status {
	case ItemPending, ItemPreparing, ItemReady, ItemDelivered:
		return true
	}
	return false
}

func ValidPaymentMethod(method string) bool {
	switch method {
	case PayCash, PayCredit, PayDebit, PayPix:
		return true
	}
	return false
}
