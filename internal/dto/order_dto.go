package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	TableNumber string           `json:"tableNumber" validate:"required,min=1"`
	Items       []OrderItemInput `json:"items"       validate:"required,min=1,dive"`
}

type CheckoutOrderRequest struct {
	PaymentMethod string  `json:"paymentMethod" validate:"required,oneof=cash credit debit pix"`
	TotalAmount   Numeric `json:"totalAmount"`
}

type UpdateItemStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending preparing ready delivered"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ProductRef is the slice of product data joined onto order items.
type ProductRef struct {
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Station string `json:"station"`
}

type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Quantity    int             `json:"quantity"`
	PriceAtTime decimal.Decimal `json:"priceAtTime"`
	Station     string          `json:"station"`
	Status      string          `json:"status"`
	Product     ProductRef      `json:"product"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	TableNumber   string              `json:"tableNumber"`
	Status        string              `json:"status"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	PaymentMethod *string             `json:"paymentMethod"`
	WaiterID      string              `json:"waiterId"`
	CashierID     *string             `json:"cashierId"`
	CreatedAt     time.Time           `json:"createdAt"`
	ClosedAt      *time.Time          `json:"closedAt"`
	Items         []OrderItemResponse `json:"items"`
}
