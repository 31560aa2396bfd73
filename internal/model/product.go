package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estações de preparo para onde os itens de pedido são roteados.
const (
	StationKitchen = "kitchen"
	StationBar     = "bar"
)

// Product is a catalog entry. Quantity is the on-hand stock, mutated only by
// the order workflow (creation decrements, cancellation restores) and by admin
// updates. Deletion is soft: Active=false takes the product out of circulation
// without breaking order_items that still reference it.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string          `gorm:"index;not null"`
	Brand         string          `gorm:"not null"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Quantity      int             `gorm:"not null;default:0"`
	MinStockLevel int             `gorm:"not null;default:0"`
	ImageURL      *string
	Station       string     `gorm:"type:varchar(10);not null;default:'kitchen'"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	Active        bool       `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Creator *User `gorm:"foreignKey:CreatedBy"`
}

func ValidStation(station string) bool {
	return station == StationKitchen || station == StationBar
}
