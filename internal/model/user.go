package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles conhecidos do sistema. "kitchen" e "bar" dobram como estação de preparo.
const (
	RoleAdmin   = "admin"
	RoleWaiter  = "waiter"
	RoleCashier = "cashier"
	RoleKitchen = "kitchen"
	RoleBar     = "bar"
)

// User stores system users with role-based access.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'waiter'"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleWaiter, RoleCashier, RoleKitchen, RoleBar:
		return true
	}
	return false
}
