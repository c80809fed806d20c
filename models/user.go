package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleWorker UserRole = "snowWorker"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Name         string   `json:"name" gorm:"not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"not null;default:'client'"`
	Phone        string   `json:"phone"`
	IsActive     bool     `json:"is_active" gorm:"default:true"`
	// External payment-processor account payouts are transferred to.
	// Only set for workers.
	PayoutAccountID string    `json:"payout_account_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
