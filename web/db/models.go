package db

import (
	"time"

	"gorm.io/gorm"
)

// AdminUser can log into the admin panel.
type AdminUser struct {
	gorm.Model
	Email    string `gorm:"unique"`
	Password string // bcrypt hash
}

// ArchivedOrder mirrors an order into mysql so the admin panel has a record
// that survives the local store and is shared across machines.
type ArchivedOrder struct {
	gorm.Model
	OrderCode     string `gorm:"unique"`
	UserID        string
	Type          string
	PlanName      string
	Price         string
	Status        string
	CustomerName  string
	CustomerEmail string
	NotifyFailed  bool
	ConfirmedAt   *time.Time
}
