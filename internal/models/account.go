package models

import (
	"time"
)

// Account represents a registered user of the shortener.
// Username and Email are stored lowercase so lookups are case-insensitive.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // Never logged or returned in responses
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
