package domain

import (
	"errors"
	"time"
)

var ErrStoreNotFound = errors.New("store not found")

// Store belongs to exactly one STORE_OWNER user and is created inside
// the same transaction as the owning user.
type Store struct {
	ID          string
	UserID      string
	Name        string
	Description *string
	Logo        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
