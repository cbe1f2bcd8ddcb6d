package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("email or password is wrong")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token is expired")
	ErrUnauthorized       = errors.New("unauthorized")
)

type Role string

const (
	RoleStoreOwner Role = "STORE_OWNER"
	RoleCustomer   Role = "CUSTOMER"
)

type User struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Address  string
	Role     Role

	// PasswordHash is nil for accounts created through OAuth.
	PasswordHash *string

	// RefreshToken is the single active refresh token for this user.
	// It is the sole source of truth: issuing a new pair overwrites it,
	// logout nulls it, and any presented refresh token that does not
	// match it exactly is rejected.
	RefreshToken *string

	VerifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TokenPair is what login, refresh and OAuth flows hand back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims is the verified identity carried by an access or refresh token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   Role
}
