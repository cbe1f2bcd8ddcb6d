package domain

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
)

type Product struct {
	ID          string
	StoreID     string
	Name        string
	Description *string
	BasePrice   string // decimal, stored as numeric
	Stock       int
	HasVariants bool
	Images      []ProductImage
	Variants    []ProductVariant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductImage struct {
	ID        string
	ProductID string
	Image     string
}

type ProductVariant struct {
	ID              string
	ProductID       string
	PriceAdjustment string
	Stock           int
	Image           *string
	Options         []VariantOption
}

type VariantOption struct {
	ID            string
	VariantID     string
	VariantTypeID string
	Value         string
}
