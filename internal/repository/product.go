package repository

import (
	"context"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
)

type ListProductsInput struct {
	StoreID string
	Name    string // optional substring filter
	Page    int    // 1-based
	Size    int
}

type ProductRepository interface {
	// Create inserts the product together with its images, variants and
	// variant options in one transaction.
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)

	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns one page of a store's products plus the total count
	// for paging metadata.
	List(ctx context.Context, input ListProductsInput) ([]*domain.Product, int, error)

	// Update replaces the product row and, when variants are provided,
	// its variant set, in one transaction.
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)

	Delete(ctx context.Context, id, storeID string) error

	// DeleteVariant removes a single variant, scoped to the store that
	// owns its product, and keeps has_variants in sync.
	DeleteVariant(ctx context.Context, variantID, productID, storeID string) error
}
