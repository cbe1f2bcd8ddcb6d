package usecase

import (
	"context"
	"fmt"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type ProductUsecase struct {
	products repository.ProductRepository
	stores   repository.StoreRepository
}

func NewProductUsecase(products repository.ProductRepository, stores repository.StoreRepository) *ProductUsecase {
	return &ProductUsecase{products: products, stores: stores}
}

type VariantOptionInput struct {
	VariantTypeID string
	Value         string
}

type VariantInput struct {
	PriceAdjustment string
	Stock           int
	Image           *string
	Options         []VariantOptionInput
}

type CreateProductInput struct {
	Name        string
	Description *string
	BasePrice   string
	Stock       int
	Images      []string
	Variants    []VariantInput
}

// Create inserts a product under the caller's store. Callers without a
// store (customers) get ErrStoreNotFound.
func (u *ProductUsecase) Create(ctx context.Context, userID string, input CreateProductInput) (*domain.Product, error) {
	store, err := u.stores.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		StoreID:     store.ID,
		Name:        input.Name,
		Description: input.Description,
		BasePrice:   input.BasePrice,
		Stock:       input.Stock,
		Images:      toImages(input.Images),
		Variants:    toVariants(input.Variants),
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

type UpdateProductInput struct {
	ProductID   string
	Name        string
	Description *string
	BasePrice   string
	Stock       int
	Images      []string
	Variants    []VariantInput
}

func (u *ProductUsecase) Update(ctx context.Context, userID string, input UpdateProductInput) (*domain.Product, error) {
	store, err := u.stores.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		ID:          input.ProductID,
		StoreID:     store.ID,
		Name:        input.Name,
		Description: input.Description,
		BasePrice:   input.BasePrice,
		Stock:       input.Stock,
		Images:      toImages(input.Images),
		Variants:    toVariants(input.Variants),
	}

	updated, err := u.products.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, userID, productID string) error {
	store, err := u.stores.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return u.products.Delete(ctx, productID, store.ID)
}

// DeleteVariant removes a single variant from one of the caller's
// products and recomputes the product's has_variants flag.
func (u *ProductUsecase) DeleteVariant(ctx context.Context, userID, productID, variantID string) error {
	store, err := u.stores.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return u.products.DeleteVariant(ctx, variantID, productID, store.ID)
}

func (u *ProductUsecase) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	return u.products.GetByID(ctx, productID)
}

type ListProductsInput struct {
	Name string
	Page int
	Size int
}

type ListProductsResult struct {
	Products    []*domain.Product
	Size        int
	TotalPage   int
	CurrentPage int
}

func (u *ProductUsecase) List(ctx context.Context, userID string, input ListProductsInput) (*ListProductsResult, error) {
	store, err := u.stores.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Page < 1 {
		input.Page = 1
	}
	if input.Size < 1 {
		input.Size = defaultPageSize
	}
	if input.Size > maxPageSize {
		input.Size = maxPageSize
	}

	products, total, err := u.products.List(ctx, repository.ListProductsInput{
		StoreID: store.ID,
		Name:    input.Name,
		Page:    input.Page,
		Size:    input.Size,
	})
	if err != nil {
		return nil, err
	}

	totalPage := (total + input.Size - 1) / input.Size
	return &ListProductsResult{
		Products:    products,
		Size:        input.Size,
		TotalPage:   totalPage,
		CurrentPage: input.Page,
	}, nil
}

// toImages and toVariants return nil for empty input: the repository
// only replaces children that are actually supplied, so an update that
// omits them keeps the existing rows.
func toImages(urls []string) []domain.ProductImage {
	if len(urls) == 0 {
		return nil
	}
	images := make([]domain.ProductImage, len(urls))
	for i, url := range urls {
		images[i] = domain.ProductImage{Image: url}
	}
	return images
}

func toVariants(inputs []VariantInput) []domain.ProductVariant {
	if len(inputs) == 0 {
		return nil
	}
	variants := make([]domain.ProductVariant, len(inputs))
	for i, v := range inputs {
		adj := v.PriceAdjustment
		if adj == "" {
			adj = "0.00"
		}
		options := make([]domain.VariantOption, len(v.Options))
		for j, o := range v.Options {
			options[j] = domain.VariantOption{VariantTypeID: o.VariantTypeID, Value: o.Value}
		}
		variants[i] = domain.ProductVariant{
			PriceAdjustment: adj,
			Stock:           v.Stock,
			Image:           v.Image,
			Options:         options,
		}
	}
	return variants
}
