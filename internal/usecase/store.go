package usecase

import (
	"context"
	"fmt"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/repository"
)

type StoreUsecase struct {
	stores repository.StoreRepository
}

func NewStoreUsecase(stores repository.StoreRepository) *StoreUsecase {
	return &StoreUsecase{stores: stores}
}

func (u *StoreUsecase) GetOwn(ctx context.Context, userID string) (*domain.Store, error) {
	return u.stores.FindByUserID(ctx, userID)
}

type UpdateStoreInput struct {
	Name        string
	Description *string
	Logo        *string
}

// UpdateOwn edits the caller's store; users without a store get
// ErrStoreNotFound.
func (u *StoreUsecase) UpdateOwn(ctx context.Context, userID string, input UpdateStoreInput) (*domain.Store, error) {
	store, err := u.stores.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	store.Name = input.Name
	if input.Description != nil {
		store.Description = input.Description
	}
	if input.Logo != nil {
		store.Logo = input.Logo
	}

	updated, err := u.stores.Update(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}
	return updated, nil
}
