// Package catalog implements Item CRUD and search/listing (§3, §6).
// Sparse updates are validated against domain.ItemUpdatableFields per
// §9's "dynamic field-by-field updates" design note; unknown keys are
// rejected rather than silently ignored.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"lalan-be/internal/apperr"
	"lalan-be/internal/domain"
	"lalan-be/internal/money"
	"lalan-be/internal/store"
)

type CreateItemRequest struct {
	OwnerID        string
	CategoryID     *int
	Title          string
	Description    string
	Condition      domain.Condition
	Location       string
	PricePerDayStr string
	DepositStr     string
}

type Service interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	UpdateItem(ctx context.Context, id, ownerID string, fields map[string]any) (*domain.Item, error)
	DeleteItem(ctx context.Context, id, ownerID string) error
	ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error)
	ListItemsByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)
	AddImage(ctx context.Context, itemID, ownerID, url string, isCover bool) (*domain.ItemImage, error)
}

type service struct {
	items store.ItemStore
}

func NewService(items store.ItemStore) Service {
	return &service{items: items}
}

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*domain.Item, error) {
	if req.Title == "" {
		return nil, apperr.Validation(apperr.CodeInvalidField, "title is required").WithField("title", "required")
	}
	if !req.Condition.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidField, "invalid condition").WithField("condition", "unrecognized")
	}
	price, err := money.Parse(req.PricePerDayStr)
	if err != nil || !money.NonNegative(price) {
		return nil, apperr.Validation(apperr.CodeInvalidField, "pricePerDay must be a non-negative amount").WithField("pricePerDay", "invalid")
	}
	deposit, err := money.Parse(req.DepositStr)
	if err != nil || !money.NonNegative(deposit) {
		return nil, apperr.Validation(apperr.CodeInvalidField, "depositAmount must be a non-negative amount").WithField("depositAmount", "invalid")
	}

	it := &domain.Item{
		ID:             uuid.NewString(),
		OwnerID:        req.OwnerID,
		CategoryID:     req.CategoryID,
		Title:          req.Title,
		Description:    req.Description,
		Condition:      req.Condition,
		Location:       req.Location,
		PricePerDayStr: money.String(price),
		DepositStr:     money.String(deposit),
		IsActive:       true,
	}
	if err := s.items.CreateItem(ctx, it); err != nil {
		return nil, apperr.Internal(err)
	}
	return it, nil
}

func (s *service) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	it, err := s.items.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrItemNotFound
		}
		return nil, apperr.Internal(err)
	}
	return it, nil
}

// UpdateItem menerapkan sparse update, ditolak jika field di luar
// domain.ItemUpdatableFields atau pemanggil bukan owner.
func (s *service) UpdateItem(ctx context.Context, id, ownerID string, fields map[string]any) (*domain.Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != ownerID {
		return nil, apperr.ErrNotOwner
	}
	for k := range fields {
		if !domain.ItemUpdatableFields[k] {
			return nil, apperr.Validation(apperr.CodeInvalidField, "unrecognized field: "+k).WithField(k, "unrecognized")
		}
	}
	updated, err := s.items.UpdateItemFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrItemNotFound
		}
		return nil, apperr.Internal(err)
	}
	return updated, nil
}

func (s *service) DeleteItem(ctx context.Context, id, ownerID string) error {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if it.OwnerID != ownerID {
		return apperr.ErrNotOwner
	}
	if err := s.items.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.ErrItemNotFound
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *service) ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error) {
	items, total, err := s.items.ListItems(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return items, total, nil
}

func (s *service) ListItemsByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	items, err := s.items.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (s *service) AddImage(ctx context.Context, itemID, ownerID, url string, isCover bool) (*domain.ItemImage, error) {
	it, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != ownerID {
		return nil, apperr.ErrNotOwner
	}
	img := &domain.ItemImage{ID: uuid.NewString(), ItemID: itemID, URL: url, IsCover: isCover, Position: len(it.Images)}
	if err := s.items.AddImage(ctx, img); err != nil {
		return nil, apperr.Internal(err)
	}
	return img, nil
}
