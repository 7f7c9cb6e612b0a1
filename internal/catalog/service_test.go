package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lalan-be/internal/apperr"
	"lalan-be/internal/domain"
	"lalan-be/internal/store/memory"
)

func TestCreateItem_RejectsUnknownCondition(t *testing.T) {
	st := memory.New()
	svc := NewService(st)
	_, err := svc.CreateItem(context.Background(), CreateItemRequest{
		OwnerID: "owner-1", Title: "Drill", Condition: "pristine", PricePerDayStr: "10", DepositStr: "0",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidField, apperr.AsAppError(err).Code)
}

func TestUpdateItem_RejectsUnrecognizedField(t *testing.T) {
	st := memory.New()
	svc := NewService(st)
	it, err := svc.CreateItem(context.Background(), CreateItemRequest{
		OwnerID: "owner-1", Title: "Drill", Condition: domain.ConditionGood, PricePerDayStr: "10", DepositStr: "0",
	})
	require.NoError(t, err)

	_, err = svc.UpdateItem(context.Background(), it.ID, "owner-1", map[string]any{"ownerId": "owner-2"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidField, apperr.AsAppError(err).Code)
}

func TestUpdateItem_RejectsNonOwner(t *testing.T) {
	st := memory.New()
	svc := NewService(st)
	it, err := svc.CreateItem(context.Background(), CreateItemRequest{
		OwnerID: "owner-1", Title: "Drill", Condition: domain.ConditionGood, PricePerDayStr: "10", DepositStr: "0",
	})
	require.NoError(t, err)

	_, err = svc.UpdateItem(context.Background(), it.ID, "owner-2", map[string]any{"title": "New title"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotOwner, apperr.AsAppError(err).Code)
}

func TestListItems_FiltersInactive(t *testing.T) {
	st := memory.New()
	svc := NewService(st)
	it, err := svc.CreateItem(context.Background(), CreateItemRequest{
		OwnerID: "owner-1", Title: "Drill", Condition: domain.ConditionGood, PricePerDayStr: "10", DepositStr: "0",
	})
	require.NoError(t, err)
	_, err = svc.UpdateItem(context.Background(), it.ID, "owner-1", map[string]any{"isActive": false})
	require.NoError(t, err)

	items, total, err := svc.ListItems(context.Background(), domain.ItemFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, items)
}
