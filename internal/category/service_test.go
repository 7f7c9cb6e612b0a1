package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lalan-be/internal/apperr"
	"lalan-be/internal/domain"
	"lalan-be/internal/store/memory"
)

func TestUpdate_RejectsSelfParent(t *testing.T) {
	st := memory.New()
	svc := NewService(st)
	c, err := svc.Create(context.Background(), "tools", "Tools", "", nil)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), c.ID, c.Name, c.Icon, &c.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidField, apperr.AsAppError(err).Code)
}

func TestUpdate_RejectsCycleThroughDescendant(t *testing.T) {
	st := memory.New()
	svc := NewService(st)
	root, err := svc.Create(context.Background(), "tools", "Tools", "", nil)
	require.NoError(t, err)
	child, err := svc.Create(context.Background(), "power-tools", "Power Tools", "", &root.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), root.ID, root.Name, root.Icon, &child.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidField, apperr.AsAppError(err).Code)
}

func TestDelete_CascadesToDescendantsAndUncategorizesItems(t *testing.T) {
	st := memory.New()
	svc := NewService(st)
	root, err := svc.Create(context.Background(), "tools", "Tools", "", nil)
	require.NoError(t, err)
	child, err := svc.Create(context.Background(), "power-tools", "Power Tools", "", &root.ID)
	require.NoError(t, err)

	it := &domain.Item{ID: "item-1", OwnerID: "owner-1", CategoryID: &child.ID, Title: "Drill", IsActive: true, PricePerDayStr: "10"}
	require.NoError(t, st.CreateItem(context.Background(), it))

	require.NoError(t, svc.Delete(context.Background(), root.ID))

	_, err = svc.Get(context.Background(), root.ID)
	require.Error(t, err)
	_, err = svc.Get(context.Background(), child.ID)
	require.Error(t, err)

	reloaded, err := st.GetItem(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)
}

func TestCreate_DuplicateSlugRejected(t *testing.T) {
	st := memory.New()
	svc := NewService(st)
	_, err := svc.Create(context.Background(), "tools", "Tools", "", nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "tools", "Tools Again", "", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidField, apperr.AsAppError(err).Code)
}
