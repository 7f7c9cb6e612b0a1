package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lalan-be/internal/domain"
	"lalan-be/internal/store/memory"
)

func TestProject_NoCacheFallsThroughToStore(t *testing.T) {
	st := memory.New()
	itemID := uuid.NewString()
	owner := uuid.NewString()
	renter := uuid.NewString()

	b := &domain.Booking{
		ID: uuid.NewString(), ItemID: itemID, OwnerID: owner, RenterID: renter,
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		TotalDays: 5, Status: domain.StatusPending,
	}
	require.NoError(t, st.CreateBooking(context.Background(), b))

	p := NewProjector(st, nil)
	slots, err := p.Project(context.Background(),
		itemID,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, domain.StatusPending, slots[0].Status)
}

func TestProject_ExcludesNonOverlappingAndTerminalBookings(t *testing.T) {
	st := memory.New()
	itemID := uuid.NewString()
	owner := uuid.NewString()
	renter := uuid.NewString()

	outsideWindow := &domain.Booking{
		ID: uuid.NewString(), ItemID: itemID, OwnerID: owner, RenterID: renter,
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		TotalDays: 5, Status: domain.StatusApproved,
	}
	require.NoError(t, st.CreateBooking(context.Background(), outsideWindow))

	cancelledInWindow := &domain.Booking{
		ID: uuid.NewString(), ItemID: itemID, OwnerID: owner, RenterID: renter,
		StartDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		TotalDays: 3, Status: domain.StatusCancelled,
	}
	require.NoError(t, st.CreateBooking(context.Background(), cancelledInWindow))

	p := NewProjector(st, nil)
	slots, err := p.Project(context.Background(),
		itemID,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
