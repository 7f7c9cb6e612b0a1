package expirer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lalan-be/internal/clock"
	"lalan-be/internal/domain"
	"lalan-be/internal/store/memory"
)

func seedPendingBooking(t *testing.T, st *memory.Store, createdAt time.Time) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		ID: uuid.NewString(), ItemID: uuid.NewString(),
		RenterID: uuid.NewString(), OwnerID: uuid.NewString(),
		StartDate: createdAt.AddDate(0, 1, 0), EndDate: createdAt.AddDate(0, 1, 3),
		TotalDays: 4, Status: domain.StatusPending,
		CreatedAt: createdAt,
	}
	require.NoError(t, st.CreateBooking(context.Background(), b))
	return b
}

func TestRun_ExpiresOldPendingBookings(t *testing.T) {
	st := memory.New()
	fc := clock.NewFixed(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	old := seedPendingBooking(t, st, fc.Now().Add(-49*time.Hour))
	recent := seedPendingBooking(t, st, fc.Now().Add(-1*time.Hour))

	e := New(st, fc, 48*time.Hour)
	res, err := e.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)

	oldBooking, err := st.GetBooking(context.Background(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, oldBooking.Status)

	recentBooking, err := st.GetBooking(context.Background(), recent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, recentBooking.Status)
}

func TestRun_DryRunDoesNotMutate(t *testing.T) {
	st := memory.New()
	fc := clock.NewFixed(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	old := seedPendingBooking(t, st, fc.Now().Add(-49*time.Hour))

	e := New(st, fc, 48*time.Hour)
	res, err := e.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)
	assert.True(t, res.DryRun)

	b, err := st.GetBooking(context.Background(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, b.Status)
}
