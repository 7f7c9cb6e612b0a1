package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lalan-be/internal/apperr"
	"lalan-be/internal/domain"
	"lalan-be/internal/store/memory"
)

func seedCompletedBooking(t *testing.T, st *memory.Store, owner, renter string) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		ID:             uuid.NewString(),
		ItemID:         uuid.NewString(),
		RenterID:       renter,
		OwnerID:        owner,
		StartDate:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		TotalDays:      5,
		BaseTotalStr:   "2500",
		DiscountRate:   "0",
		DiscountAmtStr: "0",
		FinalTotalStr:  "2500",
		DepositStr:     "500",
		Status:         domain.StatusCompleted,
	}
	require.NoError(t, st.CreateBooking(context.Background(), b))
	return b
}

// S6 review: renter submits 5, second submission fails DuplicateReview;
// owner submits 4; renter's rating average becomes 4.0 with count 1.
func TestSubmit_S6Scenario(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	require.NoError(t, st.CreateUser(context.Background(), &domain.User{ID: owner, Email: "owner@example.com", FirstName: "O"}))
	require.NoError(t, st.CreateUser(context.Background(), &domain.User{ID: renter, Email: "renter@example.com", FirstName: "R"}))
	b := seedCompletedBooking(t, st, owner, renter)

	svc := NewService(st, st)

	_, err := svc.Submit(context.Background(), renter, b.ID, 5, "Great experience overall")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), renter, b.ID, 4, "trying again here")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDuplicateReview, apperr.AsAppError(err).Code)

	_, err = svc.Submit(context.Background(), owner, b.ID, 4, "Renter was punctual")
	require.NoError(t, err)

	renterUser, err := st.GetUserByID(context.Background(), renter)
	require.NoError(t, err)
	require.NotNil(t, renterUser.RatingAverage)
	assert.Equal(t, 4.0, *renterUser.RatingAverage)
	assert.Equal(t, 1, renterUser.ReviewCount)

	ownerUser, err := st.GetUserByID(context.Background(), owner)
	require.NoError(t, err)
	require.NotNil(t, ownerUser.RatingAverage)
	assert.Equal(t, 5.0, *ownerUser.RatingAverage)
}

func TestSubmit_NotCompletedRejected(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	b := &domain.Booking{
		ID: uuid.NewString(), ItemID: uuid.NewString(),
		RenterID: renter, OwnerID: owner,
		StartDate: time.Now(), EndDate: time.Now().AddDate(0, 0, 2),
		TotalDays: 3, Status: domain.StatusPending,
	}
	require.NoError(t, st.CreateBooking(context.Background(), b))

	svc := NewService(st, st)
	_, err := svc.Submit(context.Background(), renter, b.ID, 5, "Should not be allowed")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeReviewNotEligible, apperr.AsAppError(err).Code)
}

func TestSubmit_NonParticipantRejected(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	stranger := uuid.NewString()
	b := seedCompletedBooking(t, st, owner, renter)

	svc := NewService(st, st)
	_, err := svc.Submit(context.Background(), stranger, b.ID, 5, "Not involved in this one")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotAuthorized, apperr.AsAppError(err).Code)
}

func TestSubmit_InvalidRatingAndCommentRejected(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	b := seedCompletedBooking(t, st, owner, renter)
	svc := NewService(st, st)

	_, err := svc.Submit(context.Background(), renter, b.ID, 6, "Valid length comment here")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidField, apperr.AsAppError(err).Code)

	_, err = svc.Submit(context.Background(), renter, b.ID, 5, "short")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidField, apperr.AsAppError(err).Code)
}
