package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lalan-be/internal/apperr"
	"lalan-be/internal/clock"
	"lalan-be/internal/domain"
	"lalan-be/internal/store/memory"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedItem(t *testing.T, st *memory.Store, ownerID string) *domain.Item {
	t.Helper()
	it := &domain.Item{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Title:          "Power Drill",
		Condition:      domain.ConditionGood,
		PricePerDayStr: "500",
		DepositStr:     "1000",
		IsActive:       true,
	}
	require.NoError(t, st.CreateItem(context.Background(), it))
	return it
}

func newServiceWithClock(st *memory.Store, now time.Time) (Service, *clock.Fixed) {
	fc := clock.NewFixed(now)
	return NewService(st, st, fc), fc
}

// S1 overlap: one of two overlapping requests on the same item commits,
// the other fails with BookingOverlap.
func TestCreate_OverlapRejected(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renterA := uuid.NewString()
	renterB := uuid.NewString()
	item := seedItem(t, st, owner)

	svc, _ := newServiceWithClock(st, date("2025-02-01"))

	_, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renterA,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renterB,
		StartDate: date("2025-03-05"), EndDate: date("2025-03-09"),
	})
	require.Error(t, err)
	ae := apperr.AsAppError(err)
	assert.Equal(t, apperr.CodeBookingOverlap, ae.Code)
}

// S5 reject-then-rebook: a rejected booking does not block a later
// overlapping request.
func TestCreate_RejectedDoesNotBlock(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renterA := uuid.NewString()
	renterB := uuid.NewString()
	item := seedItem(t, st, owner)

	svc, _ := newServiceWithClock(st, date("2025-02-01"))

	bA, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renterA,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), bA.ID, owner, domain.StatusRejected)
	require.NoError(t, err)

	bB, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renterB,
		StartDate: date("2025-03-03"), EndDate: date("2025-03-07"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, bB.Status)
}

// §8 property 9: self-booking is forbidden.
func TestCreate_SelfBookingForbidden(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	item := seedItem(t, st, owner)
	svc, _ := newServiceWithClock(st, date("2025-02-01"))

	_, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: owner,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeSelfBooking, apperr.AsAppError(err).Code)
}

func TestCreate_InactiveItemRejected(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	item := seedItem(t, st, owner)
	_, err := st.UpdateItemFields(context.Background(), item.ID, map[string]any{"isActive": false})
	require.NoError(t, err)

	svc, _ := newServiceWithClock(st, date("2025-02-01"))
	_, err = svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renter,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeItemInactive, apperr.AsAppError(err).Code)
}

func TestCreate_InvalidDateRangeRejected(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	item := seedItem(t, st, owner)
	svc, _ := newServiceWithClock(st, date("2025-02-01"))

	_, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renter,
		StartDate: date("2025-03-05"), EndDate: date("2025-03-05"),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidRange, apperr.AsAppError(err).Code)
}

// §8 property 5: transition succeeds iff (from, to) is in the table
// and actor is authorized.
func TestTransition_IllegalEdgeRejected(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	item := seedItem(t, st, owner)
	svc, _ := newServiceWithClock(st, date("2025-02-01"))

	b, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renter,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), b.ID, owner, domain.StatusCompleted)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.AsAppError(err).Code)
}

func TestTransition_WrongActorRejected(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	item := seedItem(t, st, owner)
	svc, _ := newServiceWithClock(st, date("2025-02-01"))

	b, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renter,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	// renter cannot approve their own booking
	_, err = svc.Transition(context.Background(), b.ID, renter, domain.StatusApproved)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotAuthorized, apperr.AsAppError(err).Code)
}

// S4 expiry: approve at T+47h59m succeeds; at T+48h+1s fails BookingExpired.
func TestTransition_ExpiryGate(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	item := seedItem(t, st, owner)

	created := date("2025-02-01")
	svc, fc := newServiceWithClock(st, created)

	b, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renter,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	fc.Set(created.Add(47*time.Hour + 59*time.Minute))
	updated, err := svc.Transition(context.Background(), b.ID, owner, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
}

func TestTransition_ExpiryGateFailsAfterWindow(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	item := seedItem(t, st, owner)

	created := date("2025-02-01")
	svc, fc := newServiceWithClock(st, created)

	b, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renter,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	fc.Set(created.Add(48*time.Hour + 1*time.Second))
	_, err = svc.Transition(context.Background(), b.ID, owner, domain.StatusApproved)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeBookingExpired, apperr.AsAppError(err).Code)
}

func TestTransition_FullHappyPath(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	item := seedItem(t, st, owner)
	svc, _ := newServiceWithClock(st, date("2025-02-01"))

	b, err := svc.Create(context.Background(), CreateRequest{
		ItemID: item.ID, RenterID: renter,
		StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	b, err = svc.Transition(context.Background(), b.ID, owner, domain.StatusApproved)
	require.NoError(t, err)
	b, err = svc.Transition(context.Background(), b.ID, owner, domain.StatusPaymentPending)
	require.NoError(t, err)
	b, err = svc.Transition(context.Background(), b.ID, owner, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, b.Status)
}
