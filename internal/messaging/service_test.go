package messaging

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

// §8 property 8: at most one conversation per unordered pair + booking.
func TestOpenOrCreateConversation_Canonicalization(t *testing.T) {
	st := memory.New()
	a := uuid.NewString()
	b := uuid.NewString()
	svc := NewService(st, st, clock.NewFixed(time.Now()))

	c1, err := svc.OpenOrCreateConversation(context.Background(), a, b, nil)
	require.NoError(t, err)

	c2, err := svc.OpenOrCreateConversation(context.Background(), b, a, nil)
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
}

func TestOpenOrCreateConversation_BookingScopedRequiresParticipant(t *testing.T) {
	st := memory.New()
	owner := uuid.NewString()
	renter := uuid.NewString()
	stranger := uuid.NewString()
	bk := &domain.Booking{
		ID: uuid.NewString(), ItemID: uuid.NewString(),
		RenterID: renter, OwnerID: owner,
		StartDate: time.Now(), EndDate: time.Now().AddDate(0, 0, 3),
		TotalDays: 4, Status: domain.StatusPending,
	}
	require.NoError(t, st.CreateBooking(context.Background(), bk))

	svc := NewService(st, st, clock.NewFixed(time.Now()))

	_, err := svc.OpenOrCreateConversation(context.Background(), stranger, owner, &bk.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotAuthorized, apperr.AsAppError(err).Code)

	c, err := svc.OpenOrCreateConversation(context.Background(), renter, owner, &bk.ID)
	require.NoError(t, err)
	require.NotNil(t, c.BookingID)
	assert.Equal(t, bk.ID, *c.BookingID)
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	st := memory.New()
	a := uuid.NewString()
	b := uuid.NewString()
	stranger := uuid.NewString()
	svc := NewService(st, st, clock.NewFixed(time.Now()))

	c, err := svc.OpenOrCreateConversation(context.Background(), a, b, nil)
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), stranger, c.ID, "hello")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotParticipant, apperr.AsAppError(err).Code)
}

func TestMessages_OrderedByCreatedAtThenID(t *testing.T) {
	st := memory.New()
	a := uuid.NewString()
	b := uuid.NewString()
	svc := NewService(st, st, clock.NewFixed(time.Now()))

	c, err := svc.OpenOrCreateConversation(context.Background(), a, b, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.SendMessage(context.Background(), a, c.ID, "msg")
		require.NoError(t, err)
	}

	msgs, err := svc.ListMessages(context.Background(), a, c.ID, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, !msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
		if msgs[i].CreatedAt.Equal(msgs[i-1].CreatedAt) {
			assert.True(t, msgs[i-1].ID < msgs[i].ID)
		}
	}
}

func TestMarkRead_OnlyFlagsOthersMessages(t *testing.T) {
	st := memory.New()
	a := uuid.NewString()
	b := uuid.NewString()
	svc := NewService(st, st, clock.NewFixed(time.Now()))

	c, err := svc.OpenOrCreateConversation(context.Background(), a, b, nil)
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), a, c.ID, "from a")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), b, c.ID, "from b")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), b, c.ID))

	unread, err := st.UnreadCount(context.Background(), c.ID, b)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	unreadForA, err := st.UnreadCount(context.Background(), c.ID, a)
	require.NoError(t, err)
	assert.Equal(t, 1, unreadForA)
}
