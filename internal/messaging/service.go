// Package messaging implements the open-or-create conversation flow
// and message send/read operations of §4.6.
package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"lalan-be/internal/apperr"
	"lalan-be/internal/clock"
	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

type Service interface {
	OpenOrCreateConversation(ctx context.Context, actorID, counterpartyID string, bookingID *string) (*domain.Conversation, error)
	SendMessage(ctx context.Context, actorID, conversationID, content string) (*domain.Message, error)
	MarkRead(ctx context.Context, actorID, conversationID string) error
	ListMessages(ctx context.Context, actorID, conversationID string, before time.Time, limit int) ([]domain.Message, error)
	ListConversations(ctx context.Context, actorID string) ([]domain.Conversation, error)
}

type service struct {
	conversations store.ConversationStore
	bookings      store.BookingStore
	clk           clock.Clock
}

func NewService(conversations store.ConversationStore, bookings store.BookingStore, clk clock.Clock) Service {
	return &service{conversations: conversations, bookings: bookings, clk: clk}
}

// OpenOrCreateConversation menegakkan canonicalization §8 property 8:
// paling banyak satu conversation per (pasangan tak-terurut, booking).
// Normalisasi (p1, p2) dilakukan di domain.NormalizeParticipants;
// kalau bookingId hadir, actor harus jadi salah satu pihak booking itu.
func (s *service) OpenOrCreateConversation(ctx context.Context, actorID, counterpartyID string, bookingID *string) (*domain.Conversation, error) {
	if actorID == counterpartyID {
		return nil, apperr.Validation(apperr.CodeInvalidField, "cannot open a conversation with yourself")
	}

	bid := domain.GeneralConversationSentinel
	if bookingID != nil && *bookingID != "" {
		b, err := s.bookings.GetBooking(ctx, *bookingID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.ErrBookingNotFound
			}
			return nil, apperr.Internal(err)
		}
		if b.RenterID != actorID && b.OwnerID != actorID {
			return nil, apperr.ErrNotAuthorized
		}
		bid = *bookingID
	}

	p1, p2 := domain.NormalizeParticipants(actorID, counterpartyID)
	c, err := s.conversations.GetOrCreateConversation(ctx, p1, p2, bid)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *service) SendMessage(ctx context.Context, actorID, conversationID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation(apperr.CodeInvalidField, "message content cannot be empty").WithField("content", "empty")
	}

	c, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(apperr.CodeConvNotFound, "conversation not found")
		}
		return nil, apperr.Internal(err)
	}
	if !c.HasParticipant(actorID) {
		return nil, apperr.ErrNotParticipant
	}

	m := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       actorID,
		Content:        content,
		IsRead:         false,
	}
	if err := s.conversations.AppendMessage(ctx, m); err != nil {
		return nil, apperr.Internal(err)
	}
	return m, nil
}

func (s *service) MarkRead(ctx context.Context, actorID, conversationID string) error {
	c, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(apperr.CodeConvNotFound, "conversation not found")
		}
		return apperr.Internal(err)
	}
	if !c.HasParticipant(actorID) {
		return apperr.ErrNotParticipant
	}
	if err := s.conversations.MarkRead(ctx, conversationID, actorID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *service) ListMessages(ctx context.Context, actorID, conversationID string, before time.Time, limit int) ([]domain.Message, error) {
	c, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(apperr.CodeConvNotFound, "conversation not found")
		}
		return nil, apperr.Internal(err)
	}
	if !c.HasParticipant(actorID) {
		return nil, apperr.ErrNotParticipant
	}
	ms, err := s.conversations.ListMessages(ctx, conversationID, before, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return ms, nil
}

func (s *service) ListConversations(ctx context.Context, actorID string) ([]domain.Conversation, error) {
	cs, err := s.conversations.ListConversationsForUser(ctx, actorID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return cs, nil
}
