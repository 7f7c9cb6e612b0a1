package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// --- reviews ---

func (s *Store) CreateReviewAndUpdateRating(ctx context.Context, r *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reviews {
		if existing.BookingID == r.BookingID && existing.Direction == r.Direction {
			return store.ErrDuplicateReview
		}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now()
	s.reviews[r.ID] = *r

	var sum, count int
	for _, rv := range s.reviews {
		if rv.ReviewedID == r.ReviewedID {
			sum += rv.Rating
			count++
		}
	}
	avg := float64(sum) / float64(count)
	u, ok := s.users[r.ReviewedID]
	if ok {
		u.RatingAverage = &avg
		u.ReviewCount = count
		u.UpdatedAt = time.Now()
		s.users[r.ReviewedID] = u
	}
	return nil
}

func (s *Store) GetReview(ctx context.Context, bookingID string, dir domain.Direction) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.BookingID == bookingID && r.Direction == dir {
			rr := r
			return &rr, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListReviewsForUser(ctx context.Context, userID string) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Review
	for _, r := range s.reviews {
		if r.ReviewedID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListReviewsForBooking(ctx context.Context, bookingID string) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Review
	for _, r := range s.reviews {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- conversations ---

func (s *Store) GetOrCreateConversation(ctx context.Context, p1, p2, bookingID string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		bid := domain.GeneralConversationSentinel
		if c.BookingID != nil {
			bid = *c.BookingID
		}
		if c.P1 == p1 && c.P2 == p2 && bid == bookingID {
			cc := c
			return &cc, nil
		}
	}

	c := domain.Conversation{ID: uuid.NewString(), P1: p1, P2: p2}
	if bookingID != domain.GeneralConversationSentinel {
		bid := bookingID
		c.BookingID = &bid
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.conversations[c.ID] = c
	return &c, nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Conversation
	for _, c := range s.conversations {
		if c.P1 == userID || c.P2 == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Store) AppendMessage(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[m.ConversationID]
	if !ok {
		return store.ErrNotFound
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now()
	s.messages[m.ConversationID] = append(s.messages[m.ConversationID], *m)
	c.UpdatedAt = m.CreatedAt
	s.conversations[m.ConversationID] = c
	return nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string, before time.Time, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	all := s.messages[conversationID]
	var filtered []domain.Message
	for _, m := range all {
		if m.CreatedAt.Before(before) {
			filtered = append(filtered, m)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID < filtered[j].ID
		}
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	if len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered, nil
}

func (s *Store) MarkRead(ctx context.Context, conversationID, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[conversationID]
	for i := range msgs {
		if msgs[i].SenderID != readerID {
			msgs[i].IsRead = true
		}
	}
	return nil
}

func (s *Store) UnreadCount(ctx context.Context, conversationID, readerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages[conversationID] {
		if m.SenderID != readerID && !m.IsRead {
			n++
		}
	}
	return n, nil
}
