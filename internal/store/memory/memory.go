// Package memory is an in-process reference implementation of every
// store interface, used to unit test service logic without a
// database. It is NOT a substitute for the Postgres exclusion
// constraint of §4.2 — its overlap check is a plain loop under a
// mutex, which is correct for a single process but does not model
// what a real concurrent-transaction race against Postgres looks
// like. Integration tests that need that guarantee must run against
// internal/store/postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// Store bundles every store.XxxStore interface behind one in-memory
// backend, guarded by a single mutex — simplicity over throughput,
// since this only ever runs inside test processes.
type Store struct {
	mu sync.Mutex

	users         map[string]domain.User
	usersByEmail  map[string]string // email -> id
	refreshTokens map[string]domain.RefreshToken

	categories map[int]domain.Category
	nextCatID  int

	items  map[string]domain.Item
	images map[string][]domain.ItemImage

	bookings map[string]domain.Booking

	reviews map[string]domain.Review

	conversations map[string]domain.Conversation
	messages      map[string][]domain.Message
}

func New() *Store {
	return &Store{
		users:         map[string]domain.User{},
		usersByEmail:  map[string]string{},
		refreshTokens: map[string]domain.RefreshToken{},
		categories:    map[int]domain.Category{},
		nextCatID:     1,
		items:         map[string]domain.Item{},
		images:        map[string][]domain.ItemImage{},
		bookings:      map[string]domain.Booking{},
		reviews:       map[string]domain.Review{},
		conversations: map[string]domain.Conversation{},
		messages:      map[string][]domain.Message{},
	}
}

// memTx is a no-op transaction: every memory.Store method already
// locks the whole store, so Begin only exists to satisfy store.Tx for
// callers that need a handle to pass into ApplyRatingDelta.
type memTx struct{}

func (memTx) Commit() error   { return nil }
func (memTx) Rollback() error { return nil }

func (s *Store) Begin(ctx context.Context) (store.Tx, error) { return memTx{}, nil }

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByEmail[u.Email]; exists {
		return store.ErrDuplicateEmail
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	s.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range fields {
		sv, _ := v.(string)
		switch k {
		case "firstName":
			u.FirstName = sv
		case "lastName":
			u.LastName = sv
		case "phone":
			u.Phone = sv
		case "bio":
			u.Bio = sv
		case "location":
			u.Location = sv
		case "avatar":
			u.AvatarURL = sv
		}
	}
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return &u, nil
}

func (s *Store) ApplyRatingDelta(ctx context.Context, tx store.Tx, userID string, newAverage float64, newCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	avg := newAverage
	u.RatingAverage = &avg
	u.ReviewCount = newCount
	u.UpdatedAt = time.Now()
	s.users[userID] = u
	return nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, t *domain.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.CreatedAt = time.Now()
	s.refreshTokens[t.Token] = *t
	return nil
}

func (s *Store) GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.refreshTokens[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.refreshTokens[token]
	if !ok {
		return store.ErrNotFound
	}
	t.Revoked = true
	s.refreshTokens[token] = t
	return nil
}

// --- categories ---

func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return store.ErrDuplicateSlug
		}
	}
	c.ID = s.nextCatID
	s.nextCatID++
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id int) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Slug == slug {
			cc := c
			return &cc, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListChildren(ctx context.Context, parentID int) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Category
	for _, c := range s.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ReparentDescendants(ctx context.Context, oldParent, newParent *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.categories {
		if (c.ParentID == nil && oldParent == nil) || (c.ParentID != nil && oldParent != nil && *c.ParentID == *oldParent) {
			c.ParentID = newParent
			c.UpdatedAt = time.Now()
			s.categories[id] = c
		}
	}
	return nil
}

func (s *Store) NullifyItemCategory(ctx context.Context, categoryID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.items {
		if it.CategoryID != nil && *it.CategoryID == categoryID {
			it.CategoryID = nil
			it.UpdatedAt = time.Now()
			s.items[id] = it
		}
	}
	return nil
}
