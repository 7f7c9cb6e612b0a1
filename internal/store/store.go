// Package store defines the persistence contracts consumed by every
// service package (internal/booking, internal/catalog, internal/auth,
// ...). Each interface mirrors the teacher's per-feature Repository
// split, but the underlying tables are shared across the unified
// domain model instead of one repository per role.
package store

import (
	"context"
	"time"

	"lalan-be/internal/domain"
)

// Tx is an in-flight transaction handle, opaque to callers. Concrete
// stores type-assert it back to their own transaction type.
type Tx interface {
	Commit() error
	Rollback() error
}

// UserStore persists User and RefreshToken rows.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, id string, fields map[string]any) (*domain.User, error)
	ApplyRatingDelta(ctx context.Context, tx Tx, userID string, newAverage float64, newCount int) error

	CreateRefreshToken(ctx context.Context, t *domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error

	Begin(ctx context.Context) (Tx, error)
}

// CategoryStore persists the shallow category tree.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id int) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListChildren(ctx context.Context, parentID int) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int) error
	ReparentDescendants(ctx context.Context, oldParent, newParent *int) error
	NullifyItemCategory(ctx context.Context, categoryID int) error
}

// ItemStore persists items and their image collections.
type ItemStore interface {
	CreateItem(ctx context.Context, it *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	UpdateItemFields(ctx context.Context, id string, fields map[string]any) (*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error)
	ListItemsByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)

	AddImage(ctx context.Context, img *domain.ItemImage) error
	ListImages(ctx context.Context, itemID string) ([]domain.ItemImage, error)
	DeleteImage(ctx context.Context, itemID, imageID string) error
	SetCoverImage(ctx context.Context, itemID, imageID string) error
}

// OverlapError is returned by CreateBooking when the GIST exclusion
// constraint rejects an overlapping active booking for the item — the
// storage-layer manifestation of §4.2's overlap invariant.
type OverlapError struct {
	ItemID string
}

func (e *OverlapError) Error() string {
	return "store: booking date range overlaps an existing active booking for item " + e.ItemID
}

// BookingStore persists bookings. CreateBooking must run inside a
// transaction that holds a pg_advisory_xact_lock keyed on the item,
// per §4.2 — that locking is the store's responsibility, not the
// caller's.
type BookingStore interface {
	CreateBooking(ctx context.Context, b *domain.Booking) error
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, from, to domain.Status, now time.Time) (*domain.Booking, error)
	ListBookingsForUser(ctx context.Context, userID string, asRenter, asOwner bool) ([]domain.Booking, error)
	ListActiveBookingsForItem(ctx context.Context, itemID string) ([]domain.Booking, error)
	ListActiveBookingRangesForItems(ctx context.Context, itemIDs []string, from, to time.Time) (map[string][][2]time.Time, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)

	// TryExpirePending attempts to cancel a single PENDING booking whose
	// approval window has elapsed, per the Scheduled Expirer's
	// non-blocking scan rule (§4.3): it acquires the per-item
	// serialization primitive without waiting, and if some other
	// transaction already holds it, returns locked=false so the caller
	// skips this booking instead of stalling the sweep on it.
	TryExpirePending(ctx context.Context, bookingID, itemID string, cutoff, now time.Time) (locked, expired bool, err error)
}

// ReviewStore persists reviews and the denormalized rating update that
// must commit atomically with them.
type ReviewStore interface {
	// CreateReviewAndUpdateRating inserts the review row and updates the
	// reviewed user's RatingAverage/ReviewCount in the same transaction,
	// satisfying §8 property 7 (atomic rating update). Returns
	// ErrDuplicateReview if the (booking_id, direction) unique
	// constraint fires.
	CreateReviewAndUpdateRating(ctx context.Context, r *domain.Review) error
	GetReview(ctx context.Context, bookingID string, dir domain.Direction) (*domain.Review, error)
	ListReviewsForUser(ctx context.Context, userID string) ([]domain.Review, error)
	ListReviewsForBooking(ctx context.Context, bookingID string) ([]domain.Review, error)
}

// ConversationStore persists conversations and their messages.
type ConversationStore interface {
	// GetOrCreateConversation returns the existing conversation for the
	// normalized (p1, p2, bookingID) triple or creates it, atomically.
	// bookingID is the real booking UUID for a booking-scoped thread, or
	// the sentinel domain.GeneralConversationSentinel for a general one
	// — see §3's NULL-uniqueness workaround.
	GetOrCreateConversation(ctx context.Context, p1, p2 string, bookingID string) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error)

	AppendMessage(ctx context.Context, m *domain.Message) error
	ListMessages(ctx context.Context, conversationID string, before time.Time, limit int) ([]domain.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
	UnreadCount(ctx context.Context, conversationID, readerID string) (int, error)
}
