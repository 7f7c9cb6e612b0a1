// Package review implements the post-rental review pipeline of §4.5:
// one review per (booking, direction), with the reviewed user's
// denormalized rating recomputed in the same transaction as the
// insert.
package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"lalan-be/internal/apperr"
	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

type Service interface {
	Submit(ctx context.Context, reviewerID, bookingID string, rating int, comment string) (*domain.Review, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Review, error)
}

type service struct {
	reviews  store.ReviewStore
	bookings store.BookingStore
}

func NewService(reviews store.ReviewStore, bookings store.BookingStore) Service {
	return &service{reviews: reviews, bookings: bookings}
}

// Submit menjalankan alur §4.5:
//  1. Load booking, wajib COMPLETED
//  2. Tentukan direction dari peran reviewer pada booking tsb
//  3. Validasi rating [1,5] dan comment minimal 10 karakter
//  4. Insert review + rekalkulasi rating dalam satu transaksi (lihat
//     store.ReviewStore.CreateReviewAndUpdateRating)
func (s *service) Submit(ctx context.Context, reviewerID, bookingID string, rating int, comment string) (*domain.Review, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrBookingNotFound
		}
		return nil, apperr.Internal(err)
	}
	if b.Status != domain.StatusCompleted {
		return nil, apperr.ErrReviewNotEligible
	}

	var direction domain.Direction
	var reviewedID string
	switch reviewerID {
	case b.RenterID:
		direction = domain.DirectionRenterToOwner
		reviewedID = b.OwnerID
	case b.OwnerID:
		direction = domain.DirectionOwnerToRenter
		reviewedID = b.RenterID
	default:
		return nil, apperr.ErrNotAuthorized
	}

	if rating < 1 || rating > 5 {
		return nil, apperr.Validation(apperr.CodeInvalidField, "rating must be between 1 and 5").WithField("rating", "out of range")
	}
	if len(strings.TrimSpace(comment)) < 10 {
		return nil, apperr.Validation(apperr.CodeInvalidField, "comment must be at least 10 characters").WithField("comment", "too short")
	}

	r := &domain.Review{
		ID:         uuid.NewString(),
		BookingID:  bookingID,
		ReviewerID: reviewerID,
		ReviewedID: reviewedID,
		Direction:  direction,
		Rating:     rating,
		Comment:    comment,
	}

	if err := s.reviews.CreateReviewAndUpdateRating(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicateReview) {
			return nil, apperr.ErrDuplicateReview
		}
		return nil, apperr.Internal(err)
	}
	return r, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.Review, error) {
	rs, err := s.reviews.ListReviewsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rs, nil
}
