package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// ReviewStore adalah implementasi store.ReviewStore.
type ReviewStore struct {
	db *sqlx.DB
}

func NewReviewStore(db *sqlx.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// CreateReviewAndUpdateRating menginsert review dan menghitung ulang
// RatingAverage/ReviewCount milik reviewedUser dalam satu transaksi —
// inilah implementasi §8 property 7 (atomicity). Rata-rata dihitung
// ulang dari seluruh baris reviews setelah insert, bukan running
// average, supaya tidak ada akumulasi error pembulatan floating point.
func (s *ReviewStore) CreateReviewAndUpdateRating(ctx context.Context, r *domain.Review) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: CreateReviewAndUpdateRating begin: %w", err)
	}
	defer tx.Rollback()

	const insertQ = `
		INSERT INTO reviews (id, booking_id, reviewer_id, reviewed_user_id, direction, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	row := tx.QueryRowxContext(ctx, insertQ, r.ID, r.BookingID, r.ReviewerID, r.ReviewedID, r.Direction, r.Rating, r.Comment)
	if err := row.Scan(&r.CreatedAt); err != nil {
		log.Printf("CreateReviewAndUpdateRating: insert failed for booking %s: %v", r.BookingID, err)
		return classifyReviewInsertErr(err)
	}

	var avg float64
	var count int
	const aggQ = `SELECT coalesce(avg(rating), 0), count(*) FROM reviews WHERE reviewed_user_id = $1`
	if err := tx.QueryRowxContext(ctx, aggQ, r.ReviewedID).Scan(&avg, &count); err != nil {
		return fmt.Errorf("postgres: recompute rating: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET rating_average = $1, review_count = $2, updated_at = now() WHERE id = $3`,
		avg, count, r.ReviewedID,
	); err != nil {
		return fmt.Errorf("postgres: apply rating: %w", err)
	}

	return tx.Commit()
}

func (s *ReviewStore) GetReview(ctx context.Context, bookingID string, dir domain.Direction) (*domain.Review, error) {
	var r domain.Review
	err := s.db.GetContext(ctx, &r, `SELECT * FROM reviews WHERE booking_id = $1 AND direction = $2`, bookingID, dir)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetReview: %w", err)
	}
	return &r, nil
}

func (s *ReviewStore) ListReviewsForUser(ctx context.Context, userID string) ([]domain.Review, error) {
	var rs []domain.Review
	err := s.db.SelectContext(ctx, &rs, `SELECT * FROM reviews WHERE reviewed_user_id = $1 ORDER BY created_at DESC`, userID)
	return rs, err
}

func (s *ReviewStore) ListReviewsForBooking(ctx context.Context, bookingID string) ([]domain.Review, error) {
	var rs []domain.Review
	err := s.db.SelectContext(ctx, &rs, `SELECT * FROM reviews WHERE booking_id = $1`, bookingID)
	return rs, err
}
