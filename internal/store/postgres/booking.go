package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// BookingStore adalah implementasi store.BookingStore. CreateBooking
// dan UpdateBookingStatus sama-sama berjalan dalam transaksi yang
// memegang pg_advisory_xact_lock pada item_id, menjadikan exclusion
// constraint GIST dan lock ini dua lapis independen dari invariant
// overlap §4.2 — yang pertama adalah otoritas final, yang kedua
// memastikan check-then-act di layer service juga serial.
type BookingStore struct {
	db *sqlx.DB
}

func NewBookingStore(db *sqlx.DB) *BookingStore {
	return &BookingStore{db: db}
}

func (s *BookingStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: CreateBooking begin: %w", err)
	}
	defer tx.Rollback()

	if err := lockItemForBooking(ctx, tx, b.ItemID); err != nil {
		return err
	}

	const q = `
		INSERT INTO bookings (
			id, item_id, renter_id, owner_id, start_date, end_date, total_days,
			base_total, discount_rate, discount_amount, final_total, deposit, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	row := tx.QueryRowxContext(ctx, q,
		b.ID, b.ItemID, b.RenterID, b.OwnerID, b.StartDate, b.EndDate, b.TotalDays,
		b.BaseTotalStr, b.DiscountRate, b.DiscountAmtStr, b.FinalTotalStr, b.DepositStr, b.Status,
	)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		log.Printf("CreateBooking: insert failed for item %s: %v", b.ItemID, err)
		return classifyBookingInsertErr(err, b.ItemID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: CreateBooking commit: %w", err)
	}
	return nil
}

func (s *BookingStore) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := s.db.GetContext(ctx, &b, `SELECT id, item_id, renter_id, owner_id, start_date, end_date, total_days,
		base_total, discount_rate, discount_amount, final_total, deposit, status, created_at, updated_at
		FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetBooking: %w", err)
	}
	return &b, nil
}

// UpdateBookingStatus menerapkan transisi status dengan optimistic
// check pada kolom status lama (WHERE status = from), menegakkan
// bahwa pemanggil sudah membaca status terkini sebelum menulis —
// mencegah lost update bila dua aktor mencoba transisi bersamaan.
func (s *BookingStore) UpdateBookingStatus(ctx context.Context, id string, from, to domain.Status, now time.Time) (*domain.Booking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: UpdateBookingStatus begin: %w", err)
	}
	defer tx.Rollback()

	var itemID string
	if err := tx.GetContext(ctx, &itemID, `SELECT item_id FROM bookings WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: UpdateBookingStatus lookup: %w", err)
	}
	if err := lockItemForBooking(ctx, tx, itemID); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, now, id, from,
	)
	if err != nil {
		var pe *pq.Error
		if errors.As(err, &pe) && string(pe.Code) == pqExclusionViolation {
			return nil, &store.OverlapError{ItemID: itemID}
		}
		return nil, fmt.Errorf("postgres: UpdateBookingStatus: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, store.ErrStaleTransition
	}

	var b domain.Booking
	if err := tx.GetContext(ctx, &b, `SELECT id, item_id, renter_id, owner_id, start_date, end_date, total_days,
		base_total, discount_rate, discount_amount, final_total, deposit, status, created_at, updated_at
		FROM bookings WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("postgres: UpdateBookingStatus reload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: UpdateBookingStatus commit: %w", err)
	}
	return &b, nil
}

func (s *BookingStore) ListBookingsForUser(ctx context.Context, userID string, asRenter, asOwner bool) ([]domain.Booking, error) {
	var where string
	switch {
	case asRenter && asOwner:
		where = "renter_id = $1 OR owner_id = $1"
	case asRenter:
		where = "renter_id = $1"
	case asOwner:
		where = "owner_id = $1"
	default:
		return nil, nil
	}
	var bs []domain.Booking
	q := fmt.Sprintf(`SELECT id, item_id, renter_id, owner_id, start_date, end_date, total_days,
		base_total, discount_rate, discount_amount, final_total, deposit, status, created_at, updated_at
		FROM bookings WHERE %s ORDER BY created_at DESC`, where)
	err := s.db.SelectContext(ctx, &bs, q, userID)
	return bs, err
}

func (s *BookingStore) ListActiveBookingsForItem(ctx context.Context, itemID string) ([]domain.Booking, error) {
	var bs []domain.Booking
	const q = `SELECT id, item_id, renter_id, owner_id, start_date, end_date, total_days,
		base_total, discount_rate, discount_amount, final_total, deposit, status, created_at, updated_at
		FROM bookings
		WHERE item_id = $1 AND status IN ('PENDING', 'APPROVED', 'PAYMENT_PENDING')
		ORDER BY start_date`
	err := s.db.SelectContext(ctx, &bs, q, itemID)
	return bs, err
}

// ListActiveBookingRangesForItems mengambil rentang booking aktif
// untuk sekumpulan item dalam satu query, dipakai oleh
// internal/availability untuk proyeksi batch tanpa N+1.
func (s *BookingStore) ListActiveBookingRangesForItems(ctx context.Context, itemIDs []string, from, to time.Time) (map[string][][2]time.Time, error) {
	if len(itemIDs) == 0 {
		return map[string][][2]time.Time{}, nil
	}
	const q = `
		SELECT item_id, start_date, end_date FROM bookings
		WHERE item_id = ANY($1) AND status IN ('PENDING', 'APPROVED', 'PAYMENT_PENDING')
		AND start_date <= $3 AND end_date >= $2
		ORDER BY item_id, start_date
	`
	rows, err := s.db.QueryxContext(ctx, q, pq.Array(itemIDs), from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: ListActiveBookingRangesForItems: %w", err)
	}
	defer rows.Close()

	out := map[string][][2]time.Time{}
	for rows.Next() {
		var itemID string
		var start, end time.Time
		if err := rows.Scan(&itemID, &start, &end); err != nil {
			return nil, err
		}
		out[itemID] = append(out[itemID], [2]time.Time{start, end})
	}
	return out, rows.Err()
}

func (s *BookingStore) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	var bs []domain.Booking
	const q = `SELECT id, item_id, renter_id, owner_id, start_date, end_date, total_days,
		base_total, discount_rate, discount_amount, final_total, deposit, status, created_at, updated_at
		FROM bookings WHERE status = 'PENDING' AND created_at < $1`
	err := s.db.SelectContext(ctx, &bs, q, cutoff)
	return bs, err
}

// TryExpirePending implements the Expirer's non-blocking scan rule of
// §4.3: pg_try_advisory_xact_lock never waits, so a booking whose item
// another transaction is concurrently creating/transitioning is
// skipped this sweep (locked=false) rather than stalling the whole
// scan behind it. The PENDING/cutoff check is re-verified under the
// lock to stay correct against whatever happened since ListExpiredPending
// read its snapshot.
func (s *BookingStore) TryExpirePending(ctx context.Context, bookingID, itemID string, cutoff, now time.Time) (locked, expired bool, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, false, fmt.Errorf("postgres: TryExpirePending begin: %w", err)
	}
	defer tx.Rollback()

	ok, err := tryLockItemForBooking(ctx, tx, itemID)
	if err != nil {
		return false, false, err
	}
	if !ok {
		return false, false, nil
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'CANCELLED', updated_at = $1
		 WHERE id = $2 AND status = 'PENDING' AND created_at < $3`,
		now, bookingID, cutoff,
	)
	if err != nil {
		return true, false, fmt.Errorf("postgres: TryExpirePending update: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return true, false, nil
	}
	if err := tx.Commit(); err != nil {
		return true, false, fmt.Errorf("postgres: TryExpirePending commit: %w", err)
	}
	return true, true, nil
}
