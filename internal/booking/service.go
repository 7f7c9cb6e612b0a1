// Package booking implements the core of the booking kernel: the
// admission pipeline that turns a (item, renter, date range) request
// into a priced, persisted Booking, and the state machine that governs
// every transition afterward. Mirrors the teacher's per-feature
// Service/Repository split in internal/features/customer/booking, but
// the repository is now the shared store.BookingStore rather than a
// feature-private one, and the service owns pricing + state-machine
// legality instead of deferring total calculation to the caller.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lalan-be/internal/apperr"
	"lalan-be/internal/clock"
	"lalan-be/internal/domain"
	"lalan-be/internal/money"
	"lalan-be/internal/pricing"
	"lalan-be/internal/store"
)

// Service adalah kontrak untuk seluruh logika bisnis booking kernel:
// admission pipeline (Create) dan state machine (Transition). Tidak
// boleh ada detail HTTP atau SQL mentah di sini — itu tanggung jawab
// internal/httpapi dan internal/store/postgres.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*domain.Booking, error)
	Transition(ctx context.Context, bookingID string, actorID string, to domain.Status) (*domain.Booking, error)
	Get(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID string, asRenter, asOwner bool) ([]domain.Booking, error)
}

// approvalWindow adalah batas waktu PENDING -> APPROVED, per §8
// property 6 dan §9 (ditegakkan reaktif di sini, proaktif di
// internal/expirer).
const approvalWindow = 48 * time.Hour

// CreateRequest adalah input admission pipeline sebelum pricing
// dihitung.
type CreateRequest struct {
	ItemID    string
	RenterID  string
	StartDate time.Time
	EndDate   time.Time
}

type service struct {
	bookings store.BookingStore
	items    store.ItemStore
	clk      clock.Clock
}

func NewService(bookings store.BookingStore, items store.ItemStore, clk clock.Clock) Service {
	return &service{bookings: bookings, items: items, clk: clk}
}

// Create menjalankan admission pipeline penuh, per §4.3:
//
// Alur kerja:
//  1. Ambil Item, pastikan ada dan aktif
//  2. Tolak self-booking (renter == owner)
//  3. Validasi rentang tanggal (startDate < endDate, bukan di masa lalu)
//  4. Hitung pricing snapshot lewat internal/pricing
//  5. Persist lewat BookingStore.CreateBooking, yang memegang advisory
//     lock per item dan bergantung pada exclusion constraint GIST
//     sebagai otoritas final overlap
//
// Output error: apperr.ErrItemNotFound, apperr.ErrItemInactive,
// apperr.ErrSelfBooking, apperr.ErrInvalidRange, apperr.ErrBookingOverlap.
func (s *service) Create(ctx context.Context, req CreateRequest) (*domain.Booking, error) {
	now := s.clk.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	item, err := s.items.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrItemNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("booking: load item: %w", err))
	}
	if !item.IsActive {
		return nil, apperr.ErrItemInactive
	}
	if item.OwnerID == req.RenterID {
		return nil, apperr.ErrSelfBooking
	}

	if !req.StartDate.Before(req.EndDate) {
		return nil, apperr.ErrInvalidRange
	}
	if req.StartDate.Before(today) {
		return nil, apperr.Validation(apperr.CodeInvalidRange, "start date cannot be in the past")
	}

	pricePerDay, err := money.Parse(item.PricePerDayStr)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("booking: parse item price: %w", err))
	}
	deposit, err := money.Parse(item.DepositStr)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("booking: parse item deposit: %w", err))
	}

	snap, err := pricing.Compute(pricePerDay, req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidDateRange) {
			return nil, apperr.ErrInvalidRange
		}
		return nil, apperr.Internal(err)
	}

	b := &domain.Booking{
		ID:             uuid.NewString(),
		ItemID:         item.ID,
		RenterID:       req.RenterID,
		OwnerID:        item.OwnerID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TotalDays:      snap.TotalDays,
		BaseTotalStr:   money.String(snap.BaseTotal),
		DiscountRate:   snap.DiscountRate.String(),
		DiscountAmtStr: money.String(snap.DiscountAmount),
		FinalTotalStr:  money.String(snap.FinalTotal),
		DepositStr:     money.String(deposit),
		Status:         domain.StatusPending,
		CreatedAt:      now,
	}

	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		var overlap *store.OverlapError
		if errors.As(err, &overlap) {
			return nil, apperr.ErrBookingOverlap
		}
		log.Printf("booking.Create: store error for item %s: %v", req.ItemID, err)
		return nil, apperr.Internal(err)
	}
	return b, nil
}

// Transition menerapkan satu langkah pada state machine booking, per
// §4.3. Legalitas transisi itu sendiri datang murni dari
// domain.TransitionTable; service ini hanya menambahkan otorisasi
// aktor dan aturan waktu (expiry window untuk PENDING).
//
// Aturan otorisasi per edge (§4.3):
//   - PENDING -> APPROVED / REJECTED: hanya owner
//   - PENDING -> CANCELLED: renter atau owner
//   - APPROVED -> PAYMENT_PENDING: hanya owner
//   - APPROVED -> CANCELLED: renter atau owner
//   - PAYMENT_PENDING -> COMPLETED: hanya owner (konfirmasi penerimaan pembayaran)
//   - PAYMENT_PENDING -> CANCELLED: renter atau owner
func (s *service) Transition(ctx context.Context, bookingID, actorID string, to domain.Status) (*domain.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrBookingNotFound
		}
		return nil, apperr.Internal(err)
	}

	if actorID != b.RenterID && actorID != b.OwnerID {
		return nil, apperr.ErrNotAuthorized
	}

	edges, ok := domain.TransitionTable[b.Status]
	if !ok || !edges[to] {
		return nil, apperr.ErrInvalidTransition
	}

	if err := authorizeTransition(b, actorID, to); err != nil {
		return nil, err
	}

	now := s.clk.Now()

	// §8 property 6: PENDING -> APPROVED fails once the 48h approval
	// window has elapsed, measured from booking creation. This is a
	// reactive gate only — the Expirer proactively flips such bookings
	// to CANCELLED, but a PENDING row may still exist past the window
	// between scheduler runs; that is acceptable per §9.
	if b.Status == domain.StatusPending && to == domain.StatusApproved {
		if now.Sub(b.CreatedAt) >= approvalWindow {
			return nil, apperr.ErrBookingExpired
		}
	}
	updated, err := s.bookings.UpdateBookingStatus(ctx, bookingID, b.Status, to, now)
	if err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			return nil, apperr.StateConflict(apperr.CodeInvalidTransition, "booking status changed concurrently, reload and retry")
		}
		var overlap *store.OverlapError
		if errors.As(err, &overlap) {
			return nil, apperr.ErrBookingOverlap
		}
		return nil, apperr.Internal(err)
	}
	return updated, nil
}

func authorizeTransition(b *domain.Booking, actorID string, to domain.Status) error {
	isOwner := actorID == b.OwnerID
	isRenter := actorID == b.RenterID

	switch {
	case b.Status == domain.StatusPending && (to == domain.StatusApproved || to == domain.StatusRejected):
		if !isOwner {
			return apperr.ErrNotAuthorized
		}
	case b.Status == domain.StatusApproved && to == domain.StatusPaymentPending:
		if !isOwner {
			return apperr.ErrNotAuthorized
		}
	case b.Status == domain.StatusPaymentPending && to == domain.StatusCompleted:
		if !isOwner {
			return apperr.ErrNotAuthorized
		}
	case to == domain.StatusCancelled:
		if !isOwner && !isRenter {
			return apperr.ErrNotAuthorized
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrBookingNotFound
		}
		return nil, apperr.Internal(err)
	}
	return b, nil
}

func (s *service) ListForUser(ctx context.Context, userID string, asRenter, asOwner bool) ([]domain.Booking, error) {
	bs, err := s.bookings.ListBookingsForUser(ctx, userID, asRenter, asOwner)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return bs, nil
}
