package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"lalan-be/internal/domain"
	"lalan-be/internal/money"
	"lalan-be/internal/store"
)

// --- items ---

func (s *Store) CreateItem(ctx context.Context, it *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	it.CreatedAt, it.UpdatedAt = now, now
	s.items[it.ID] = *it
	return nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	it.Images = append([]domain.ItemImage(nil), s.images[id]...)
	return &it, nil
}

func (s *Store) UpdateItemFields(ctx context.Context, id string, fields map[string]any) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			it.Title, _ = v.(string)
		case "description":
			it.Description, _ = v.(string)
		case "category":
			if v == nil {
				it.CategoryID = nil
			} else if n, ok := v.(int); ok {
				it.CategoryID = &n
			}
		case "condition":
			if sv, ok := v.(string); ok {
				it.Condition = domain.Condition(sv)
			}
		case "pricePerDay":
			it.PricePerDayStr, _ = v.(string)
		case "depositAmount":
			it.DepositStr, _ = v.(string)
		case "location":
			it.Location, _ = v.(string)
		case "isActive":
			it.IsActive, _ = v.(bool)
		}
	}
	it.UpdatedAt = time.Now()
	s.items[id] = it
	out := it
	out.Images = append([]domain.ItemImage(nil), s.images[id]...)
	return &out, nil
}

// DeleteItem is a soft delete: see postgres.ItemStore.DeleteItem.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	it.IsActive = false
	it.UpdatedAt = time.Now()
	s.items[id] = it
	return nil
}

func (s *Store) ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []domain.Item
	for _, it := range s.items {
		if !it.IsActive {
			continue
		}
		if f.CategoryID != nil && (it.CategoryID == nil || *it.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(it.Location), strings.ToLower(f.Location)) {
			continue
		}
		if f.Text != "" {
			t := strings.ToLower(f.Text)
			if !strings.Contains(strings.ToLower(it.Title), t) && !strings.Contains(strings.ToLower(it.Description), t) {
				continue
			}
		}
		if f.MinPrice != nil {
			min, _ := money.Parse(*f.MinPrice)
			price, _ := money.Parse(it.PricePerDayStr)
			if price.LessThan(min) {
				continue
			}
		}
		if f.MaxPrice != nil {
			max, _ := money.Parse(*f.MaxPrice)
			price, _ := money.Parse(it.PricePerDayStr)
			if price.GreaterThan(max) {
				continue
			}
		}
		all = append(all, it)
	}

	switch f.OrderBy {
	case "price_asc":
		sort.Slice(all, func(i, j int) bool {
			a, _ := money.Parse(all[i].PricePerDayStr)
			b, _ := money.Parse(all[j].PricePerDayStr)
			return a.LessThan(b)
		})
	case "price_desc":
		sort.Slice(all, func(i, j int) bool {
			a, _ := money.Parse(all[i].PricePerDayStr)
			b, _ := money.Parse(all[j].PricePerDayStr)
			return a.GreaterThan(b)
		})
	default:
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	}

	total := len(all)
	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.Item{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Item
	for _, it := range s.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AddImage(ctx context.Context, img *domain.ItemImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img.IsCover {
		imgs := s.images[img.ItemID]
		for i := range imgs {
			imgs[i].IsCover = false
		}
	}
	s.images[img.ItemID] = append(s.images[img.ItemID], *img)
	return nil
}

func (s *Store) ListImages(ctx context.Context, itemID string) ([]domain.ItemImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ItemImage(nil), s.images[itemID]...), nil
}

func (s *Store) DeleteImage(ctx context.Context, itemID, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	imgs := s.images[itemID]
	for i, img := range imgs {
		if img.ID == imageID {
			s.images[itemID] = append(imgs[:i], imgs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) SetCoverImage(ctx context.Context, itemID, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	imgs := s.images[itemID]
	found := false
	for i := range imgs {
		if imgs[i].ID == imageID {
			imgs[i].IsCover = true
			found = true
		} else {
			imgs[i].IsCover = false
		}
	}
	if !found {
		return store.ErrNotFound
	}
	return nil
}

// --- bookings ---

// CreateBooking menegakkan invariant overlap §4.2 dengan memindai
// seluruh booking aktif pada item yang sama di bawah mutex tunggal
// milik Store. Ini cukup untuk unit test sekuensial tapi BUKAN
// pengganti exclusion constraint GIST Postgres pada concurrent
// transaction sungguhan — lihat komentar paket.
func (s *Store) CreateBooking(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bookings {
		if existing.ItemID != b.ItemID || !existing.Status.Active() {
			continue
		}
		if domain.Overlaps(b.StartDate, b.EndDate, existing.StartDate, existing.EndDate) {
			return &store.OverlapError{ItemID: b.ItemID}
		}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	s.bookings[b.ID] = *b
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id string, from, to domain.Status, now time.Time) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if b.Status != from {
		return nil, store.ErrStaleTransition
	}
	if to.Active() {
		for otherID, other := range s.bookings {
			if otherID == id || other.ItemID != b.ItemID || !other.Status.Active() {
				continue
			}
			if domain.Overlaps(b.StartDate, b.EndDate, other.StartDate, other.EndDate) {
				return nil, &store.OverlapError{ItemID: b.ItemID}
			}
		}
	}
	b.Status = to
	b.UpdatedAt = now
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) ListBookingsForUser(ctx context.Context, userID string, asRenter, asOwner bool) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if (asRenter && b.RenterID == userID) || (asOwner && b.OwnerID == userID) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListActiveBookingsForItem(ctx context.Context, itemID string) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.ItemID == itemID && b.Status.Active() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *Store) ListActiveBookingRangesForItems(ctx context.Context, itemIDs []string, from, to time.Time) (map[string][][2]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[string]bool{}
	for _, id := range itemIDs {
		want[id] = true
	}
	out := map[string][][2]time.Time{}
	for _, b := range s.bookings {
		if !want[b.ItemID] || !b.Status.Active() {
			continue
		}
		if b.EndDate.Before(from) || b.StartDate.After(to) {
			continue
		}
		out[b.ItemID] = append(out[b.ItemID], [2]time.Time{b.StartDate, b.EndDate})
	}
	return out, nil
}

func (s *Store) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.Status == domain.StatusPending && b.CreatedAt.Before(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

// TryExpirePending mirrors the postgres implementation's non-blocking
// semantics for single-process tests: since every memory.Store method
// already runs under the single store mutex, there is no real
// per-item contention to model, so the lock is always available and
// this degrades to a re-checked conditional cancel.
func (s *Store) TryExpirePending(ctx context.Context, bookingID, itemID string, cutoff, now time.Time) (locked, expired bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.Status != domain.StatusPending || !b.CreatedAt.Before(cutoff) {
		return true, false, nil
	}
	b.Status = domain.StatusCancelled
	b.UpdatedAt = now
	s.bookings[bookingID] = b
	return true, true, nil
}
