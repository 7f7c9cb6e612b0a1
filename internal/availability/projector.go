// Package availability implements the Availability Projector of §4.4:
// a pure, read-only projection of an item's active bookings onto a
// date window, for client-side calendar rendering. Backed by a Redis
// read-through cache that is a pure optimization — every code path
// still works, just slower, if Redis is absent or a miss occurs.
package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// Slot is one projected range in the calendar, per §4.4's output shape.
type Slot struct {
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    domain.Status `json:"status"`
}

// ttl is deliberately short: availability changes whenever a booking
// is created or transitioned, and a stale calendar is a usability bug,
// not a correctness one, but 5s keeps staleness imperceptible while
// still absorbing read bursts on popular items.
const ttl = 5 * time.Second

// Projector computes and caches availability for a single item.
type Projector struct {
	bookings store.BookingStore
	rdb      *redis.Client // nil is valid: cache disabled, always falls through to the Store
}

func NewProjector(bookings store.BookingStore, rdb *redis.Client) *Projector {
	return &Projector{bookings: bookings, rdb: rdb}
}

// Project returns the ordered sequence of active booking slots for
// itemID intersecting [from, to]. Pure with respect to storage: never
// writes a booking, only reads.
func (p *Projector) Project(ctx context.Context, itemID string, from, to time.Time) ([]Slot, error) {
	key := cacheKey(itemID, p.version(ctx, itemID), from, to)

	if p.rdb != nil {
		if slots, ok := p.readCache(ctx, key); ok {
			return slots, nil
		}
	}

	bookings, err := p.bookings.ListActiveBookingsForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("availability: list bookings: %w", err)
	}

	slots := make([]Slot, 0, len(bookings))
	for _, b := range bookings {
		if !domain.Overlaps(b.StartDate, b.EndDate, from, to) {
			continue
		}
		slots = append(slots, Slot{StartDate: b.StartDate, EndDate: b.EndDate, Status: b.Status})
	}

	if p.rdb != nil {
		p.writeCache(ctx, key, slots)
	}
	return slots, nil
}

func (p *Projector) readCache(ctx context.Context, key string) ([]Slot, bool) {
	raw, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var slots []Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (p *Projector) writeCache(ctx context.Context, key string, slots []Slot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	// best-effort: a failed cache write never fails the request, it
	// only means the next read recomputes from the Store.
	_ = p.rdb.Set(ctx, key, raw, ttl).Err()
}

// Invalidate bumps the per-item version counter in Redis so every
// outstanding cache key for this item (across any from/to window)
// stops matching on the next read, without a pattern-delete scan.
// Callers invoke this after any Store write that changes the item's
// active bookings (create, transition).
func (p *Projector) Invalidate(ctx context.Context, itemID string) {
	if p.rdb == nil {
		return
	}
	_ = p.rdb.Incr(ctx, versionKey(itemID)).Err()
}

func (p *Projector) version(ctx context.Context, itemID string) int64 {
	if p.rdb == nil {
		return 0
	}
	v, err := p.rdb.Get(ctx, versionKey(itemID)).Int64()
	if err != nil {
		return 0
	}
	return v
}

func versionKey(itemID string) string {
	return "availability:v:" + itemID
}

// cacheKey embeds the per-item version so Invalidate's Incr makes
// every previously cached key for this item unreachable immediately,
// instead of requiring a scan-and-delete over unknown from/to windows.
func cacheKey(itemID string, version int64, from, to time.Time) string {
	return fmt.Sprintf("availability:%s:v%d:%s:%s", itemID, version, from.Format("2006-01-02"), to.Format("2006-01-02"))
}
