// Package expirer implements the Scheduled Expirer: the proactive half
// of the 48-hour approval window (§8 property 6, §9). It finds PENDING
// bookings whose creation time is older than the configured threshold
// and transitions them to CANCELLED. This is a convenience, not a
// correctness boundary — the Booking Service's reactive gate on
// PENDING -> APPROVED is what the invariant actually depends on.
package expirer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"lalan-be/internal/clock"
	"lalan-be/internal/store"
)

// Result summarizes one Run, for both the cron-driven in-process loop
// and the cmd/expire-bookings CLI to report.
type Result struct {
	Scanned   int
	Expired   int
	Skipped   int // candidates whose item lock was held by another transaction
	DryRun    bool
	Threshold time.Duration
}

// Expirer runs the expiration sweep. Threshold defaults to 48h if zero.
type Expirer struct {
	bookings  store.BookingStore
	clk       clock.Clock
	Threshold time.Duration
}

func New(bookings store.BookingStore, clk clock.Clock, threshold time.Duration) *Expirer {
	if threshold <= 0 {
		threshold = 48 * time.Hour
	}
	return &Expirer{bookings: bookings, clk: clk, Threshold: threshold}
}

// Run executes one sweep. In dry-run mode it reports what would be
// expired without writing anything — used by `cmd/expire-bookings
// --dry-run`. Each candidate is processed with TryExpirePending, which
// skips (rather than blocks on) any item whose serialization
// primitive another in-flight Create/Transition already holds — see
// §4.3's non-blocking scan rule.
func (e *Expirer) Run(ctx context.Context, dryRun bool) (Result, error) {
	now := e.clk.Now()
	cutoff := now.Add(-e.Threshold)

	candidates, err := e.bookings.ListExpiredPending(ctx, cutoff)
	if err != nil {
		return Result{}, fmt.Errorf("expirer: list expired pending: %w", err)
	}

	res := Result{Scanned: len(candidates), DryRun: dryRun, Threshold: e.Threshold}
	for _, b := range candidates {
		if dryRun {
			log.Printf("expirer: dry-run would expire booking %s (created %s)", b.ID, b.CreatedAt)
			res.Expired++
			continue
		}
		locked, expired, err := e.bookings.TryExpirePending(ctx, b.ID, b.ItemID, cutoff, now)
		if err != nil {
			log.Printf("expirer: failed to expire booking %s: %v", b.ID, err)
			continue
		}
		if !locked {
			res.Skipped++
			continue
		}
		if expired {
			res.Expired++
		}
	}
	return res, nil
}

// Scheduler wraps robfig/cron/v3 to run Run() on a fixed schedule
// inside the server process, alongside the CLI's one-shot invocation
// of the same Run method.
type Scheduler struct {
	cron *cron.Cron
	exp  *Expirer
}

// NewScheduler builds a cron-driven scheduler. spec defaults to every
// 10 minutes, frequent enough that the "may exist past 48h between
// runs" acceptance in §9 stays a narrow window in practice.
func NewScheduler(exp *Expirer) *Scheduler {
	return &Scheduler{cron: cron.New(), exp: exp}
}

// Start registers the sweep on spec and begins running it in the
// background. Errors from each run are logged, never panicked.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = "@every 10m"
	}
	_, err := s.cron.AddFunc(spec, func() {
		res, err := s.exp.Run(ctx, false)
		if err != nil {
			log.Printf("expirer: scheduled run failed: %v", err)
			return
		}
		if res.Expired > 0 {
			log.Printf("expirer: scheduled run expired %d/%d pending bookings", res.Expired, res.Scanned)
		}
	})
	if err != nil {
		return fmt.Errorf("expirer: schedule: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
