package integration

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncWindow
// ---------------------------------------------------------------------------

// SyncWindow bounds a sync pass by Shopify order creation time, both ends inclusive.
// A nil *SyncWindow means "all orders".
type SyncWindow struct {
	Start time.Time
	End   time.Time
}

// NewSyncWindow creates a window, rejecting empty bounds and End before Start
func NewSyncWindow(start, end time.Time) (*SyncWindow, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: both bounds are required", ErrInvalidWindow)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return &SyncWindow{Start: start, End: end}, nil
}

// TrailingWindow returns [end-d, end]
func TrailingWindow(end time.Time, d time.Duration) SyncWindow {
	return SyncWindow{Start: end.Add(-d), End: end}
}

// RecentWindow returns the window covering the last n days up to now.
// Non-positive n falls back to 30 days.
func RecentWindow(now time.Time, days int) SyncWindow {
	if days <= 0 {
		days = DefaultRecentDays
	}
	return SyncWindow{Start: now.AddDate(0, 0, -days), End: now}
}

// DefaultRecentDays is the look-back used by recent-order fetches
const DefaultRecentDays = 30

// ---------------------------------------------------------------------------
// Sync results
// ---------------------------------------------------------------------------

// SyncResult summarizes one credential's pass
type SyncResult struct {
	CredentialID uuid.UUID
	MerchantID   uuid.UUID
	// CreatedCount counts orders inserted by this pass; pre-existing orders are skipped
	CreatedCount  int
	CreatedOrders []*Order
	SkippedCount  int
	// FailedItemCount counts line items whose insert failed; their orders stay stored
	FailedItemCount int
	ItemErrors      []error
	Pages           int
	StartedAt       time.Time
	CompletedAt     time.Time
}

// Duration returns how long the pass took
func (r *SyncResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// CredentialSyncOutcome pairs a credential with the result or error of its pass
type CredentialSyncOutcome struct {
	CredentialID uuid.UUID
	MerchantID   uuid.UUID
	Result       *SyncResult
	Err          error
}

// SyncBatchResult summarizes a pass over every active credential
type SyncBatchResult struct {
	Window       *SyncWindow
	Outcomes     []CredentialSyncOutcome
	CreatedCount int
	StartedAt    time.Time
	CompletedAt  time.Time
}

// Succeeded returns the number of credentials synced without error
func (b *SyncBatchResult) Succeeded() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of credentials whose pass returned an error
func (b *SyncBatchResult) Failed() int {
	return len(b.Outcomes) - b.Succeeded()
}
