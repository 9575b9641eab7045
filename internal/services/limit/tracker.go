package limit

import (
	"fmt"
	"time"

	"cardvault/internal/models"
)

// Tracker holds the window arithmetic for one limit row. All methods
// mutate rows in memory only; persisting the mutated row is the caller's
// job, inside whatever transaction it runs.
//
// The clock is injectable so period boundaries can be simulated in tests
// instead of waited for.
type Tracker struct {
	now func() time.Time
}

func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// CheckAndReset lazily zeroes the accumulator when the row's window has
// rolled over since its last counted transaction: a daily limit resets
// when the last transaction was not today, a monthly one when it was not
// this month. A row idle for N periods resets exactly once, on first
// touch. This is deliberately explicit rather than hidden in a getter so
// its ordering relative to the scheduler's eager reset stays observable.
func (t *Tracker) CheckAndReset(l *models.Limit) {
	now := t.now()
	stale := false
	switch l.LimitType {
	case models.LimitDaily:
		stale = l.DateLastTransaction == nil || !sameDay(*l.DateLastTransaction, now)
	case models.LimitMonthly:
		stale = l.DateLastTransaction == nil || !sameMonth(*l.DateLastTransaction, now)
	}
	if stale {
		l.CurrentExpenses = 0
		l.DateLastTransaction = nil
	}
}

// CanTransaction is the pure capacity check: after a lazy reset it fails
// when the accrual would push the accumulator past the ceiling. It never
// accrues, so both the daily and the monthly window can be checked before
// either is mutated.
func (t *Tracker) CanTransaction(l *models.Limit, amount int64) error {
	t.CheckAndReset(l)
	if l.CurrentExpenses+amount > l.LimitAmount {
		return fmt.Errorf("%w: %s %s", ErrExceedingLimit, l.LimitType, l.TransactionType)
	}
	return nil
}

// RegisterTransaction accrues a successful transaction against the limit
// and stamps the date of last counted spend.
func (t *Tracker) RegisterTransaction(l *models.Limit, amount int64) {
	t.CheckAndReset(l)
	l.CurrentExpenses += amount
	today := truncateToDay(t.now())
	l.DateLastTransaction = &today
}

// StagePendingChange records a new ceiling to take effect at the next
// period boundary. The live ceiling never moves: spend counted under the
// old ceiling stays legal, and a raise cannot bypass a rejection already
// issued this period. Staging again before the boundary overwrites the
// previous pending value.
func (t *Tracker) StagePendingChange(l *models.Limit, newCeiling int64) {
	l.PendingLimitAmount = &newCeiling
	l.HasPendingUpdate = true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

func truncateToDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
