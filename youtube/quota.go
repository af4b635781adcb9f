package youtube

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultDailyQuota is the Data API's default daily allowance.
	DefaultDailyQuota = 10000
	// unitsPerCall is the cost of channels.list, playlistItems.list and videos.list.
	unitsPerCall = 1
)

// QuotaMeter estimates Data API quota units spent. It only observes; it never
// blocks a call.
type QuotaMeter struct {
	mu     sync.Mutex
	budget int
	used   int
	warned bool
}

// NewQuotaMeter returns a meter that warns once usage passes budget.
func NewQuotaMeter(budget int) *QuotaMeter {
	return &QuotaMeter{budget: budget}
}

// Spend records units consumed by op.
func (q *QuotaMeter) Spend(op string, units int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.used += units
	log.Debug().Str("op", op).Int("used", q.used).Msg("youtube: quota usage")

	if q.budget > 0 && q.used > q.budget && !q.warned {
		q.warned = true
		log.Warn().Int("used", q.used).Int("budget", q.budget).Msg("youtube: estimated quota exhausted")
	}
}

// Used returns the units spent so far.
func (q *QuotaMeter) Used() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}
