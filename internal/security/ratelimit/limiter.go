package ratelimit

import (
	"fmt"
	"sync"

	"github.com/yourorg/adminstate/internal/domain"
)

// Limiter is a per-identity sliding-window call counter. Buckets hold the
// timestamps of recent calls; expired entries are dropped on the next check
// for that identity and whole idle buckets are dropped by Sweep. The limiter
// is deliberately ephemeral: it is never persisted, so after a restart all
// windows count as expired.
type Limiter struct {
	mu      sync.Mutex
	buckets map[domain.Identity][]domain.Timestamp
	limit   int
	window  domain.Timestamp
}

// NewLimiter builds a limiter allowing limit calls per identity within the
// trailing window (nanoseconds).
func NewLimiter(limit int, window domain.Timestamp) *Limiter {
	return &Limiter{
		buckets: make(map[domain.Identity][]domain.Timestamp),
		limit:   limit,
		window:  window,
	}
}

// Allow checks and records one call at now. Entries older than the window are
// dropped first; if the remaining count has reached the limit the call is
// rejected and not recorded.
func (l *Limiter) Allow(id domain.Identity, now domain.Timestamp) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := startOfWindow(now, l.window)
	kept := l.buckets[id][:0]
	for _, t := range l.buckets[id] {
		if t >= windowStart {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.buckets[id] = kept
		return fmt.Errorf("%w: %d calls in window", domain.ErrRateLimited, len(kept))
	}

	l.buckets[id] = append(kept, now)
	return nil
}

// Sweep removes buckets with no entries left in the current window. There is
// no background scheduler in this system; callers invoke Sweep periodically
// off an external counter to bound memory.
func (l *Limiter) Sweep(now domain.Timestamp) {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := startOfWindow(now, l.window)
	for id, bucket := range l.buckets {
		live := false
		for _, t := range bucket {
			if t >= windowStart {
				live = true
				break
			}
		}
		if !live {
			delete(l.buckets, id)
		}
	}
}

// BucketCount reports how many identities currently hold a bucket.
func (l *Limiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func startOfWindow(now, window domain.Timestamp) domain.Timestamp {
	if now < window {
		return 0
	}
	return now - window
}
