package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/reqguard/pkg/cmap"
)

// DefaultLimiterIdle is how long a client bucket may go unused before
// Sweep forgets it.
const DefaultLimiterIdle = 5 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// ClientLimiter hands out one token bucket per client key (usually the
// client IP). A limit of zero or less disables limiting.
type ClientLimiter struct {
	buckets *cmap.Map[*clientBucket]
	perSec  int
	now     func() time.Time
}

// NewClientLimiter creates a ClientLimiter allowing perSecond requests per
// second per key, with a burst of the same size.
func NewClientLimiter(perSecond int) *ClientLimiter {
	return &ClientLimiter{
		buckets: cmap.New[*clientBucket](),
		perSec:  perSecond,
		now:     time.Now,
	}
}

// Enabled reports whether the limiter restricts anything.
func (r *ClientLimiter) Enabled() bool {
	return r != nil && r.perSec > 0
}

// Allow reports whether one more request from key may proceed now.
func (r *ClientLimiter) Allow(key string) bool {
	if !r.Enabled() {
		return true
	}

	b, _ := r.buckets.GetOrCompute(key, func() *clientBucket {
		return &clientBucket{limiter: rate.NewLimiter(rate.Limit(r.perSec), r.perSec)}
	})
	now := r.now()
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1)
}

// Sweep forgets buckets unused for longer than idle and returns how many
// were removed. A forgotten client starts again with a full burst.
func (r *ClientLimiter) Sweep(idle time.Duration) int {
	if r == nil {
		return 0
	}
	cutoff := r.now().Add(-idle).UnixNano()
	return r.buckets.DeleteIf(func(_ string, b *clientBucket) bool {
		return b.lastSeen.Load() < cutoff
	})
}

// Run sweeps idle buckets every interval until ctx is done.
func (r *ClientLimiter) Run(ctx context.Context, interval, idle time.Duration) {
	if !r.Enabled() {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep(idle)
		case <-ctx.Done():
			return
		}
	}
}

// Len returns the number of tracked keys.
func (r *ClientLimiter) Len() int {
	return r.buckets.Count()
}

// Clear forgets all buckets.
func (r *ClientLimiter) Clear() {
	r.buckets.Clear()
}
