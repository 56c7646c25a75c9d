// Package cmap provides a concurrent map keyed by string.
//
// Keys are spread over a power-of-two number of shards, each guarded by
// its own RWMutex, so unrelated keys rarely contend. reqguard uses it for
// the per-client rate limiter table, which sees one lookup per request.
//
// Usage:
//
//	m := cmap.New[*rate.Limiter]()
//	l, _ := m.GetOrCompute(ip, func() *rate.Limiter { return rate.NewLimiter(10, 10) })
//	m.DeleteIf(func(ip string, l *rate.Limiter) bool { return idle(l) })
//
// Range and DeleteIf visit shards one at a time, so they observe a view
// that may not be consistent across shards.
package cmap
