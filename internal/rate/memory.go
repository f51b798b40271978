package rate

import (
	"context"
	"math"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	xrate "golang.org/x/time/rate"
)

// MemoryLimiter: un token bucket por clave, con max tokens que se reponen a
// lo largo de window. Los buckets inactivos expiran solos.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets *gocache.Cache
	max     int
	every   time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	return &MemoryLimiter{
		buckets: gocache.New(2*window, window),
		max:     max,
		every:   window / time.Duration(max),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) bucket(key string) *xrate.Limiter {
	if v, ok := m.buckets.Get(key); ok {
		return v.(*xrate.Limiter)
	}
	lim := xrate.NewLimiter(xrate.Every(m.every), m.max)
	m.buckets.SetDefault(key, lim)
	return lim
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	m.mu.Lock()
	lim := m.bucket(key)
	// renueva la expiración: un bucket se descarta sólo tras inactividad
	m.buckets.SetDefault(key, lim)
	m.mu.Unlock()

	now := m.now()
	if lim.AllowN(now, 1) {
		return Result{Allowed: true, Remaining: int64(math.Floor(lim.TokensAt(now)))}, nil
	}
	missing := 1 - lim.TokensAt(now)
	retry := time.Duration(math.Ceil(missing * float64(m.every)))
	if retry <= 0 {
		retry = m.every
	}
	return Result{Allowed: false, RetryAfter: retry}, nil
}
