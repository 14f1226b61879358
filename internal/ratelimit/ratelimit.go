/*
Package ratelimit implements per-client admission control. Two tiers gate
every rate-limited endpoint: coarse day/hour quotas shared across endpoints,
and a per-endpoint burst quota. A rejection short-circuits the request before
any validation or upstream call, which is the primary cost containment for
the paid provider.
*/
package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Default shared quotas per client identity.
const (
	DefaultPerDay  = 200
	DefaultPerHour = 50

	// maxTrackedClients bounds the identity record set; least-recently-seen
	// clients are evicted, which resets their counters.
	maxTrackedClients = 10000
)

// Config tunes the shared tiers. Zero values take the defaults. Clock is
// injectable for window tests.
type Config struct {
	PerDay  int
	PerHour int
	Clock   func() time.Time
}

// Limiter holds the per-identity records for the process lifetime. All
// record mutation happens under the limiter mutex so concurrent admission
// checks never undercount.
type Limiter struct {
	mu      sync.Mutex
	clock   func() time.Time
	perDay  int
	perHour int
	records *lru.Cache[string, *record]
}

// record is one client identity's state: fixed day/hour windows plus one
// token bucket per endpoint scope.
type record struct {
	dayStart  time.Time
	dayCount  int
	hourStart time.Time
	hourCount int
	burst     map[string]*rate.Limiter
}

func New(cfg Config) *Limiter {
	if cfg.PerDay <= 0 {
		cfg.PerDay = DefaultPerDay
	}
	if cfg.PerHour <= 0 {
		cfg.PerHour = DefaultPerHour
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	records, _ := lru.New[string, *record](maxTrackedClients)

	return &Limiter{
		clock:   cfg.Clock,
		perDay:  cfg.PerDay,
		perHour: cfg.PerHour,
		records: records,
	}
}

// Allow performs one admission check for identity on the given endpoint
// scope. perMinute > 0 additionally enforces the endpoint's burst quota.
// Window counters advance on every check, admitted or not, regardless of how
// the downstream pipeline fares.
func (l *Limiter) Allow(identity, scope string, perMinute int) bool {
	now := l.clock()

	l.mu.Lock()

	rec, ok := l.records.Get(identity)
	if !ok {
		rec = &record{
			dayStart:  now,
			hourStart: now,
			burst:     make(map[string]*rate.Limiter),
		}
		l.records.Add(identity, rec)
	}

	if now.Sub(rec.dayStart) >= 24*time.Hour {
		rec.dayStart = now
		rec.dayCount = 0
	}
	if now.Sub(rec.hourStart) >= time.Hour {
		rec.hourStart = now
		rec.hourCount = 0
	}

	rec.dayCount++
	rec.hourCount++
	admitted := rec.dayCount <= l.perDay && rec.hourCount <= l.perHour

	var burst *rate.Limiter
	if admitted && perMinute > 0 {
		burst = rec.burst[scope]
		if burst == nil {
			burst = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
			rec.burst[scope] = burst
		}
	}

	l.mu.Unlock()

	if !admitted {
		return false
	}
	if burst != nil && !burst.Allow() {
		return false
	}
	return true
}
