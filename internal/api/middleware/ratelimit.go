package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/config"
)

type RateLimitTier string

const (
	TierPublic RateLimitTier = "public"
	TierAPI    RateLimitTier = "api"
	TierAdmin  RateLimitTier = "admin"
	// TierLogin covers login and sign-up: a burst, then one attempt per refill.
	TierLogin RateLimitTier = "login"
)

var errRateLimited = errors.New("rate limit exceeded")

type rateLimitKey string

const rateLimitTierKey rateLimitKey = "rateLimitTier"

func WithRateLimitTier(ctx context.Context, tier RateLimitTier) context.Context {
	return context.WithValue(ctx, rateLimitTierKey, tier)
}

func WithRateLimitTierHandler(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithRateLimitTier(r.Context(), tier)))
		})
	}
}

func tierFrom(ctx context.Context) RateLimitTier {
	if tier, ok := ctx.Value(rateLimitTierKey).(RateLimitTier); ok {
		return tier
	}
	return TierPublic
}

// tierPolicy is a token bucket of size burst refilled over window.
type tierPolicy struct {
	burst  int
	window time.Duration
}

func (p tierPolicy) newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(p.window/time.Duration(p.burst)), p.burst)
}

func (p tierPolicy) retryAfter() string {
	return strconv.Itoa(max(1, int(p.window/time.Duration(p.burst)/time.Second)))
}

func policiesFor(cfg config.RateLimitConfig) map[RateLimitTier]tierPolicy {
	policies := make(map[RateLimitTier]tierPolicy, 4)
	add := func(tier RateLimitTier, burst int, window time.Duration) {
		if burst > 0 {
			policies[tier] = tierPolicy{burst: burst, window: window}
		}
	}
	add(TierPublic, cfg.PublicPerMinute, time.Minute)
	add(TierAPI, cfg.APIPerMinute, time.Minute)
	add(TierAdmin, cfg.AdminPerMinute, time.Minute)
	add(TierLogin, cfg.LoginPer15Minutes, 15*time.Minute)
	return policies
}

var probePaths = map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

// RateLimit applies a per-client token bucket for the tier found in the
// context (public when unset). A tier with a zero budget is unlimited.
// Every handler wrapped by the returned middleware shares one bucket set.
func RateLimit(cfg config.RateLimitConfig, env string) func(http.Handler) http.Handler {
	policies := policiesFor(cfg)
	proxies := parsePrefixes(cfg.TrustedProxyCIDRs)
	buckets := newBucketSet(15 * time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tier := tierFrom(r.Context())
			policy, limited := policies[tier]
			if !limited || probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := bucketKey{tier: tier, client: clientIP(r, proxies)}
			if buckets.get(key, policy).Allow() {
				next.ServeHTTP(w, r)
				return
			}

			wait := policy.retryAfter()
			w.Header().Set("Retry-After", wait)
			problem.Write(w, r, http.StatusTooManyRequests, problem.TypeRateLimited, "Too many requests",
				errRateLimited, env, problem.WithDetail("retry after "+wait+" seconds"))
		})
	}
}

type bucketKey struct {
	tier   RateLimitTier
	client string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// bucketSet drops buckets idle for longer than ttl. Sweeps piggyback on
// lookups, so no goroutine outlives the middleware.
type bucketSet struct {
	mu        sync.Mutex
	ttl       time.Duration
	lastSweep time.Time
	buckets   map[bucketKey]*bucket
}

func newBucketSet(ttl time.Duration) *bucketSet {
	return &bucketSet{ttl: ttl, lastSweep: time.Now(), buckets: make(map[bucketKey]*bucket)}
}

func (s *bucketSet) get(key bucketKey, policy tierPolicy) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > s.ttl/3 {
		for k, b := range s.buckets {
			if now.Sub(b.lastSeen) > s.ttl {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: policy.newLimiter()}
		s.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}
