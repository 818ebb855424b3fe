package api

import (
	"net"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 30 * time.Minute

// RateLimiter consumes one token for key.
type RateLimiter interface {
	Consume(key string) bool
}

type tokenBucketRateLimiter struct {
	limiterByKey *ttlcache.Cache[string, *rate.Limiter]
	limit        rate.Limit
	burst        int
}

func (l *tokenBucketRateLimiter) Consume(key string) bool {
	item, _ := l.limiterByKey.GetOrSet(key, rate.NewLimiter(l.limit, l.burst))
	return item.Value().Allow()
}

// NewTokenBucketRateLimiter allows perMinute calls per key with the given
// burst. Idle keys expire. The returned func stops the expiry loop.
func NewTokenBucketRateLimiter(perMinute, burst int) (RateLimiter, func()) {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	cache := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](limiterIdleTTL),
	)
	go cache.Start()

	return &tokenBucketRateLimiter{
		limiterByKey: cache,
		limit:        rate.Every(time.Minute / time.Duration(perMinute)),
		burst:        burst,
	}, cache.Stop
}

// RequestRateLimiter limits requests by a key derived from the request.
type RequestRateLimiter interface {
	Consume(r *http.Request) bool
}

type requestBasedRateLimiter struct {
	limiter RateLimiter
	keyFunc func(r *http.Request) string
}

func (l *requestBasedRateLimiter) Consume(r *http.Request) bool {
	return l.limiter.Consume(l.keyFunc(r))
}

// NewRequestBasedRateLimiter keys limiter by keyFunc.
func NewRequestBasedRateLimiter(limiter RateLimiter, keyFunc func(r *http.Request) string) RequestRateLimiter {
	return &requestBasedRateLimiter{limiter: limiter, keyFunc: keyFunc}
}

// IPKeyFunc keys requests by client address without port.
func IPKeyFunc(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip: " + host
}
