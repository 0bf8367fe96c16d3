package middleware

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/kmazur/interview-copilot/internal/request"
)

// rateLimitExemptPaths are never throttled so probes and scrapes keep
// working when a client exhausts its budget.
var rateLimitExemptPaths = map[string]bool{
	"/api/health": true,
	"/metrics":    true,
}

// RateLimit returns per-client-IP rate limiting middleware backed by
// ulule/limiter. With a Redis client the counters are shared across
// replicas; without one an in-process store is used.
func RateLimit(redisClient *redis.Client, perMinute int) (func(http.Handler) http.Handler, error) {
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(perMinute),
	}

	var (
		st  limiter.Store
		err error
	)
	if redisClient != nil {
		st, err = redisstore.NewStore(redisClient)
		if err != nil {
			return nil, err
		}
	} else {
		st = memorystore.NewStore()
	}

	instance := limiter.New(st, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))

	return func(next http.Handler) http.Handler {
		limited := mw.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rateLimitExemptPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}, nil
}
