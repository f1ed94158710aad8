package report

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	// DefaultScanRate is the default number of scans allowed per minute
	DefaultScanRate = 10
	// DefaultScanBurst is the default number of scans allowed back to back
	DefaultScanBurst = 3
)

// ScanLimiter caps how often sheets are sent to the extraction model. Every
// client shares one budget since each scan costs the same model quota.
type ScanLimiter struct {
	limiter *rate.Limiter
}

// NewScanLimiter allows perMinute scans a minute with bursts of up to burst.
// A perMinute of zero or less disables limiting.
func NewScanLimiter(perMinute float64, burst int) *ScanLimiter {
	if perMinute <= 0 {
		return &ScanLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &ScanLimiter{limiter: rate.NewLimiter(rate.Limit(perMinute/60.0), burst)}
}

// reserve takes a token, returning how many seconds to wait when none is left
func (l *ScanLimiter) reserve() (int, bool) {
	r := l.limiter.Reserve()
	if !r.OK() {
		return 60, false
	}
	delay := r.Delay()
	if delay <= 0 {
		return 0, true
	}
	r.Cancel()

	retryAfter := int(math.Ceil(delay.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return retryAfter, false
}

// Middleware rejects requests over the limit with 429 and a Retry-After header
func (l *ScanLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if l == nil {
			next(w, r)
			return
		}

		retryAfter, ok := l.reserve()
		if !ok {
			slog.Warn("Scan rate limit exceeded", "retry_after", retryAfter, "remote", r.RemoteAddr)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			jsonError(w, fmt.Sprintf("Too many scans. Please retry after %d seconds.", retryAfter), http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
