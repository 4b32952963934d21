package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/phrazzld/recruiter-api/internal/api/shared"
	"github.com/phrazzld/recruiter-api/internal/platform/logger"
	"github.com/phrazzld/recruiter-api/internal/ratelimit"
)

// CategoryRateLimited is the error category of rejected requests.
const CategoryRateLimited = "rate_limited"

// Admitter decides whether a request from an identity may proceed.
type Admitter interface {
	Decide(identity string) ratelimit.Decision
}

// RateLimit rejects requests from identities that exceeded their window with
// 429 before they reach the wrapped handler. Identities are client IPs taken
// from r.RemoteAddr; mount chi's RealIP first only behind a trusted proxy.
func RateLimit(gate Admitter, base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := ClientIP(r)
			decision := gate.Decide(identity)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))

				logger.FromContextOrDefault(r.Context(), base).Debug("request rejected by rate limiter",
					slog.String("identity", identity),
					slog.Int("retry_after_seconds", seconds))
				shared.RespondWithError(w, r, http.StatusTooManyRequests, CategoryRateLimited,
					"Too many requests, please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr, or RemoteAddr itself when
// it carries no port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
