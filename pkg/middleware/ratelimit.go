package middleware

import (
	"net"
	"net/http"

	"civic-report/pkg/apperror"
	"civic-report/pkg/ratelimit"

	"go.uber.org/zap"
)

// RateLimit throttles requests per client IP. When the limiter itself fails
// the request is let through.
func RateLimit(limiter ratelimit.Limiter, errs *apperror.Translator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("Rate limiter unavailable", zap.String("ip", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				logger.Warn("Rate limit exceeded",
					zap.String("ip", key),
					zap.String("path", r.URL.Path))
				errs.Write(w, r, apperror.TooManyRequests("Too many requests from this IP, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP to have rewritten RemoteAddr already
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
