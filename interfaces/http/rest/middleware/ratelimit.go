package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"codekata-backend/pkg/auth"
	"codekata-backend/pkg/common"
	appErrors "codekata-backend/pkg/errors"
)

// RateLimit throttles requests per client IP and, when a session is
// present, per user. Mount it after Authenticate so the user key is
// available.
func RateLimit(requestsPerMinute int, logger *zap.Logger) func(http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(requestsPerMinute)
	userLimiter := auth.NewUserRateLimiter(requestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, err := ipLimiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Error("rate limiter failed", zap.Error(err))
				common.RespondAppError(w, appErrors.NewInternalError("rate limiter failed"))
				return
			}
			if !allowed {
				logger.Warn("ip rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
				)
				common.RespondAppError(w, appErrors.NewRateLimitError(requestsPerMinute, "minute"))
				return
			}

			if session, err := auth.GetSessionFromContext(r.Context()); err == nil {
				allowed, err := userLimiter.Allow(r.Context(), session.UserID)
				if err != nil {
					logger.Error("rate limiter failed", zap.Error(err))
					common.RespondAppError(w, appErrors.NewInternalError("rate limiter failed"))
					return
				}
				if !allowed {
					logger.Warn("user rate limit exceeded",
						zap.String("userId", session.UserID),
						zap.String("path", r.URL.Path),
					)
					common.RespondAppError(w, appErrors.NewRateLimitError(requestsPerMinute, "minute"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the forwarding headers set by proxies over RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
