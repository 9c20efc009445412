package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"codekata-backend/pkg/auth"
	"codekata-backend/pkg/common"
	appErrors "codekata-backend/pkg/errors"
)

// Authenticate validates the bearer token and stores the resulting session
// in the request context. Requests without a valid token never reach a
// handler.
func Authenticate(validator *auth.JWTValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				common.RespondAppError(w, appErrors.NewUnauthorizedError("missing authentication token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("token rejected",
					zap.Error(err),
					zap.String("path", r.URL.Path),
					zap.String("requestId", common.ExtractRequestID(r)),
				)
				common.RespondAppError(w, appErrors.NewUnauthorizedError(unauthorizedMessage(err)))
				return
			}

			session := auth.NewSession(token, claims)
			ctx := auth.SetSessionInContext(r.Context(), session)

			logger.Debug("request authenticated",
				zap.String("userId", session.UserID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin guards admin-only routes. It must run after Authenticate.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.GetSessionFromContext(r.Context())
			if err != nil {
				common.RespondAppError(w, appErrors.NewUnauthorizedError("authentication required"))
				return
			}
			if !session.IsAdmin() {
				common.RespondAppError(w, appErrors.NewForbiddenError("admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid token signature"
	default:
		return "invalid token"
	}
}

// extractToken pulls the JWT from the Authorization header, falling back to
// the auth cookie.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return header
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}
