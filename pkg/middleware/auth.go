package middleware

import (
	"context"
	"net/http"
	"strings"

	"civic-report/internal/data/entity"
	"civic-report/pkg/apperror"
	"civic-report/pkg/utils"

	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*entity.User, error)
}

// Protect requires a valid bearer token and attaches the caller to the context
func Protect(auth Authenticator, errs *apperror.Translator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extract token
			token, ok := bearerToken(r)
			if !ok {
				errs.Write(w, r, apperror.Unauthenticated("You are not logged in! Please log in to get access"))
				return
			}

			// 2. Resolve user (signature, expiry, existence, password change)
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn("Authentication failed",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				errs.Write(w, r, err)
				return
			}

			// 3. Attach caller
			ctx := utils.SetUserContext(r.Context(), user.ID, string(user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RestrictTo allows only the given roles; it must run after Protect
func RestrictTo(errs *apperror.Translator, logger *zap.Logger, roles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := utils.GetCallerFromContext(r.Context())
			if !ok {
				errs.Write(w, r, apperror.Unauthenticated("You are not logged in! Please log in to get access"))
				return
			}

			for _, role := range roles {
				if caller.Role == string(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("Role check: access denied",
				zap.String("user_id", caller.ID.String()),
				zap.String("role", caller.Role),
				zap.String("path", r.URL.Path))
			errs.Write(w, r, apperror.Forbidden("You do not have permission to perform this action"))
		})
	}
}

// bearerToken reads "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
