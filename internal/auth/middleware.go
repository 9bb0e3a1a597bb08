package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bitleap/linkauth/internal/models"
	pkghttp "github.com/bitleap/linkauth/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// AccountContextKey is the key for storing the authorized account in context
	AccountContextKey contextKey = "account"
)

// Authorizer resolves a bearer token to a live account
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*models.Account, error)
}

// RequireAuth validates the bearer token on each request and injects the
// authorized account into the request context.
func RequireAuth(authorizer Authorizer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			account, err := authorizer.Authorize(r.Context(), parts[1])
			if err != nil {
				switch {
				case errors.Is(err, models.ErrAccountInactive):
					pkghttp.WriteUnauthorized(w, "account is deactivated")
				case errors.Is(err, models.ErrInvalidToken):
					pkghttp.WriteUnauthorized(w, "invalid or expired token")
				default:
					pkghttp.WriteInternalError(w, "internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), AccountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdminRole enforces the admin flag on the account injected by
// RequireAuth. Probes against admin paths are audit-logged.
func RequireAdminRole(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := AccountFromContext(r.Context())
			if account == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			if _, err := RequireAdmin(account); err != nil {
				logger.Warn("admin path probe denied",
					slog.Int64("account_id", account.ID),
					slog.String("path", r.URL.Path))
				pkghttp.WriteForbidden(w, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AccountFromContext extracts the authorized account from a request context
func AccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(AccountContextKey).(*models.Account)
	if !ok {
		return nil
	}
	return account
}
