package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/httputil"
)

// TokenValidator checks a bearer token of the given kind.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token, kind string) (*Claims, error)
}

// Claims are the authenticated facts RequireAuth places in the context.
type Claims struct {
	UserID string
	JTI    string
	Token  string
}

type claimsKey struct{}

// GetClaims retrieves the authenticated claims from the context.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

// BearerToken returns the token in the Authorization header, if any.
func BearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireAuth rejects requests without a valid bearer token of kind. A
// missing token is 401; validator errors are written with their own code.
func RequireAuth(validator TokenValidator, kind string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := BearerToken(r)
			if !ok {
				logger.InfoContext(ctx, "unauthorized access - missing bearer token",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
				return
			}
			claims, err := validator.ValidateToken(ctx, token, kind)
			if err != nil {
				logger.InfoContext(ctx, "unauthorized access - invalid token",
					"kind", kind,
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}
			claims.Token = token
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, claimsKey{}, claims)))
		})
	}
}
