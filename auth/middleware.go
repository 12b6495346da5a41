package auth

import (
	"context"
	"net/http"
	"strings"

	"chat-notify/contract"
	"chat-notify/domain"
	"chat-notify/errors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserFromContext returns the identity injected by Middleware.
func UserFromContext(ctx context.Context) (domain.UserID, bool) {
	id, ok := ctx.Value(userIDKey).(domain.UserID)
	return id, ok
}

// Middleware authenticates a request before any registry interaction.
// The token comes from the Authorization header, or from the
// access_token query parameter because EventSource cannot set headers.
// A missing token is 401, a failed verification 403.
func Middleware(verifier contract.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				tokenStr = r.URL.Query().Get("access_token")
			}
			if tokenStr == "" {
				http.Error(w, errors.ErrMissingToken.Error(),
					errors.MapToHTTPStatus(errors.ErrMissingToken))
				return
			}

			userID, err := verifier.Verify(tokenStr)
			if err != nil {
				http.Error(w, err.Error(), errors.MapToHTTPStatus(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
