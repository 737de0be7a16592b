package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/techy-Nik/assignment-13/pkg/errors"
)

type contextKeyType string

const (
	subjectKey contextKeyType = "subject"
	tokenIDKey contextKeyType = "token_id"
)

// bearerPrefix is the only accepted Authorization scheme. The match is
// case-sensitive: anything other than "Bearer <token>" is a malformed header.
const bearerPrefix = "Bearer "

// Principal is the identity resolved from a verified access token.
type Principal struct {
	Subject string
	TokenID string
}

// TokenVerifier verifies a raw bearer token and resolves the principal.
// The router wires this to the auth service, which composes signature,
// expiry, class, and revocation checks. A revocation-store failure must
// surface as a 503 AppError so the guard fails closed.
type TokenVerifier func(ctx context.Context, token string) (*Principal, error)

// Auth returns middleware that guards protected routes. It extracts the
// bearer token, delegates verification, and injects the principal into the
// request context. Failures are reported with a deliberately generic body
// so the response does not reveal which check rejected the token.
func Auth(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeGuardError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || token == "" {
				writeGuardError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			principal, err := verify(r.Context(), token)
			if err != nil {
				status := apperrors.HTTPStatus(err)
				if status == http.StatusServiceUnavailable {
					writeGuardError(w, status, "Service temporarily unavailable")
					return
				}
				writeGuardError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, principal.Subject)
			ctx = context.WithValue(ctx, tokenIDKey, principal.TokenID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext extracts the authenticated subject (user ID) from the
// request context. Returns "" outside a guarded route.
func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey).(string); ok {
		return s
	}
	return ""
}

// TokenIDFromContext extracts the jti of the access token that authenticated
// the request.
func TokenIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(tokenIDKey).(string); ok {
		return id
	}
	return ""
}

func writeGuardError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
