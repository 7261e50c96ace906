package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/repository"
)

// TokenVerifier is the slice of Service the middleware needs.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

type errorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware extracts the bearer token, verifies it and loads the current
// user into the request context. writeErr keeps the response shape
// consistent with the rest of the API.
func Middleware(verifier TokenVerifier, users repository.UserStore, writeErr errorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeErr(w, r, apierror.Unauthorized("missing or malformed authorization header"))
				return
			}

			userID, err := verifier.Verify(r.Context(), token)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			u, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					writeErr(w, r, apierror.Unauthorized("account no longer exists"))
					return
				}
				writeErr(w, r, err)
				return
			}
			if !u.Active {
				writeErr(w, r, apierror.Unauthorized("account is deactivated"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
