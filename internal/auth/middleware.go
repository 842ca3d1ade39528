package auth

import (
	"context"
	"net/http"
	"strings"
)

type terminalKey struct{}

// TerminalID returns the authenticated terminal stored by Middleware.
func TerminalID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(terminalKey{}).(string)
	return id, ok
}

// Middleware rejects requests without a valid bearer token.
func Middleware(s *Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			terminalID, err := s.Verify(token)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), terminalKey{}, terminalID)))
		})
	}
}
