package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the browser page carries after an admin login.
const CookieName = "admin_token"

type ctxKey int

const ctxKeyAdmin ctxKey = iota

// AdminFromContext returns the admin username set by the middleware.
func AdminFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyAdmin).(string)
	return v
}

// AdminAuthMiddleware accepts an HS256 token from the Authorization header
// or from the admin cookie.
func AdminAuthMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			subject, err := ParseToken(raw, key)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyAdmin, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseToken verifies raw and returns its subject.
func ParseToken(raw string, key []byte) (string, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
