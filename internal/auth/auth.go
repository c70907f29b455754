// Package auth guards the HTTP submission boundary. Callers present either
// the static API key or, when a JWT secret is configured, an HS256-signed
// bearer token.
package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Validator checks bearer credentials on incoming requests.
type Validator struct {
	apiKey    string
	jwtSecret []byte
}

func NewValidator(apiKey, jwtSecret string) *Validator {
	v := &Validator{apiKey: apiKey}
	if jwtSecret != "" {
		v.jwtSecret = []byte(jwtSecret)
	}
	return v
}

// ValidateToken accepts the static API key (constant-time compare) or a
// valid HS256 token signed with the configured secret.
func (v *Validator) ValidateToken(token string) error {
	if v.apiKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(v.apiKey)) == 1 {
		return nil
	}
	if v.jwtSecret == nil {
		return fmt.Errorf("invalid API key")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.jwtSecret, nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse token: %v", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// HTTPMiddleware returns middleware enforcing bearer auth. Health and
// metrics endpoints stay open for probes and scrapers.
func (v *Validator) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if err := v.ValidateToken(strings.TrimSpace(token)); err != nil {
			http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
