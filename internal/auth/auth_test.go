package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "bridgectl",
		"exp": expiresAt.Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return s
}

func TestValidateToken(t *testing.T) {
	jwtSecret := "jwt-secret"
	tests := []struct {
		name      string
		apiKey    string
		jwtSecret string
		token     string
		wantErr   bool
	}{
		{
			name:   "matching API key",
			apiKey: "s3cret",
			token:  "s3cret",
		},
		{
			name:    "wrong API key without JWT configured",
			apiKey:  "s3cret",
			token:   "nope",
			wantErr: true,
		},
		{
			name:      "valid HS256 token",
			apiKey:    "s3cret",
			jwtSecret: jwtSecret,
			token:     "", // filled below
		},
		{
			name:      "expired HS256 token",
			apiKey:    "s3cret",
			jwtSecret: jwtSecret,
			token:     "expired", // filled below
			wantErr:   true,
		},
		{
			name:      "garbage token with JWT configured",
			apiKey:    "s3cret",
			jwtSecret: jwtSecret,
			token:     "not.a.jwt",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tt.token
			switch token {
			case "":
				token = signedToken(t, jwtSecret, time.Now().Add(time.Hour))
			case "expired":
				token = signedToken(t, jwtSecret, time.Now().Add(-time.Hour))
			}

			v := NewValidator(tt.apiKey, tt.jwtSecret)
			err := v.ValidateToken(token)
			if tt.wantErr && err == nil {
				t.Error("ValidateToken() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateToken() unexpected error: %v", err)
			}
		})
	}
}

func TestHTTPMiddleware(t *testing.T) {
	v := NewValidator("s3cret", "")
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := v.HTTPMiddleware(next)

	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "healthz is open",
			path:       "/healthz",
			wantStatus: http.StatusOK,
		},
		{
			name:       "metrics is open",
			path:       "/metrics",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			path:       "/v1/send",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			path:       "/v1/send",
			authHeader: "Basic s3cret",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong key",
			path:       "/v1/send",
			authHeader: "Bearer wrong",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid key",
			path:       "/v1/send",
			authHeader: "Bearer s3cret",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
