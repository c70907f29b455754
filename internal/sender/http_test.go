package sender

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestHTTPSendSignsRequest(t *testing.T) {
	secret := "shh"
	var gotPayload sendPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		ok, reason := Verify(secret, body, r.Header.Get(TSHeader), r.Header.Get(SigHeader), 60*time.Second)
		if !ok {
			t.Errorf("signature verification failed: %s", reason)
		}
		if err := json.Unmarshal(body, &gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	h := NewHTTP(ts.URL, secret, 2*time.Second)
	if err := h.Send(context.Background(), "+15551234567", "hello"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if gotPayload.To != "+15551234567" || gotPayload.Message != "hello" {
		t.Errorf("payload = %+v", gotPayload)
	}
}

func TestHTTPSendNoSecretSkipsHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SigHeader) != "" || r.Header.Get(TSHeader) != "" {
			t.Error("signing headers set without a configured secret")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	h := NewHTTP(ts.URL, "", 2*time.Second)
	if err := h.Send(context.Background(), "+15551234567", "hello"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
}

func TestHTTPSendNon2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	h := NewHTTP(ts.URL, "", 2*time.Second)
	if err := h.Send(context.Background(), "+15551234567", "hello"); err == nil {
		t.Error("Send() expected error on 502, got nil")
	}
}

func TestVerify(t *testing.T) {
	secret := "shh"
	body := []byte(`{"to":"x","message":"y"}`)
	now := strconv.FormatInt(time.Now().Unix(), 10)
	stale := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)

	tests := []struct {
		name string
		ts   string
		sig  string
		want bool
	}{
		{
			name: "valid with prefix",
			ts:   now,
			sig:  "sha256=" + Sign(secret, body, now),
			want: true,
		},
		{
			name: "valid without prefix",
			ts:   now,
			sig:  Sign(secret, body, now),
			want: true,
		},
		{
			name: "wrong secret",
			ts:   now,
			sig:  "sha256=" + Sign("other", body, now),
			want: false,
		},
		{
			name: "stale timestamp outside leeway",
			ts:   stale,
			sig:  "sha256=" + Sign(secret, body, stale),
			want: false,
		},
		{
			name: "missing signature",
			ts:   now,
			sig:  "",
			want: false,
		},
		{
			name: "missing timestamp",
			ts:   "",
			sig:  "sha256=" + Sign(secret, body, now),
			want: false,
		},
		{
			name: "non-numeric timestamp",
			ts:   "yesterday",
			sig:  "sha256=deadbeef",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Verify(secret, body, tt.ts, tt.sig, 5*time.Minute)
			if ok != tt.want {
				t.Errorf("Verify() = %v (%s), want %v", ok, reason, tt.want)
			}
		})
	}
}
