package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/relaybrook/msgbridge/internal/sender"
)

var (
	failFirstN   = int64(0)
	reqCount     atomic.Int64
	senderSecret = ""
	maxSkew      = 5 * time.Minute
)

func main() {
	if v := os.Getenv("FAIL_FIRST_N"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			failFirstN = n
		}
	}
	if v := os.Getenv("SENDER_SECRET"); v != "" {
		senderSecret = v
	}
	if v := os.Getenv("SIGNING_LEEWAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxSkew = time.Duration(n) * time.Second
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"ok":true}`)) })
	mux.HandleFunc("/send", handleSend)

	addr := ":8081"
	if v := os.Getenv("FAKE_SENDER_PORT"); v != "" {
		addr = v
	}
	log.Printf("fake-sender listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func handleSend(w http.ResponseWriter, r *http.Request) {
	n := reqCount.Add(1)
	b, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	if senderSecret != "" {
		ok, msg := sender.Verify(senderSecret, b, r.Header.Get(sender.TSHeader), r.Header.Get(sender.SigHeader), maxSkew)
		if !ok {
			log.Printf("fake-sender failed to verify signature: %s", msg)
			http.Error(w, "invalid signature: "+msg, http.StatusUnauthorized)
			return
		}
	}

	var payload struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		http.Error(w, "invalid payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Simulate flakiness: first N requests -> 500
	if n <= failFirstN {
		log.Printf("FAILING (%d/%d) to=%s body=%s", n, failFirstN, payload.To, truncate(payload.Message, 160))
		http.Error(w, "temporary failure", http.StatusInternalServerError)
		return
	}

	log.Printf("fake-sender OK to=%s body=%q", payload.To, truncate(payload.Message, 160))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`ok`))
}

// truncate truncates a string to the specified length and adds an ellipsis if truncated
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
