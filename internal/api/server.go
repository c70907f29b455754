// Package api exposes the HTTP submission boundary: message submission,
// health, and metrics.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/relaybrook/msgbridge/internal/auth"
	"github.com/relaybrook/msgbridge/internal/health"
	"github.com/relaybrook/msgbridge/internal/logging"
	"github.com/relaybrook/msgbridge/internal/outbound"
	"github.com/relaybrook/msgbridge/internal/tracing"
)

type Server struct {
	queue *outbound.Queue
	log   *logging.Logger
}

func NewServer(queue *outbound.Queue, log *logging.Logger) *Server {
	return &Server{queue: queue, log: log}
}

// Router assembles the chi router with auth, send, health and metrics.
func (s *Server) Router(validator *auth.Validator, probes health.Probes, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(validator.HTTPMiddleware)

	r.Post("/v1/send", s.handleSend)
	r.Get("/healthz", health.HTTPHandler(probes))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendResponse struct {
	Status    string `json:"status"`
	To        string `json:"to"`
	MessageID string `json:"message_id"`
}

// handleSend validates the submission and admits it to the outbound queue.
// Admission is acknowledgement of queuing, not of delivery.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "api.send")
	defer span.End()

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	m, err := outbound.NewMessage(req.To, req.Message, "api")
	if err != nil {
		if errors.Is(err, outbound.ErrInvalidMessage) {
			tracing.SetSpanError(ctx, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.queue.Enqueue(m)
	span.SetAttributes(attribute.String("message_id", m.ID))
	s.log.WithContext(ctx).WithMessage(m.ID).WithRecipient(m.Recipient).Info("message queued")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(sendResponse{
		Status:    "queued",
		To:        m.Recipient,
		MessageID: m.ID,
	})
}
