// Package proxy relays dashboard lookups to the backend without transforming them.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/middleware"
)

// Client-facing messages produced by the proxy itself.
const (
	MsgMethodNotAllowed = "Method Not Allowed"
	MsgAddressRequired  = "Address query parameter is required"
	MsgBackendFailed    = "Failed to fetch property data from backend."
	MsgBackendTimeout   = "The backend service did not respond in time."
	MsgBackendNetwork   = "Could not connect to the backend service."
)

const maxBodyBytes = 10 << 20

// Handler forwards GET /api/property to the backend's /property endpoint.
type Handler struct {
	backendURL string
	client     *http.Client
	logger     *slog.Logger
}

// New creates a Handler for the backend at backendURL. Every forwarded request is
// bounded by timeout.
func New(backendURL string, timeout time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		backendURL: strings.TrimRight(backendURL, "/"),
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, MsgAddressRequired)
		return
	}

	requestID := middleware.RequestID(r.Context())
	target := h.backendURL + "/property?address=" + url.QueryEscape(address)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		h.logger.Error("failed to build backend request", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, MsgBackendFailed)
		return
	}
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		msg := MsgBackendNetwork
		if isTimeout(err) {
			msg = MsgBackendTimeout
		}
		h.logger.Error("backend request failed", "request_id", requestID, "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("failed to read backend response", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, MsgBackendFailed)
		return
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write(body); err != nil {
			h.logger.Error("failed to relay backend response", "request_id", requestID, "error", err)
		}
		return
	}

	msg := backendMessage(body)
	if msg == "" {
		msg = MsgBackendFailed
	}
	h.logger.Warn("backend returned error",
		"request_id", requestID,
		"address", address,
		"status", resp.StatusCode,
		"message", msg,
	)
	writeError(w, resp.StatusCode, msg)
}

// backendMessage extracts "message", or a string "detail", from an error body.
func backendMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if m := strings.TrimSpace(payload.Message); m != "" {
		return m
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return strings.TrimSpace(detail)
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
