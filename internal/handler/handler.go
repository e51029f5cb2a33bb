package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/insights"
	"github.com/alex-user-go/sheltersignal/internal/insights/cache"
	"github.com/alex-user-go/sheltersignal/internal/insights/ratelimit"
	"github.com/alex-user-go/sheltersignal/internal/insights/types"
	"github.com/alex-user-go/sheltersignal/internal/middleware"
	"github.com/alex-user-go/sheltersignal/internal/obs"
)

// Client-facing error messages.
const (
	MsgAddressRequired = "Address query parameter is required."
	MsgNotFound        = "Property data not found for the specified address."
	MsgAuth            = "Service unavailable: Auth Error."
	MsgBadGateway      = "Bad Gateway: Error with data provider."
	MsgInternal        = "An internal server error occurred."
	MsgRateLimited     = "Too many requests. Please try again later."
	MsgRunning         = "ShelterSignal Backend is running"
)

// Looker resolves an address into a merged property record.
type Looker interface {
	Lookup(ctx context.Context, address string) (*types.PropertyData, error)
}

// Handler handles HTTP requests.
type Handler struct {
	looker      Looker
	cache       *cache.Cache
	rateLimiter *ratelimit.Limiter
	metrics     *obs.Metrics
	logger      *slog.Logger
}

// New creates a new Handler. A nil rateLimiter disables rate limiting.
func New(
	looker Looker,
	lookupCache *cache.Cache,
	rateLimiter *ratelimit.Limiter,
	metrics *obs.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		looker:      looker,
		cache:       lookupCache,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// RootHandler handles GET / liveness checks.
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": MsgRunning}, h.logger)
}

// PropertyHandler handles /property requests.
func (h *Handler) PropertyHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	h.metrics.IncRequests()
	requestID := middleware.RequestID(r.Context())

	ip := ExtractIP(r)
	if h.rateLimiter != nil && !h.rateLimiter.Allow(ip) {
		h.metrics.IncLookups(obs.OutcomeRateLimit)
		h.logger.Warn("rate limit exceeded", "request_id", requestID, "ip", ip)
		writeError(w, http.StatusTooManyRequests, MsgRateLimited)
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		h.metrics.IncLookups(obs.OutcomeInvalid)
		h.logger.Debug("missing address", "request_id", requestID, "ip", ip)
		writeError(w, http.StatusBadRequest, MsgAddressRequired)
		return
	}

	data, cacheHit, err := h.cache.GetOrFetch(r.Context(), cache.Key(address), func(ctx context.Context) (*types.PropertyData, error) {
		return h.looker.Lookup(ctx, address)
	})
	if err != nil {
		status, message, outcome := classify(err)
		h.metrics.IncLookups(outcome)
		logFn := h.logger.Error
		if status < http.StatusInternalServerError {
			logFn = h.logger.Info
		}
		logFn("property lookup failed",
			"request_id", requestID,
			"address", address,
			"status", status,
			"error", err,
			"ip", ip,
		)
		writeError(w, status, message)
		return
	}

	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.IncCacheHits()
	}
	h.metrics.IncLookups(obs.OutcomeOK)
	h.logger.Info("property lookup served",
		"request_id", requestID,
		"address", address,
		"cache", cacheStatus,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	w.Header().Set("X-Cache", cacheStatus)
	writeJSON(w, http.StatusOK, data, h.logger)
}

// classify maps a lookup error onto a status code, client message and metrics outcome.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, insights.ErrInvalidAddress):
		return http.StatusBadRequest, MsgAddressRequired, obs.OutcomeInvalid
	case errors.Is(err, insights.ErrNotFound):
		return http.StatusNotFound, MsgNotFound, obs.OutcomeNotFound
	case errors.Is(err, insights.ErrProviderAuth):
		return http.StatusServiceUnavailable, MsgAuth, obs.OutcomeError
	case errors.Is(err, insights.ErrProviderFailure):
		return http.StatusBadGateway, MsgBadGateway, obs.OutcomeError
	default:
		return http.StatusInternalServerError, MsgInternal, obs.OutcomeError
	}
}

// ExtractIP extracts the client IP from the request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't change status after WriteHeader, just log
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
