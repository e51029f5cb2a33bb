// Package mockupstream serves fake versions of the upstream data APIs for local
// development and end-to-end tests.
package mockupstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Route prefixes. Point each provider's base_url at server URL + prefix.
const (
	RentcastPrefix = "/rentcast"
	ZillowPrefix   = "/zillow"
	CensusPrefix   = "/census"
	FREDPrefix     = "/fred"
	NewsPrefix     = "/news"
)

// NotFoundMarker makes the fake Rentcast return no records for an address containing it.
const NotFoundMarker = "nowhere"

var errUnavailable = errors.New("upstream unavailable")

var zipPattern = regexp.MustCompile(`\b(\d{5})\b`)

// Options tune the simulated upstream behaviour.
type Options struct {
	MinLatency  time.Duration
	MaxLatency  time.Duration
	FailureRate float64 // per request, 0..1
	Seed        int64   // zero means time-based
}

// Server is an http.Handler serving every fake upstream API.
type Server struct {
	opts   Options
	mu     sync.Mutex
	rng    *rand.Rand
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a Server.
func New(opts Options, logger *slog.Logger) *Server {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Server{
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET "+RentcastPrefix+"/properties", s.rentcast)
	s.mux.HandleFunc("POST "+ZillowPrefix+"/resolveAddressToZpid", s.zillow)
	s.mux.HandleFunc("GET "+CensusPrefix, s.census)
	s.mux.HandleFunc("GET "+FREDPrefix+"/series/observations", s.fred)
	s.mux.HandleFunc("GET "+NewsPrefix+"/top-headlines", s.news)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write healthz response", "error", err)
		}
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// simulate sleeps for a random latency and then fails with the configured probability.
func (s *Server) simulate(ctx context.Context) error {
	s.mu.Lock()
	latency := s.opts.MinLatency
	if spread := s.opts.MaxLatency - s.opts.MinLatency; spread > 0 {
		latency += time.Duration(s.rng.Int63n(int64(spread)))
	}
	fail := s.rng.Float64() < s.opts.FailureRate
	s.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
	if fail {
		return errUnavailable
	}
	return nil
}

// guard runs the common latency/failure/auth checks. It reports whether to continue.
func (s *Server) guard(w http.ResponseWriter, r *http.Request, key string) bool {
	if err := s.simulate(r.Context()); err != nil {
		s.logger.Info("simulated upstream failure", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": err.Error()}, s.logger)
		return false
	}
	if strings.TrimSpace(key) == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing api key"}, s.logger)
		return false
	}
	return true
}

// addressRand returns a generator seeded by the address so repeated lookups agree.
func addressRand(address string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(address))))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func round(v float64, step float64) float64 {
	return math.Round(v/step) * step
}

type addressParts struct {
	street, city, state, zip string
}

func splitAddress(address string, rng *rand.Rand) addressParts {
	parts := strings.Split(address, ",")
	a := addressParts{street: strings.TrimSpace(parts[0]), city: "Austin", state: "TX"}
	if len(parts) > 1 {
		a.city = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		if fields := strings.Fields(parts[2]); len(fields) > 0 {
			a.state = strings.ToUpper(fields[0])
		}
	}
	if m := zipPattern.FindAllStringSubmatch(address, -1); len(m) > 0 {
		a.zip = m[len(m)-1][1]
	} else {
		a.zip = fmt.Sprintf("78%03d", rng.Intn(1000))
	}
	return a
}

func (s *Server) rentcast(w http.ResponseWriter, r *http.Request) {
	if !s.guard(w, r, r.Header.Get("X-Api-Key")) {
		return
	}
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "address is required"}, s.logger)
		return
	}
	if strings.Contains(strings.ToLower(address), NotFoundMarker) {
		writeJSON(w, http.StatusOK, []any{}, s.logger)
		return
	}

	rng := addressRand(address)
	a := splitAddress(address, rng)
	sqft := between(rng, 900, 3500)
	value := round(float64(sqft)*float64(between(rng, 180, 420)), 1000)
	rent := round(value*0.006, 10)
	lastSold := round(value*0.8, 1000)
	soldYear := between(rng, 2005, 2022)

	record := map[string]any{
		"id":               strings.ReplaceAll(address, " ", "-"),
		"formattedAddress": fmt.Sprintf("%s, %s, %s %s", a.street, a.city, a.state, a.zip),
		"city":             a.city,
		"state":            a.state,
		"zipCode":          a.zip,
		"county":           "Travis",
		"latitude":         30 + rng.Float64(),
		"longitude":        -97 - rng.Float64(),
		"bedrooms":         between(rng, 2, 5),
		"bathrooms":        float64(between(rng, 2, 7)) / 2,
		"squareFootage":    sqft,
		"lotSize":          between(rng, 3000, 12000),
		"yearBuilt":        between(rng, 1950, 2022),
		"propertyType":     []string{"Single Family", "Condo", "Townhouse", "Multi-Family"}[rng.Intn(4)],
		"valueEstimate":    value,
		"valuationLow":     round(value*0.92, 1000),
		"valuationHigh":    round(value*1.08, 1000),
		"rentEstimate":     rent,
		"rentEstimateLow":  round(rent*0.9, 10),
		"rentEstimateHigh": round(rent*1.1, 10),
		"lastSaleDate":     fmt.Sprintf("%d-%02d-15T00:00:00.000Z", soldYear, between(rng, 1, 12)),
		"lastSalePrice":    lastSold,
	}
	writeJSON(w, http.StatusOK, []any{record}, s.logger)
}

func (s *Server) zillow(w http.ResponseWriter, r *http.Request) {
	if !s.guard(w, r, r.Header.Get("x-rapidapi-key")) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid form"}, s.logger)
		return
	}
	address := strings.TrimSpace(r.PostForm.Get("address"))
	if address == "" || strings.Contains(strings.ToLower(address), NotFoundMarker) {
		writeJSON(w, http.StatusOK, map[string]any{}, s.logger)
		return
	}

	rng := addressRand(address)
	a := splitAddress(address, rng)
	writeJSON(w, http.StatusOK, map[string]any{
		"zpid":  20000000 + rng.Intn(9000000),
		"price": round(float64(between(rng, 900, 3500)*between(rng, 180, 420)), 1000),
		"address": map[string]string{
			"streetAddress": a.street,
			"city":          a.city,
			"state":         a.state,
			"zipcode":       a.zip,
		},
	}, s.logger)
}

func (s *Server) census(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !s.guard(w, r, q.Get("key")) {
		return
	}
	zip := strings.TrimSpace(strings.TrimPrefix(q.Get("for"), "zip code tabulation area:"))
	if zip == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unknown/unsupported geography hierarchy"}, s.logger)
		return
	}
	vars := strings.Split(q.Get("get"), ",")

	rng := addressRand(zip)
	total := between(rng, 5000, 60000)
	male := total * between(rng, 47, 52) / 100
	medianAge := fmt.Sprintf("%.1f", 28+rng.Float64()*20)
	if strings.HasPrefix(zip, "00") {
		medianAge = "-666666666"
	}
	values := map[string]string{
		"DP05_0001E": strconv.Itoa(total),
		"DP05_0002E": strconv.Itoa(male),
		"DP05_0003E": strconv.Itoa(total - male),
		"DP05_0018E": medianAge,
	}

	header := append(append([]string{}, vars...), "zip code tabulation area")
	row := make([]string, 0, len(header))
	for _, v := range vars {
		row = append(row, values[v])
	}
	row = append(row, zip)
	writeJSON(w, http.StatusOK, [][]string{header, row}, s.logger)
}

func (s *Server) fred(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !s.guard(w, r, q.Get("api_key")) {
		return
	}

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)
	start := end.AddDate(-2, 0, 0)
	if since, err := time.Parse(time.DateOnly, q.Get("observation_start")); err == nil {
		start = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	rng := addressRand(q.Get("series_id"))
	level := 280 + rng.Float64()*40
	type observation struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	}
	var obs []observation
	for d := start; !d.After(end); d = d.AddDate(0, 1, 0) {
		level *= 1 + (rng.Float64()*0.012 - 0.002)
		value := strconv.FormatFloat(level, 'f', 3, 64)
		if d.Month() == time.February && d.Year()%2 == 0 {
			value = "."
		}
		obs = append(obs, observation{Date: d.Format(time.DateOnly), Value: value})
	}
	writeJSON(w, http.StatusOK, map[string]any{"observations": obs}, s.logger)
}

var headlines = []struct{ title, source string }{
	{"Mortgage rates ease for third straight week", "Reuters"},
	{"Home prices climb as inventory stays tight", "Bloomberg"},
	{"[Removed]", ""},
	{"Builders see demand rebound in Sun Belt metros", "The Wall Street Journal"},
	{"Rents flatten nationally while suburbs heat up", "CNBC"},
	{"First-time buyers return to the housing market", "Associated Press"},
	{"Housing starts beat expectations in latest report", "MarketWatch"},
}

func (s *Server) news(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !s.guard(w, r, q.Get("apiKey")) {
		return
	}
	size := len(headlines)
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil && n > 0 && n < size {
		size = n
	}

	now := time.Now().UTC()
	articles := make([]map[string]any, 0, size)
	for i, h := range headlines[:size] {
		articles = append(articles, map[string]any{
			"source":      map[string]string{"name": h.source},
			"title":       h.title,
			"description": "Market coverage: " + strings.ToLower(h.title) + ".",
			"url":         fmt.Sprintf("https://news.example.com/articles/%d", i+1),
			"publishedAt": now.Add(-time.Duration(i*7) * time.Hour).Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"totalResults": len(articles),
		"articles":     articles,
	}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
