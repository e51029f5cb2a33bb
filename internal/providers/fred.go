package providers

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Observation is one dated value of an economic series.
type Observation struct {
	Date  time.Time
	Value float64
}

// FRED fetches economic indicator series from the St. Louis Fed API.
type FRED struct {
	httpClient
	apiKey string
}

// NewFRED creates a new FRED client.
func NewFRED(apiKey, baseURL string, timeout time.Duration) *FRED {
	return &FRED{
		httpClient: newHTTPClient("fred", baseURL, timeout),
		apiKey:     apiKey,
	}
}

type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Observations returns the series values observed on or after since, ascending by date.
// Missing values (reported as ".") are skipped.
func (f *FRED) Observations(ctx context.Context, seriesID string, since time.Time) ([]Observation, error) {
	if f.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", f.apiKey)
	params.Set("file_type", "json")
	if !since.IsZero() {
		params.Set("observation_start", since.Format(time.DateOnly))
	}

	var resp fredResponse
	if err := f.get(ctx, "/series/observations", params, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(o.Date))
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(o.Value), 64)
		if err != nil || finite(&v) == nil {
			continue
		}
		out = append(out, Observation{Date: date, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
