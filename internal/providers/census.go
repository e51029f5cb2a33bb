package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// ACS profile variables requested from the Census API.
const (
	censusTotalPopulation  = "DP05_0001E"
	censusMalePopulation   = "DP05_0002E"
	censusFemalePopulation = "DP05_0003E"
	censusMedianAge        = "DP05_0018E"
)

// Census fetches ACS demographic profile data by ZIP code tabulation area.
type Census struct {
	httpClient
	apiKey string
}

// NewCensus creates a new Census client. baseURL is the full profile dataset URL.
func NewCensus(apiKey, baseURL string, timeout time.Duration) *Census {
	return &Census{
		httpClient: newHTTPClient("census", baseURL, timeout),
		apiKey:     apiKey,
	}
}

// Demographics returns the demographic profile for zip. It returns nil, nil when the
// Census API has no row for the ZIP code.
func (c *Census) Demographics(ctx context.Context, zip string) (*types.CensusData, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("get", strings.Join([]string{
		censusTotalPopulation, censusMalePopulation, censusFemalePopulation, censusMedianAge,
	}, ","))
	params.Set("for", "zip code tabulation area:"+zip)
	params.Set("key", c.apiKey)

	// First row is the header, second row the values.
	var table [][]*string
	if err := c.get(ctx, "", params, nil, &table); err != nil {
		return nil, err
	}
	return parseCensusTable(table), nil
}

func parseCensusTable(table [][]*string) *types.CensusData {
	if len(table) < 2 {
		return nil
	}
	header, values := table[0], table[1]
	row := make(map[string]string, len(header))
	for i, h := range header {
		if h == nil || i >= len(values) || values[i] == nil {
			continue
		}
		row[*h] = *values[i]
	}

	data := &types.CensusData{
		TotalPopulation:  censusInt(row[censusTotalPopulation]),
		MalePopulation:   censusInt(row[censusMalePopulation]),
		FemalePopulation: censusInt(row[censusFemalePopulation]),
		MedianAge:        censusFloat(row[censusMedianAge]),
	}
	if data.Empty() {
		return nil
	}
	return data
}

// Census encodes "not available" as large negative sentinels (-666666666 and friends).
func censusInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func censusFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return nil
	}
	return finite(&v)
}
