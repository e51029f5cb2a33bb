package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// Zillow resolves an address to a Zillow property via RapidAPI.
type Zillow struct {
	httpClient
	apiKey string
	host   string
}

// NewZillow creates a new Zillow client.
func NewZillow(apiKey, baseURL, host string, timeout time.Duration) *Zillow {
	return &Zillow{
		httpClient: newHTTPClient("zillow", baseURL, timeout),
		apiKey:     apiKey,
		host:       host,
	}
}

type zillowResponse struct {
	ZPID    json.Number     `json:"zpid"`
	Price   *float64        `json:"price"`
	Address json.RawMessage `json:"address"`
}

type zillowAddress struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zipcode       string `json:"zipcode"`
}

// ResolveAddress returns the Zillow record for address, or nil when Zillow has no zpid for it.
func (z *Zillow) ResolveAddress(ctx context.Context, address string) (*types.ZillowData, error) {
	if z.apiKey == "" {
		return nil, ErrNotConfigured
	}

	header := http.Header{}
	header.Set("x-rapidapi-host", z.host)
	header.Set("x-rapidapi-key", z.apiKey)

	var resp zillowResponse
	if err := z.postForm(ctx, "/resolveAddressToZpid", url.Values{"address": {address}}, header, &resp); err != nil {
		return nil, err
	}

	if resp.ZPID == "" && resp.Price == nil {
		return nil, nil
	}
	return &types.ZillowData{
		ZPID:    resp.ZPID.String(),
		Price:   finite(resp.Price),
		Address: decodeZillowAddress(resp.Address),
	}, nil
}

// decodeZillowAddress accepts either a plain string or a structured address object.
func decodeZillowAddress(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var a zillowAddress
	if err := json.Unmarshal(raw, &a); err != nil {
		return ""
	}
	var parts []string
	for _, p := range []string{a.StreetAddress, a.City, strings.TrimSpace(a.State + " " + a.Zipcode)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
