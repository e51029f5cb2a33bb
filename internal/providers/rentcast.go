package providers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Query identifies a property for Rentcast. Only Address is required.
type Query struct {
	Address string
	City    string
	State   string
	ZipCode string
}

// RentcastProperty is one property record from the Rentcast /properties endpoint.
type RentcastProperty struct {
	ID                string
	FormattedAddress  string
	City              string
	State             string
	ZipCode           string
	County            string
	Latitude          *float64
	Longitude         *float64
	Bedrooms          *int
	Bathrooms         *float64
	SquareFootage     *int
	LotSize           *int
	YearBuilt         *int
	PropertyType      string
	Description       string
	ValueEstimate     *float64
	ValueEstimateLow  *float64
	ValueEstimateHigh *float64
	RentEstimate      *float64
	RentEstimateLow   *float64
	RentEstimateHigh  *float64
	LastSoldDate      string
	LastSoldPrice     *float64
}

// rentcastRecord mirrors the wire format, including legacy field aliases.
type rentcastRecord struct {
	ID                string   `json:"id"`
	FormattedAddress  string   `json:"formattedAddress"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	ZipCode           string   `json:"zipCode"`
	ZipCodeLegacy     string   `json:"zipcode"`
	County            string   `json:"county"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Bedrooms          *int     `json:"bedrooms"`
	Bathrooms         *float64 `json:"bathrooms"`
	SquareFootage     *int     `json:"squareFootage"`
	LotSize           *int     `json:"lotSize"`
	YearBuilt         *int     `json:"yearBuilt"`
	PropertyType      string   `json:"propertyType"`
	Description       string   `json:"description"`
	ValueEstimate     *float64 `json:"valueEstimate"`
	ValuationLow      *float64 `json:"valuationLow"`
	ValuationHigh     *float64 `json:"valuationHigh"`
	ValueEstimateLow  *float64 `json:"valueEstimateLow"`
	ValueEstimateHigh *float64 `json:"valueEstimateHigh"`
	RentEstimate      *float64 `json:"rentEstimate"`
	RentEstimateLow   *float64 `json:"rentEstimateLow"`
	RentEstimateHigh  *float64 `json:"rentEstimateHigh"`
	LastSaleDate      string   `json:"lastSaleDate"`
	LastSalePrice     *float64 `json:"lastSalePrice"`
	LastSoldDate      string   `json:"lastSoldDate"`
	LastSoldPrice     *float64 `json:"lastSoldPrice"`
}

// Rentcast queries the Rentcast property records API. It is the identity-resolving provider.
type Rentcast struct {
	httpClient
	apiKey string
	logger *slog.Logger
}

// NewRentcast creates a new Rentcast client.
func NewRentcast(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Rentcast {
	return &Rentcast{
		httpClient: newHTTPClient("rentcast", baseURL, timeout),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// LookupProperty returns the property records matching q. An empty slice means no match.
func (r *Rentcast) LookupProperty(ctx context.Context, q Query) ([]RentcastProperty, error) {
	if r.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	if q.Address != "" {
		params.Set("address", q.Address)
	}
	if q.City != "" {
		params.Set("city", q.City)
	}
	if q.State != "" {
		params.Set("state", q.State)
	}
	if q.ZipCode != "" {
		params.Set("zipCode", q.ZipCode)
	}

	header := http.Header{}
	header.Set("X-Api-Key", r.apiKey)

	r.logger.DebugContext(ctx, "calling rentcast", "address", q.Address)

	var records []rentcastRecord
	if err := r.get(ctx, "/properties", params, header, &records); err != nil {
		return nil, err
	}

	out := make([]RentcastProperty, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.normalize())
	}
	return out, nil
}

func (rec rentcastRecord) normalize() RentcastProperty {
	p := RentcastProperty{
		ID:                strings.TrimSpace(rec.ID),
		FormattedAddress:  strings.TrimSpace(rec.FormattedAddress),
		City:              rec.City,
		State:             rec.State,
		ZipCode:           firstNonEmpty(rec.ZipCode, rec.ZipCodeLegacy),
		County:            rec.County,
		Latitude:          finite(rec.Latitude),
		Longitude:         finite(rec.Longitude),
		Bedrooms:          rec.Bedrooms,
		Bathrooms:         finite(rec.Bathrooms),
		SquareFootage:     rec.SquareFootage,
		LotSize:           rec.LotSize,
		YearBuilt:         rec.YearBuilt,
		PropertyType:      rec.PropertyType,
		Description:       rec.Description,
		ValueEstimate:     finite(rec.ValueEstimate),
		ValueEstimateLow:  finite(firstPresent(rec.ValuationLow, rec.ValueEstimateLow)),
		ValueEstimateHigh: finite(firstPresent(rec.ValuationHigh, rec.ValueEstimateHigh)),
		RentEstimate:      finite(rec.RentEstimate),
		RentEstimateLow:   finite(rec.RentEstimateLow),
		RentEstimateHigh:  finite(rec.RentEstimateHigh),
		LastSoldDate:      firstNonEmpty(rec.LastSaleDate, rec.LastSoldDate),
		LastSoldPrice:     finite(firstPresent(rec.LastSalePrice, rec.LastSoldPrice)),
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstPresent(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
