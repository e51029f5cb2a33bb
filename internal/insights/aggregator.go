package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alex-user-go/sheltersignal/internal/forecast"
	"github.com/alex-user-go/sheltersignal/internal/insights/types"
	"github.com/alex-user-go/sheltersignal/internal/obs"
	"github.com/alex-user-go/sheltersignal/internal/providers"
)

var (
	// ErrInvalidAddress is returned for an empty or whitespace-only address.
	ErrInvalidAddress = errors.New("address is required")
	// ErrNotFound is returned when the identity-resolving provider has no matching property.
	ErrNotFound = errors.New("property not found")
	// ErrProviderAuth is returned when the identity-resolving provider rejects our credentials.
	ErrProviderAuth = errors.New("data provider rejected credentials")
	// ErrProviderFailure is returned for any other non-2xx answer of the identity-resolving provider.
	ErrProviderFailure = errors.New("data provider error")
)

// PropertyLookup resolves an address to property records. It is the identity-resolving source.
type PropertyLookup interface {
	LookupProperty(ctx context.Context, q providers.Query) ([]providers.RentcastProperty, error)
}

type DetailsLookup interface {
	ResolveAddress(ctx context.Context, address string) (*types.ZillowData, error)
}

type DemographicsLookup interface {
	Demographics(ctx context.Context, zip string) (*types.CensusData, error)
}

type MarketLookup interface {
	Observations(ctx context.Context, seriesID string, since time.Time) ([]providers.Observation, error)
}

type NewsLookup interface {
	Headlines(ctx context.Context, query string, limit int) ([]types.NewsArticle, error)
}

// Narrator writes the AI summary for a merged record. It never fails.
type Narrator interface {
	Summarize(ctx context.Context, p *types.PropertyData) string
}

// Sources are the upstream providers. Property is required; nil optional sources are skipped.
type Sources struct {
	Property     PropertyLookup
	Details      DetailsLookup
	Demographics DemographicsLookup
	Market       MarketLookup
	News         NewsLookup
}

type Options struct {
	Timeout        time.Duration
	MarketSeries   string
	MarketLookback time.Duration
	NewsQuery      string
	NewsLimit      int
}

// Aggregator merges all provider data for one address into a PropertyData.
type Aggregator struct {
	sources   Sources
	predictor *forecast.Predictor
	narrator  Narrator
	opts      Options
	metrics   *obs.Metrics
	logger    *slog.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(sources Sources, predictor *forecast.Predictor, narrator Narrator, opts Options, metrics *obs.Metrics, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		sources:   sources,
		predictor: predictor,
		narrator:  narrator,
		opts:      opts,
		metrics:   metrics,
		logger:    logger,
	}
}

// supplemental holds the results of the non-identity providers. Each field is written
// by exactly one goroutine.
type supplemental struct {
	census *types.CensusData
	zillow *types.ZillowData
	market []providers.Observation
	news   []types.NewsArticle
}

// Lookup resolves address through the identity-resolving provider, then queries the
// remaining providers concurrently and merges everything into one record.
func (a *Aggregator) Lookup(ctx context.Context, address string) (*types.PropertyData, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrInvalidAddress
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	props, err := a.sources.Property.LookupProperty(ctx, providers.Query{Address: address})
	if err != nil {
		a.metrics.IncProviderErrors("rentcast")
		return nil, classify(err)
	}
	if len(props) == 0 {
		return nil, ErrNotFound
	}
	prop := props[0]
	a.logger.InfoContext(ctx, "property resolved", "address", address, "property_id", prop.ID)

	sup := a.gather(ctx, address, prop.ZipCode)

	data := merge(address, prop)
	data.CensusData = sup.census
	data.ZillowData = sup.zillow
	data.News = sup.news
	data.MarketData = forecast.Market(a.opts.MarketSeries, sup.market)

	pred := a.predictor.Predict(forecast.Subject{
		ValueEstimate: prop.ValueEstimate,
		RentEstimate:  prop.RentEstimate,
		SquareFootage: prop.SquareFootage,
		Bedrooms:      prop.Bedrooms,
		Bathrooms:     prop.Bathrooms,
		YearBuilt:     prop.YearBuilt,
		PropertyType:  prop.PropertyType,
		ZipCode:       prop.ZipCode,
	}, data.MarketData)
	data.PredictedValueNextYear = pred.ValueNextYear
	data.PredictedRentNextYear = pred.RentNextYear
	data.PredictionConfidence = &pred.Confidence
	data.MarketTrend = pred.Trend
	data.TrendConfidence = &pred.TrendConfidence
	data.PredictionPoints = pred.Points
	data.HistoricalValues = a.predictor.History(prop.ValueEstimate, sup.market)

	data.AISummary = a.narrator.Summarize(ctx, data)

	return data, nil
}

func (a *Aggregator) gather(ctx context.Context, address, zip string) supplemental {
	var s supplemental
	g, gctx := errgroup.WithContext(ctx)

	if a.sources.Demographics != nil {
		if zip == "" {
			a.logger.WarnContext(ctx, "skipping census lookup, no zip code", "address", address)
		} else {
			g.Go(func() error {
				data, err := a.sources.Demographics.Demographics(gctx, zip)
				if !a.degraded(gctx, "census", err) {
					s.census = data
				}
				return nil
			})
		}
	}

	if a.sources.Details != nil {
		g.Go(func() error {
			data, err := a.sources.Details.ResolveAddress(gctx, address)
			if !a.degraded(gctx, "zillow", err) {
				s.zillow = data
			}
			return nil
		})
	}

	if a.sources.Market != nil && a.opts.MarketSeries != "" {
		g.Go(func() error {
			var since time.Time
			if a.opts.MarketLookback > 0 {
				since = time.Now().Add(-a.opts.MarketLookback)
			}
			obs, err := a.sources.Market.Observations(gctx, a.opts.MarketSeries, since)
			if !a.degraded(gctx, "fred", err) {
				s.market = obs
			}
			return nil
		})
	}

	if a.sources.News != nil && a.opts.NewsQuery != "" {
		g.Go(func() error {
			articles, err := a.sources.News.Headlines(gctx, a.opts.NewsQuery, a.opts.NewsLimit)
			if !a.degraded(gctx, "news", err) {
				s.news = articles
			}
			return nil
		})
	}

	// Goroutines never return errors; failures are degraded individually.
	_ = g.Wait()
	return s
}

// degraded reports whether err means the provider contributes nothing, logging it if so.
func (a *Aggregator) degraded(ctx context.Context, provider string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, providers.ErrNotConfigured):
		a.logger.DebugContext(ctx, "provider not configured, skipping", "provider", provider)
	default:
		a.metrics.IncProviderErrors(provider)
		a.logger.WarnContext(ctx, "provider failed, continuing without it", "provider", provider, "error", err)
	}
	return true
}

// classify maps an identity-resolving provider failure onto the error taxonomy.
func classify(err error) error {
	var statusErr *providers.StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("property lookup failed: %w", err)
	}
	switch statusErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrProviderAuth, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}
}

func merge(address string, p providers.RentcastProperty) *types.PropertyData {
	return &types.PropertyData{
		ID:                p.ID,
		Address:           address,
		FormattedAddress:  p.FormattedAddress,
		City:              p.City,
		State:             p.State,
		ZipCode:           p.ZipCode,
		County:            p.County,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		Bedrooms:          p.Bedrooms,
		Bathrooms:         p.Bathrooms,
		SquareFootage:     p.SquareFootage,
		LotSize:           p.LotSize,
		YearBuilt:         p.YearBuilt,
		PropertyType:      p.PropertyType,
		Description:       p.Description,
		ValueEstimate:     p.ValueEstimate,
		ValueEstimateLow:  p.ValueEstimateLow,
		ValueEstimateHigh: p.ValueEstimateHigh,
		RentEstimate:      p.RentEstimate,
		RentEstimateLow:   p.RentEstimateLow,
		RentEstimateHigh:  p.RentEstimateHigh,
		LastSoldDate:      p.LastSoldDate,
		LastSoldPrice:     p.LastSoldPrice,
	}
}
