package insights_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/alex-user-go/sheltersignal/internal/forecast"
	"github.com/alex-user-go/sheltersignal/internal/insights"
	"github.com/alex-user-go/sheltersignal/internal/insights/types"
	"github.com/alex-user-go/sheltersignal/internal/obs"
	"github.com/alex-user-go/sheltersignal/internal/providers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

type mockProperty struct {
	props []providers.RentcastProperty
	err   error
	delay time.Duration
	calls atomic.Int32
	query providers.Query
}

func (m *mockProperty) LookupProperty(ctx context.Context, q providers.Query) ([]providers.RentcastProperty, error) {
	m.calls.Add(1)
	m.query = q
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}
	return m.props, m.err
}

type mockDetails struct {
	data *types.ZillowData
	err  error
}

func (m *mockDetails) ResolveAddress(ctx context.Context, address string) (*types.ZillowData, error) {
	return m.data, m.err
}

type mockDemographics struct {
	data  *types.CensusData
	err   error
	calls atomic.Int32
	zip   string
}

func (m *mockDemographics) Demographics(ctx context.Context, zip string) (*types.CensusData, error) {
	m.calls.Add(1)
	m.zip = zip
	return m.data, m.err
}

type mockMarket struct {
	obs []providers.Observation
	err error
}

func (m *mockMarket) Observations(ctx context.Context, seriesID string, since time.Time) ([]providers.Observation, error) {
	return m.obs, m.err
}

type mockNews struct {
	articles []types.NewsArticle
	err      error
}

func (m *mockNews) Headlines(ctx context.Context, query string, limit int) ([]types.NewsArticle, error) {
	return m.articles, m.err
}

type mockNarrator struct {
	seen *types.PropertyData
}

func (m *mockNarrator) Summarize(ctx context.Context, p *types.PropertyData) string {
	m.seen = p
	return "A solid property."
}

func newAggregator(sources insights.Sources, narrator insights.Narrator, metrics *obs.Metrics) *insights.Aggregator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if metrics == nil {
		metrics = obs.NewMetrics(logger)
	}
	predictor := &forecast.Predictor{Now: func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	}}
	opts := insights.Options{
		Timeout:        2 * time.Second,
		MarketSeries:   "CSUSHPINSA",
		MarketLookback: 2 * 365 * 24 * time.Hour,
		NewsQuery:      "housing",
		NewsLimit:      5,
	}
	return insights.NewAggregator(sources, predictor, narrator, opts, metrics, logger)
}

func sampleProperty() providers.RentcastProperty {
	return providers.RentcastProperty{
		ID:               "5500-Grand-Lake-Dr,-San-Antonio,-TX-78244",
		FormattedAddress: "5500 Grand Lake Dr, San Antonio, TX 78244",
		City:             "San Antonio",
		State:            "TX",
		ZipCode:          "78244",
		Bedrooms:         i(3),
		Bathrooms:        f64(2),
		SquareFootage:    i(1878),
		YearBuilt:        i(1973),
		PropertyType:     "Single Family",
		ValueEstimate:    f64(240000),
		RentEstimate:     f64(1800),
	}
}

func monthly(start time.Time, values ...float64) []providers.Observation {
	obs := make([]providers.Observation, 0, len(values))
	for n, v := range values {
		obs = append(obs, providers.Observation{Date: start.AddDate(0, n, 0), Value: v})
	}
	return obs
}

func TestAggregator_Lookup_MergesAllProviders(t *testing.T) {
	census := &types.CensusData{TotalPopulation: i(21000), MalePopulation: i(10100), FemalePopulation: i(10900), MedianAge: f64(33.1)}
	zillow := &types.ZillowData{ZPID: "26181473", Price: f64(245000), Address: "5500 Grand Lake Dr"}
	news := []types.NewsArticle{{Title: "Mortgage rates dip", Source: "Reuters"}}
	demographics := &mockDemographics{data: census}
	narrator := &mockNarrator{}

	agg := newAggregator(insights.Sources{
		Property:     &mockProperty{props: []providers.RentcastProperty{sampleProperty()}},
		Details:      &mockDetails{data: zillow},
		Demographics: demographics,
		Market: &mockMarket{obs: monthly(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112)},
		News: &mockNews{articles: news},
	}, narrator, nil)

	got, err := agg.Lookup(context.Background(), "  5500 Grand Lake Dr, San Antonio, TX 78244 ")
	require.NoError(t, err)

	assert.Equal(t, "5500 Grand Lake Dr, San Antonio, TX 78244", got.Address)
	assert.Equal(t, "78244", demographics.zip)
	assert.Empty(t, cmp.Diff(census, got.CensusData))
	assert.Empty(t, cmp.Diff(zillow, got.ZillowData))
	assert.Empty(t, cmp.Diff(news, got.News))

	require.NotNil(t, got.MarketData)
	assert.Equal(t, "CSUSHPINSA", got.MarketData.SeriesID)
	require.NotNil(t, got.MarketData.YearOverYearChange)
	assert.Equal(t, 12.0, *got.MarketData.YearOverYearChange)
	assert.Equal(t, types.TrendIncreasing, got.MarketTrend)

	require.NotNil(t, got.PredictedValueNextYear)
	require.NotNil(t, got.PredictionConfidence)
	require.NotNil(t, got.TrendConfidence)
	assert.NotEmpty(t, got.PredictionPoints)

	wantHistory := []types.ValuePoint{
		{Date: "2024-01-01", Value: 214286},
		{Date: "2024-04-01", Value: 220714},
		{Date: "2024-07-01", Value: 227143},
		{Date: "2024-10-01", Value: 233571},
		{Date: "2025-01-01", Value: 240000},
	}
	assert.Empty(t, cmp.Diff(wantHistory, got.HistoricalValues))

	assert.Equal(t, "A solid property.", got.AISummary)
	require.NotNil(t, narrator.seen)
	assert.NotNil(t, narrator.seen.PredictedValueNextYear, "narrator sees the prediction")
}

func TestAggregator_Lookup_InvalidAddress(t *testing.T) {
	property := &mockProperty{}
	agg := newAggregator(insights.Sources{Property: property}, &mockNarrator{}, nil)

	for _, address := range []string{"", "   ", "\t\n"} {
		_, err := agg.Lookup(context.Background(), address)
		assert.ErrorIs(t, err, insights.ErrInvalidAddress)
	}
	assert.Equal(t, int32(0), property.calls.Load())
}

func TestAggregator_Lookup_IdentityErrors(t *testing.T) {
	tests := []struct {
		name    string
		props   []providers.RentcastProperty
		err     error
		wantErr error
	}{
		{name: "empty result", wantErr: insights.ErrNotFound},
		{name: "404", err: &providers.StatusError{Provider: "rentcast", StatusCode: http.StatusNotFound}, wantErr: insights.ErrNotFound},
		{name: "401", err: &providers.StatusError{Provider: "rentcast", StatusCode: http.StatusUnauthorized}, wantErr: insights.ErrProviderAuth},
		{name: "403", err: &providers.StatusError{Provider: "rentcast", StatusCode: http.StatusForbidden}, wantErr: insights.ErrProviderAuth},
		{name: "500", err: &providers.StatusError{Provider: "rentcast", StatusCode: http.StatusInternalServerError}, wantErr: insights.ErrProviderFailure},
		{name: "429", err: &providers.StatusError{Provider: "rentcast", StatusCode: http.StatusTooManyRequests}, wantErr: insights.ErrProviderFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newAggregator(insights.Sources{
				Property: &mockProperty{props: tt.props, err: tt.err},
			}, &mockNarrator{}, nil)

			got, err := agg.Lookup(context.Background(), "1 Main St")
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAggregator_Lookup_TransportErrorIsUnclassified(t *testing.T) {
	agg := newAggregator(insights.Sources{
		Property: &mockProperty{err: errors.New("connection refused")},
	}, &mockNarrator{}, nil)

	_, err := agg.Lookup(context.Background(), "1 Main St")
	require.Error(t, err)
	assert.NotErrorIs(t, err, insights.ErrNotFound)
	assert.NotErrorIs(t, err, insights.ErrProviderAuth)
	assert.NotErrorIs(t, err, insights.ErrProviderFailure)
	assert.NotErrorIs(t, err, insights.ErrInvalidAddress)
}

func TestAggregator_Lookup_DegradesOnSupplementalFailures(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := obs.NewMetrics(logger)

	agg := newAggregator(insights.Sources{
		Property:     &mockProperty{props: []providers.RentcastProperty{sampleProperty()}},
		Details:      &mockDetails{err: providers.ErrNotConfigured},
		Demographics: &mockDemographics{err: errors.New("census down")},
		Market:       &mockMarket{err: &providers.StatusError{Provider: "fred", StatusCode: http.StatusBadGateway}},
		News:         &mockNews{err: errors.New("timeout")},
	}, &mockNarrator{}, metrics)

	got, err := agg.Lookup(context.Background(), "1 Main St")
	require.NoError(t, err)

	assert.Nil(t, got.CensusData)
	assert.Nil(t, got.ZillowData)
	assert.Nil(t, got.MarketData)
	assert.Nil(t, got.News)
	assert.Equal(t, "78244", got.ZipCode)
	assert.NotEmpty(t, got.HistoricalValues, "fallback history without an index")

	errs := metrics.Snapshot().ProviderErrors
	assert.Equal(t, map[string]int64{"census": 1, "fred": 1, "news": 1}, errs)
}

func TestAggregator_Lookup_SkipsCensusWithoutZip(t *testing.T) {
	prop := sampleProperty()
	prop.ZipCode = ""
	demographics := &mockDemographics{data: &types.CensusData{TotalPopulation: i(1)}}

	agg := newAggregator(insights.Sources{
		Property:     &mockProperty{props: []providers.RentcastProperty{prop}},
		Demographics: demographics,
	}, &mockNarrator{}, nil)

	got, err := agg.Lookup(context.Background(), "1 Main St")
	require.NoError(t, err)
	assert.Nil(t, got.CensusData)
	assert.Equal(t, int32(0), demographics.calls.Load())
}

func TestAggregator_Lookup_Timeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	agg := insights.NewAggregator(
		insights.Sources{Property: &mockProperty{delay: time.Second}},
		&forecast.Predictor{},
		&mockNarrator{},
		insights.Options{Timeout: 50 * time.Millisecond},
		obs.NewMetrics(logger),
		logger,
	)

	start := time.Now()
	_, err := agg.Lookup(context.Background(), "1 Main St")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAggregator_Lookup_ContextCancellation(t *testing.T) {
	agg := newAggregator(insights.Sources{
		Property: &mockProperty{delay: time.Second},
	}, &mockNarrator{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Lookup(ctx, "1 Main St")
	assert.ErrorIs(t, err, context.Canceled)
}
