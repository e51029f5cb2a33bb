package forecast

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
	"github.com/alex-user-go/sheltersignal/internal/providers"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
}

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func TestPredict_EstimateOnly(t *testing.T) {
	p := &Predictor{Now: fixedClock()}
	pred := p.Predict(Subject{ValueEstimate: f64(400000)}, nil)

	require.Len(t, pred.Points, predictionYears+1)
	assert.Equal(t, types.ValuePoint{Date: "2025-01-01", Value: 400000}, pred.Points[0])
	assert.Equal(t, types.ValuePoint{Date: "2026-01-01", Value: 416000}, pred.Points[1])
	assert.Equal(t, types.ValuePoint{Date: "2028-01-01", Value: 449946}, pred.Points[3])

	require.NotNil(t, pred.ValueNextYear)
	assert.Equal(t, 416000.0, *pred.ValueNextYear)
	assert.Nil(t, pred.RentNextYear)
	assert.Equal(t, 0.75, pred.Confidence)
	assert.Equal(t, types.TrendIncreasing, pred.Trend)
	assert.Equal(t, 0.70, pred.TrendConfidence)
}

func TestPredict_NoData(t *testing.T) {
	p := &Predictor{Now: fixedClock()}
	pred := p.Predict(Subject{}, nil)

	assert.Equal(t, 550000.0, pred.Points[0].Value)
	assert.Equal(t, 0.5, pred.Confidence)
}

func TestPredict_AllFeatures(t *testing.T) {
	p := &Predictor{Now: fixedClock()}
	pred := p.Predict(Subject{
		ValueEstimate: f64(500000),
		RentEstimate:  f64(2000),
		SquareFootage: i(2000),
		Bedrooms:      i(4),
		Bathrooms:     f64(3),
		YearBuilt:     i(2005),
		PropertyType:  "Single Family",
		ZipCode:       "10013",
	}, nil)

	assert.InDelta(t, 1145277, pred.Points[0].Value, 1)
	assert.Equal(t, 0.9, pred.Confidence)
	assert.Equal(t, types.TrendIncreasing, pred.Trend)
	assert.Equal(t, 0.80, pred.TrendConfidence)
	require.NotNil(t, pred.RentNextYear)
	assert.Equal(t, 2060.0, *pred.RentNextYear)
}

func TestPredict_DiscountedLocationIsStable(t *testing.T) {
	p := &Predictor{Now: fixedClock()}
	pred := p.Predict(Subject{ValueEstimate: f64(400000), ZipCode: "10309"}, nil)

	assert.Equal(t, types.TrendStable, pred.Trend)
	assert.Equal(t, 0.60, pred.TrendConfidence)
}

func TestPredict_MarketDrivesTrend(t *testing.T) {
	tests := []struct {
		name      string
		yoy       float64
		wantTrend types.MarketTrend
		wantNext  float64
	}{
		{name: "rising", yoy: 6, wantTrend: types.TrendIncreasing, wantNext: 424000},
		{name: "falling", yoy: -3, wantTrend: types.TrendDecreasing, wantNext: 388000},
		{name: "flat", yoy: 0.5, wantTrend: types.TrendStable, wantNext: 402000},
		{name: "capped", yoy: 40, wantTrend: types.TrendIncreasing, wantNext: 440000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Predictor{Now: fixedClock()}
			market := &types.MarketData{SeriesID: "S", YearOverYearChange: f64(tt.yoy)}
			pred := p.Predict(Subject{ValueEstimate: f64(400000)}, market)

			assert.Equal(t, tt.wantTrend, pred.Trend)
			require.NotNil(t, pred.ValueNextYear)
			assert.InDelta(t, tt.wantNext, *pred.ValueNextYear, 0.5)
		})
	}
}

func TestHistory_Fallback(t *testing.T) {
	p := &Predictor{Now: fixedClock()}
	got := p.History(f64(300000), nil)

	want := []types.ValuePoint{
		{Date: "2023-01-01", Value: 270000},
		{Date: "2023-07-01", Value: 285000},
		{Date: "2024-01-01", Value: 300000},
		{Date: "2024-07-01", Value: 306000},
	}
	assert.Equal(t, want, got)
}

func monthlySeries(start time.Time, values ...float64) []providers.Observation {
	obs := make([]providers.Observation, 0, len(values))
	for n, v := range values {
		obs = append(obs, providers.Observation{Date: start.AddDate(0, n, 0), Value: v})
	}
	return obs
}

func TestHistory_FromIndex(t *testing.T) {
	p := &Predictor{Now: fixedClock()}
	obs := monthlySeries(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112)

	got := p.History(f64(112000), obs)

	want := []types.ValuePoint{
		{Date: "2024-01-01", Value: 100000},
		{Date: "2024-04-01", Value: 103000},
		{Date: "2024-07-01", Value: 106000},
		{Date: "2024-10-01", Value: 109000},
		{Date: "2025-01-01", Value: 112000},
	}
	assert.Equal(t, want, got)
	assert.True(t, sort.SliceIsSorted(got, func(a, b int) bool { return got[a].Date < got[b].Date }))
}

func TestMarket(t *testing.T) {
	assert.Nil(t, Market("S", nil))

	obs := monthlySeries(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112)
	md := Market("CSUSHPINSA", obs)

	require.NotNil(t, md)
	assert.Equal(t, "CSUSHPINSA", md.SeriesID)
	assert.Equal(t, "2025-01-01", md.LatestDate)
	require.NotNil(t, md.LatestValue)
	assert.Equal(t, 112.0, *md.LatestValue)
	require.NotNil(t, md.YearOverYearChange)
	assert.Equal(t, 12.0, *md.YearOverYearChange)

	short := Market("S", obs[6:])
	assert.Nil(t, short.YearOverYearChange, "less than a year of data has no YoY change")
}
