// Package forecast produces the heuristic one-year outlook and the value history
// attached to every property lookup.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

const (
	defaultBaseValue      = 550000
	minBaseValue          = 50000
	avgSqftValue          = 650
	bedroomValueAdj       = 35000
	bathroomValueAdj      = 20000
	depreciationPerYear   = 0.001
	minAgeFactor          = 0.85
	annualAppreciation    = 0.04
	annualRentGrowth      = 0.03
	maxMarketAppreciation = 0.10
	predictionYears       = 3

	// stableBand is the year-over-year index change (percent) still considered flat.
	stableBand = 1.0
)

var propertyTypeFactors = map[string]float64{
	"Single Family": 1.05,
	"Condo":         1.0,
	"Townhouse":     1.02,
	"Multi Family":  0.95,
	"Apartment":     1.0,
}

// locationFactors adjusts value for ZIP codes with a known premium or discount.
var locationFactors = map[string]float64{
	"10005": 1.3, "10013": 1.4, "10019": 1.25, "10128": 1.2,
	"11201": 1.2, "11211": 1.15, "11215": 1.1, "11243": 1.1,
	"11102": 1.0, "11375": 1.05, "11104": 0.98,
	"10463": 0.95, "10471": 1.0,
	"10301": 0.9, "10309": 0.85,
}

// Subject is the subset of a property record the model reads.
type Subject struct {
	ValueEstimate *float64
	RentEstimate  *float64
	SquareFootage *int
	Bedrooms      *int
	Bathrooms     *float64
	YearBuilt     *int
	PropertyType  string
	ZipCode       string
}

// Prediction is the one-year outlook for a property.
type Prediction struct {
	ValueNextYear   *float64
	RentNextYear    *float64
	Confidence      float64
	Trend           types.MarketTrend
	TrendConfidence float64
	// Points starts at January 1st of the current year and adds one point per year.
	Points []types.ValuePoint
}

// Predictor runs the heuristic model. The zero value uses time.Now.
type Predictor struct {
	Now func() time.Time
}

// New creates a Predictor using the wall clock.
func New() *Predictor {
	return &Predictor{Now: time.Now}
}

func (p *Predictor) now() time.Time {
	if p == nil || p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Predict computes the outlook for s. market may be nil; when present its year-over-year
// change drives both the trend label and the appreciation rate.
func (p *Predictor) Predict(s Subject, market *types.MarketData) Prediction {
	now := p.now()
	base, confidence := baseValue(s, now.Year())

	rate := annualAppreciation
	trend, trendConfidence := locationTrend(s.ZipCode)
	if market != nil && market.YearOverYearChange != nil {
		yoy := *market.YearOverYearChange
		rate = clamp(yoy/100, -maxMarketAppreciation, maxMarketAppreciation)
		trend, trendConfidence = marketTrend(yoy)
	}

	points := make([]types.ValuePoint, 0, predictionYears+1)
	value := base
	points = append(points, types.ValuePoint{Date: yearStart(now.Year()), Value: math.Round(value)})
	for i := 1; i <= predictionYears; i++ {
		value *= 1 + rate
		points = append(points, types.ValuePoint{Date: yearStart(now.Year() + i), Value: math.Round(value)})
	}

	pred := Prediction{
		Confidence:      confidence,
		Trend:           trend,
		TrendConfidence: trendConfidence,
		Points:          points,
	}
	next := points[1].Value
	pred.ValueNextYear = &next

	if s.RentEstimate != nil && *s.RentEstimate > 0 {
		rent := math.Round(*s.RentEstimate * (1 + annualRentGrowth))
		pred.RentNextYear = &rent
	}
	return pred
}

// baseValue blends the provider estimate with feature adjustments and returns the
// value and a confidence in [0.5, 0.95].
func baseValue(s Subject, currentYear int) (float64, float64) {
	base := float64(defaultBaseValue)
	confidence := 0.50
	hasEstimate := s.ValueEstimate != nil && *s.ValueEstimate > 0
	if hasEstimate {
		base = *s.ValueEstimate
		confidence = 0.75
	}

	if s.SquareFootage != nil && *s.SquareFootage > 100 {
		fromSqft := float64(*s.SquareFootage) * avgSqftValue
		if hasEstimate {
			base = base*0.7 + fromSqft*0.3
			confidence = math.Min(0.9, confidence+0.05)
		} else if fromSqft > 200000 && fromSqft < 10000000 {
			base = fromSqft
			confidence = 0.60
		}
	}

	if s.Bedrooms != nil && *s.Bedrooms > 0 {
		base += float64(*s.Bedrooms-3) * bedroomValueAdj
		confidence = math.Min(0.9, confidence+0.02)
	}
	if s.Bathrooms != nil && *s.Bathrooms > 0 {
		base += (*s.Bathrooms - 2) * bathroomValueAdj
		confidence = math.Min(0.9, confidence+0.01)
	}

	if s.YearBuilt != nil && *s.YearBuilt > 1800 && *s.YearBuilt <= currentYear {
		age := float64(currentYear - *s.YearBuilt)
		base *= math.Max(minAgeFactor, 1-age*depreciationPerYear)
		confidence = math.Min(0.9, confidence+0.02)
	}

	if f, ok := propertyTypeFactors[s.PropertyType]; ok {
		base *= f
	}

	if f, ok := locationFactors[s.ZipCode]; ok {
		base *= f
		if f != 1.0 {
			confidence = math.Min(0.95, confidence+0.05)
		}
	}

	base = math.Max(minBaseValue, base)
	confidence = math.Round(clamp(confidence, 0.5, 0.95)*100) / 100
	return base, confidence
}

func locationTrend(zip string) (types.MarketTrend, float64) {
	f, ok := locationFactors[zip]
	switch {
	case ok && f < 0.95:
		return types.TrendStable, 0.60
	case ok && f > 1.2:
		return types.TrendIncreasing, 0.80
	default:
		return types.TrendIncreasing, 0.70
	}
}

func marketTrend(yoy float64) (types.MarketTrend, float64) {
	switch {
	case yoy > stableBand:
		return types.TrendIncreasing, 0.75
	case yoy < -stableBand:
		return types.TrendDecreasing, 0.75
	default:
		return types.TrendStable, 0.65
	}
}

func yearStart(year int) string {
	return fmt.Sprintf("%04d-01-01", year)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
