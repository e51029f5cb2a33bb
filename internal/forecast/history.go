package forecast

import (
	"math"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
	"github.com/alex-user-go/sheltersignal/internal/providers"
)

// fallbackHistory is applied to the current value when no index series is available.
var fallbackHistory = []struct {
	yearsAgo   int
	month      time.Month
	multiplier float64
}{
	{2, time.January, 0.90},
	{2, time.July, 0.95},
	{1, time.January, 1.00},
	{1, time.July, 1.02},
}

// Market summarizes an ascending index series. It returns nil for an empty series.
func Market(seriesID string, obs []providers.Observation) *types.MarketData {
	if len(obs) == 0 {
		return nil
	}
	latest := obs[len(obs)-1]
	md := &types.MarketData{
		SeriesID:    seriesID,
		LatestDate:  latest.Date.Format(time.DateOnly),
		LatestValue: &latest.Value,
	}

	target := latest.Date.AddDate(-1, 0, 0)
	if prior, ok := closestOnOrBefore(obs, target); ok && prior.Value > 0 {
		change := math.Round((latest.Value/prior.Value-1)*10000) / 100
		md.YearOverYearChange = &change
	}
	return md
}

// History returns the historical value series for a property, ascending by date.
// With at least two index observations the current value is projected backwards along
// the index, one point per quarter. Otherwise a fixed fallback curve is used.
func (p *Predictor) History(currentValue *float64, obs []providers.Observation) []types.ValuePoint {
	base := float64(defaultBaseValue)
	if currentValue != nil && *currentValue > 0 {
		base = *currentValue
	}

	if len(obs) >= 2 && obs[len(obs)-1].Value > 0 {
		if points := indexHistory(base, obs); len(points) >= 2 {
			return points
		}
	}

	year := p.now().Year()
	points := make([]types.ValuePoint, 0, len(fallbackHistory))
	for _, h := range fallbackHistory {
		d := time.Date(year-h.yearsAgo, h.month, 1, 0, 0, 0, 0, time.UTC)
		points = append(points, types.ValuePoint{
			Date:  d.Format(time.DateOnly),
			Value: math.Round(base * h.multiplier),
		})
	}
	return points
}

func indexHistory(base float64, obs []providers.Observation) []types.ValuePoint {
	latest := obs[len(obs)-1]
	var points []types.ValuePoint
	for i, o := range obs {
		isLast := i == len(obs)-1
		if !isLast && (o.Date.Month()-1)%3 != 0 {
			continue
		}
		if !isLast && o.Date.Year() == latest.Date.Year() && o.Date.Month() == latest.Date.Month() {
			continue
		}
		points = append(points, types.ValuePoint{
			Date:  o.Date.Format(time.DateOnly),
			Value: math.Round(base * o.Value / latest.Value),
		})
	}
	return points
}

func closestOnOrBefore(obs []providers.Observation, target time.Time) (providers.Observation, bool) {
	var (
		best  providers.Observation
		found bool
	)
	for _, o := range obs {
		if o.Date.After(target) {
			break
		}
		best, found = o, true
	}
	return best, found
}
