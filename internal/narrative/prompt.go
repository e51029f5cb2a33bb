package narrative

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

const notAvailable = "N/A"

const promptTemplate = `Analyze the following real estate property data and generate a concise investment summary in Markdown format. Be informative but cautious, acting like a helpful real estate analysis assistant.

**Property Details:**
*   Address: %s
*   Type: %s
*   Bedrooms: %s
*   Bathrooms: %s
*   Square Footage: %s sqft
*   Year Built: %s

**Current Market Data (Estimates):**
*   Estimated Value: %s
*   Estimated Rent: %s

**Forecast & Prediction (1-Year Outlook):**
*   Predicted Value: %s
*   Market Trend: %s
*   Prediction Confidence: %s

**Location Context (Zip Code: %s):**
*   Total Population (Zip): %s
*   Median Age (Zip): %s

**Instructions:**
1.  Provide a brief **Property Overview**.
2.  Summarize the **Current Market Snapshot** based on estimates.
3.  Explain the **Future Outlook** based on the prediction.
4.  Briefly mention the **Location Context** using demographic data.
5.  Keep the tone professional and objective. Use Markdown for structure (bolding, bullet points).
6.  Include a short disclaimer at the end stating this is AI-generated analysis and not financial advice.
7.  Do not invent data not provided above. If data is 'N/A', acknowledge the limitation.`

// BuildPrompt renders the analysis prompt for p. Missing values are written as N/A.
func BuildPrompt(p *types.PropertyData) string {
	address := p.FormattedAddress
	if address == "" {
		address = "the property"
	}

	population, medianAge := notAvailable, notAvailable
	if p.CensusData != nil {
		population = intOrNA(p.CensusData.TotalPopulation)
		if p.CensusData.MedianAge != nil {
			medianAge = strconv.FormatFloat(*p.CensusData.MedianAge, 'f', 1, 64)
		}
	}

	trend := string(p.MarketTrend)
	if trend == "" {
		trend = string(types.TrendUnknown)
	}

	confidence := "0%"
	if p.PredictionConfidence != nil {
		confidence = fmt.Sprintf("%.0f%%", *p.PredictionConfidence*100)
	}

	rent := notAvailable
	if p.RentEstimate != nil {
		rent = dollars(p.RentEstimate) + "/mo"
	}

	return fmt.Sprintf(promptTemplate,
		address,
		orNA(p.PropertyType),
		intOrNA(p.Bedrooms),
		floatOrNA(p.Bathrooms),
		intOrNA(p.SquareFootage),
		plainIntOrNA(p.YearBuilt),
		dollars(p.ValueEstimate),
		rent,
		dollars(p.PredictedValueNextYear),
		trend,
		confidence,
		orNA(p.ZipCode),
		population,
		medianAge,
	)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func intOrNA(v *int) string {
	if v == nil {
		return notAvailable
	}
	return humanize.Comma(int64(*v))
}

func plainIntOrNA(v *int) string {
	if v == nil {
		return notAvailable
	}
	return strconv.Itoa(*v)
}

func floatOrNA(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func dollars(v *float64) string {
	if v == nil || *v == 0 {
		return notAvailable
	}
	return "$" + humanize.Comma(int64(math.Round(*v)))
}
