package types

// MarketTrend is the one-year direction label attached to a prediction.
type MarketTrend string

const (
	TrendIncreasing MarketTrend = "Increasing"
	TrendDecreasing MarketTrend = "Decreasing"
	TrendStable     MarketTrend = "Stable"
	TrendUnknown    MarketTrend = "Unknown"
)

// PropertyData is the unified record returned for one address lookup.
// Every field is optional; an absent field means the owning provider had no data.
type PropertyData struct {
	// Rentcast identity and location
	ID               string   `json:"id,omitempty"`
	Address          string   `json:"address,omitempty"`
	FormattedAddress string   `json:"formattedAddress,omitempty"`
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
	ZipCode          string   `json:"zipCode,omitempty"`
	County           string   `json:"county,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`

	// Rentcast details
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	SquareFootage *int     `json:"squareFootage,omitempty"`
	LotSize       *int     `json:"lotSize,omitempty"`
	YearBuilt     *int     `json:"yearBuilt,omitempty"`
	PropertyType  string   `json:"propertyType,omitempty"`
	Description   string   `json:"description,omitempty"`

	// Rentcast valuation and rent
	ValueEstimate     *float64 `json:"valueEstimate,omitempty"`
	ValueEstimateLow  *float64 `json:"valueEstimateLow,omitempty"`
	ValueEstimateHigh *float64 `json:"valueEstimateHigh,omitempty"`
	RentEstimate      *float64 `json:"rentEstimate,omitempty"`
	RentEstimateLow   *float64 `json:"rentEstimateLow,omitempty"`
	RentEstimateHigh  *float64 `json:"rentEstimateHigh,omitempty"`
	LastSoldDate      string   `json:"lastSoldDate,omitempty"`
	LastSoldPrice     *float64 `json:"lastSoldPrice,omitempty"`

	// One-year prediction
	PredictedValueNextYear *float64    `json:"predictedValueNextYear,omitempty"`
	PredictedRentNextYear  *float64    `json:"predictedRentNextYear,omitempty"`
	PredictionConfidence   *float64    `json:"predictionConfidence,omitempty"`
	MarketTrend            MarketTrend `json:"marketTrend,omitempty"`
	TrendConfidence        *float64    `json:"trendConfidence,omitempty"`

	HistoricalValues []ValuePoint `json:"historicalValues,omitempty"`
	PredictionPoints []ValuePoint `json:"predictionPoints,omitempty"`

	CensusData *CensusData   `json:"censusData,omitempty"`
	ZillowData *ZillowData   `json:"zillowData,omitempty"`
	MarketData *MarketData   `json:"marketData,omitempty"`
	News       []NewsArticle `json:"news,omitempty"`

	AISummary string `json:"aiSummary,omitempty"`
}

// ValuePoint is one dated value in a historical or predicted series.
// Date is formatted YYYY-MM-DD.
type ValuePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// CensusData holds ACS demographic profile values for the property's ZIP code.
type CensusData struct {
	TotalPopulation  *int     `json:"totalPopulation,omitempty"`
	MalePopulation   *int     `json:"malePopulation,omitempty"`
	FemalePopulation *int     `json:"femalePopulation,omitempty"`
	MedianAge        *float64 `json:"medianAge,omitempty"`
}

// Empty reports whether no demographic value is present.
func (c *CensusData) Empty() bool {
	return c == nil || (c.TotalPopulation == nil && c.MalePopulation == nil &&
		c.FemalePopulation == nil && c.MedianAge == nil)
}

type ZillowData struct {
	ZPID    string   `json:"zpid,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Address string   `json:"address,omitempty"`
}

// MarketData summarizes the economic indicator series (FRED).
type MarketData struct {
	SeriesID           string   `json:"seriesId"`
	LatestDate         string   `json:"latestDate,omitempty"`
	LatestValue        *float64 `json:"latestValue,omitempty"`
	YearOverYearChange *float64 `json:"yearOverYearChange,omitempty"` // percent
}

type NewsArticle struct {
	Title       string `json:"title"`
	Source      string `json:"source,omitempty"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Description string `json:"description,omitempty"`
}
