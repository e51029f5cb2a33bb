package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// Section placeholders.
const (
	MsgNoDemographics = "Demographic data not available."
	MsgNoPrediction   = "Prediction could not be generated."
	MsgNoHistory      = "Historical value data not available."
	MsgNoMarket       = "Market indicator data not available."
	MsgNoNews         = "No recent market news."
	MsgNoSummary      = "AI summary not available."
	MsgLoading        = "Fetching property insights..."
)

// Markdown style names accepted by NewRenderer besides "auto".
const (
	StyleAuto  = "auto"
	StyleASCII = "ascii"
	StyleDark  = "dark"
	StyleLight = "light"
)

const defaultWidth = 80

// Renderer turns a State into terminal output.
type Renderer struct {
	width int
	style string
	md    *glamour.TermRenderer
}

// NewRenderer creates a Renderer wrapping at width. style selects the Markdown theme
// for the AI brief.
func NewRenderer(width int, style string) (*Renderer, error) {
	if width <= 0 {
		width = defaultWidth
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width - 4)}
	if style == "" || style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Renderer{width: width, style: style, md: md}, nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render draws the state: a loading line, exactly one alert, or the full dashboard.
func (r *Renderer) Render(s State) string {
	switch s := s.(type) {
	case Pending:
		return subtitleStyle.Render(MsgLoading)
	case Failed:
		return r.alert(s)
	case Ready:
		return r.dashboard(s.Data)
	default:
		return ""
	}
}

func (r *Renderer) alert(f Failed) string {
	style, title := errorAlertStyle, "Error"
	if f.Kind == KindNotFound {
		style, title = infoAlertStyle, "Not found"
	}
	return style.Width(r.width - 2).Render(lipgloss.NewStyle().Bold(true).Render(title) + "\n" + f.Message)
}

func (r *Renderer) dashboard(p *types.PropertyData) string {
	sections := []string{
		r.header(p),
		r.section("Valuation", r.valuation(p)),
		r.section("Predictions", r.predictions(p)),
		r.section("AI Brief", r.brief(p.AISummary)),
		r.section("Demographics", r.demographics(p.CensusData)),
		r.section("Historical Values", r.chart(p.HistoricalValues, historyBarStyle, MsgNoHistory)),
		r.section("Forecast", r.chart(p.PredictionPoints, forecastBarStyle, MsgNoPrediction)),
		r.section("Market Indicators", r.market(p.MarketData)),
		r.section("News", r.news(p.News)),
		r.section("Details", r.details(p)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (r *Renderer) header(p *types.PropertyData) string {
	title := p.FormattedAddress
	if title == "" {
		title = p.Address
	}
	var sub []string
	if p.PropertyType != "" {
		sub = append(sub, p.PropertyType)
	}
	if p.County != "" {
		sub = append(sub, p.County+" County")
	}
	out := titleStyle.Render(title)
	if len(sub) > 0 {
		out += "\n" + subtitleStyle.Render(strings.Join(sub, " · "))
	}
	return out
}

func (r *Renderer) section(title, body string) string {
	return sectionStyle.Width(r.width - 2).Render(sectionTitleStyle.Render(title) + "\n" + body)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func rangeOf(lo, hi *float64) string {
	if lo == nil && hi == nil {
		return Placeholder
	}
	return FormatCurrency(lo, 0) + " - " + FormatCurrency(hi, 0)
}

func (r *Renderer) valuation(p *types.PropertyData) string {
	rows := []string{
		row("Estimated value", FormatCurrency(p.ValueEstimate, 0)),
		row("Value range", rangeOf(p.ValueEstimateLow, p.ValueEstimateHigh)),
		row("Estimated rent", FormatCurrency(p.RentEstimate, 0)+"/mo"),
		row("Rent range", rangeOf(p.RentEstimateLow, p.RentEstimateHigh)),
		row("Last sold", FormatCurrency(p.LastSoldPrice, 0)+" on "+FormatDate(p.LastSoldDate)),
	}
	if p.ZillowData != nil && p.ZillowData.Price != nil {
		rows = append(rows, row("Zillow price", FormatCurrency(p.ZillowData.Price, 0)))
	}
	return strings.Join(rows, "\n")
}

func (r *Renderer) predictions(p *types.PropertyData) string {
	trend := TrendStyle(p.MarketTrend).Render(TrendLabel(p.MarketTrend))
	return strings.Join([]string{
		row("Value next year", FormatCurrency(p.PredictedValueNextYear, 0)),
		row("Rent next year", FormatCurrency(p.PredictedRentNextYear, 0)+"/mo"),
		row("Confidence", FormatPercent(p.PredictionConfidence)),
		row("Market trend", trend+" ("+FormatPercent(p.TrendConfidence)+" confidence)"),
	}, "\n")
}

func (r *Renderer) brief(summary string) string {
	if strings.TrimSpace(summary) == "" {
		return placeholderStyle.Render(MsgNoSummary)
	}
	out, err := r.md.Render(summary)
	if err != nil {
		return summary
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) demographics(c *types.CensusData) string {
	if c.Empty() {
		return placeholderStyle.Render(MsgNoDemographics)
	}
	return strings.Join([]string{
		row("Total population", FormatInt(c.TotalPopulation)),
		row("Male", FormatInt(c.MalePopulation)),
		row("Female", FormatInt(c.FemalePopulation)),
		row("Median age", FormatNumber(c.MedianAge, 1)),
	}, "\n")
}

func (r *Renderer) chart(points []types.ValuePoint, bar lipgloss.Style, empty string) string {
	if len(points) == 0 {
		return placeholderStyle.Render(empty)
	}
	return Chart(points, r.width-6, bar)
}

func (r *Renderer) market(m *types.MarketData) string {
	if m == nil {
		return placeholderStyle.Render(MsgNoMarket)
	}
	return strings.Join([]string{
		row("Series", FormatText(m.SeriesID)),
		row("Latest value", FormatNumber(m.LatestValue, 2)+" ("+FormatDate(m.LatestDate)+")"),
		row("Year over year", FormatChange(m.YearOverYearChange)),
	}, "\n")
}

func (r *Renderer) news(articles []types.NewsArticle) string {
	if len(articles) == 0 {
		return placeholderStyle.Render(MsgNoNews)
	}
	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		line := "• " + a.Title
		if meta := newsMeta(a); meta != "" {
			line += "\n  " + subtitleStyle.Render(meta)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func newsMeta(a types.NewsArticle) string {
	var parts []string
	if a.Source != "" {
		parts = append(parts, a.Source)
	}
	if d := FormatDate(a.PublishedAt); d != Placeholder {
		parts = append(parts, d)
	}
	if a.URL != "" {
		parts = append(parts, a.URL)
	}
	return strings.Join(parts, " · ")
}

func (r *Renderer) details(p *types.PropertyData) string {
	rows := []string{
		row("Bedrooms", FormatInt(p.Bedrooms)),
		row("Bathrooms", FormatNumber(p.Bathrooms, 1)),
		row("Square footage", FormatInt(p.SquareFootage)),
		row("Lot size", FormatInt(p.LotSize)),
		row("Year built", FormatInt(p.YearBuilt)),
		row("Property type", FormatText(p.PropertyType)),
		row("ZIP code", FormatText(p.ZipCode)),
	}
	if p.Latitude != nil && p.Longitude != nil {
		rows = append(rows, row("Coordinates", FormatNumber(p.Latitude, 5)+", "+FormatNumber(p.Longitude, 5)))
	}
	if p.ZillowData != nil && p.ZillowData.ZPID != "" {
		rows = append(rows, row("Zillow ID", p.ZillowData.ZPID))
	}
	if p.Description != "" {
		rows = append(rows, "", p.Description)
	}
	return strings.Join(rows, "\n")
}
