package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// Placeholder is shown for any absent or invalid value.
const Placeholder = "N/A"

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// groupingFormat returns the go-humanize format for the given number of decimals.
func groupingFormat(decimals int) string {
	if decimals <= 0 {
		return "#,###."
	}
	return "#,###." + strings.Repeat("#", decimals)
}

// FormatNumber groups thousands and rounds to decimals places.
func FormatNumber(v *float64, decimals int) string {
	if !usable(v) {
		return Placeholder
	}
	return humanize.FormatFloat(groupingFormat(decimals), *v)
}

// FormatCurrency formats a dollar amount, e.g. FormatCurrency(1234567, 0) is "$1,234,567".
func FormatCurrency(v *float64, decimals int) string {
	if !usable(v) {
		return Placeholder
	}
	amount, sign := *v, ""
	if amount < 0 {
		amount, sign = -amount, "-"
	}
	s := humanize.FormatFloat(groupingFormat(decimals), amount)
	if strings.Trim(s, "0.,") == "" {
		sign = ""
	}
	return sign + "$" + s
}

// FormatInt groups thousands of an integer.
func FormatInt(v *int) string {
	if v == nil {
		return Placeholder
	}
	return humanize.Comma(int64(*v))
}

// FormatPercent formats a 0..1 ratio as a whole percentage.
func FormatPercent(v *float64) string {
	if !usable(v) {
		return Placeholder
	}
	return humanize.FormatFloat("#,###.", *v*100) + "%"
}

// FormatChange formats a value that is already a percentage, with an explicit sign.
func FormatChange(v *float64) string {
	if !usable(v) {
		return Placeholder
	}
	s := humanize.FormatFloat("#,###.##", math.Abs(*v)) + "%"
	switch {
	case *v > 0:
		return "+" + s
	case *v < 0:
		return "-" + s
	default:
		return s
	}
}

var dateLayouts = []string{time.DateOnly, time.RFC3339Nano, time.RFC3339}

// FormatDate renders a YYYY-MM-DD or RFC 3339 timestamp as "Jan 2, 2006".
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return Placeholder
}

// FormatText returns s, or the placeholder when s is blank.
func FormatText(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// TrendStyle maps a market trend label onto its display style.
func TrendStyle(trend types.MarketTrend) lipgloss.Style {
	switch trend {
	case types.TrendIncreasing:
		return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	case types.TrendDecreasing:
		return lipgloss.NewStyle().Foreground(colorDestructive).Bold(true)
	case types.TrendStable:
		return lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorMuted)
	}
}

// TrendLabel prefixes a trend with its arrow.
func TrendLabel(trend types.MarketTrend) string {
	switch trend {
	case types.TrendIncreasing:
		return "▲ Increasing"
	case types.TrendDecreasing:
		return "▼ Decreasing"
	case types.TrendStable:
		return "► Stable"
	default:
		return Placeholder
	}
}
