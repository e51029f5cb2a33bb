package dashboard

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

const (
	chartBar       = "█"
	chartMinWidth  = 10
	chartDateWidth = len("2006-01-02")
)

// Chart draws one horizontal bar per point. Bars share a scale from 90% of the
// minimum to the maximum value so that small movements stay visible.
// It returns "" for an empty series.
func Chart(points []types.ValuePoint, width int, bar lipgloss.Style) string {
	if len(points) == 0 {
		return ""
	}

	labels := make([]string, len(points))
	labelWidth := 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		v := p.Value
		labels[i] = FormatCurrency(&v, 0)
		labelWidth = max(labelWidth, len(labels[i]))
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}

	barWidth := max(width-chartDateWidth-labelWidth-4, chartMinWidth)
	floor := lo * 0.9
	span := hi - floor

	var b strings.Builder
	for i, p := range points {
		n := barWidth
		if span > 0 {
			n = int(math.Round(float64(barWidth) * (p.Value - floor) / span))
		}
		n = max(n, 1)

		b.WriteString(p.Date)
		b.WriteString(" │")
		b.WriteString(bar.Render(strings.Repeat(chartBar, n)))
		b.WriteString(strings.Repeat(" ", barWidth-n+1))
		b.WriteString(labels[i])
		if i < len(points)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
