package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fold/internal/experiment"
)

// Series names accepted by Extract.
const (
	SeriesEnergy     = "energy"
	SeriesIterations = "iterations"
	SeriesBeta       = "beta"
)

// Extract pulls a named series out of step records. Any other name of the
// form "x<i>" selects position component i.
func Extract(records []experiment.StepRecord, series string) ([]float64, error) {
	out := make([]float64, 0, len(records))
	switch series {
	case SeriesEnergy:
		for _, r := range records {
			out = append(out, r.Energy)
		}
	case SeriesIterations:
		for _, r := range records {
			out = append(out, float64(r.Iterations))
		}
	case SeriesBeta:
		for _, r := range records {
			out = append(out, r.Beta)
		}
	default:
		var idx int
		if _, err := fmt.Sscanf(series, "x%d", &idx); err != nil || idx < 0 {
			return nil, fmt.Errorf("unknown series %q", series)
		}
		for _, r := range records {
			if idx >= len(r.Positions) {
				return nil, fmt.Errorf("series %q out of range (%d dofs)", series, len(r.Positions))
			}
			out = append(out, r.Positions[idx])
		}
	}
	return out, nil
}

// Plot renders data as an ASCII chart.
func Plot(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}

// RenderSummary formats the outcome of a run.
func RenderSummary(res *experiment.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("fold · "+res.Scenario) + "\n\n")

	if n := len(res.Records); n > 0 {
		last := res.Records[n-1]
		b.WriteString(row("steps", fmt.Sprintf("%d", n)))
		b.WriteString(row("time", fmt.Sprintf("%.3fs", last.Time)))
		b.WriteString(row("final beta", fmt.Sprintf("%.6g", last.Beta)))
		b.WriteString(row("final energy", fmt.Sprintf("%.3e", last.Energy)))
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(row(name, fmt.Sprintf("%.6g", res.Metrics[name])))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value)) + "\n"
}
