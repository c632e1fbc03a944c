package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rotorsim/internal/experiment"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

// WriteSummary prints the headline figures of a run in a bordered panel.
func WriteSummary(w io.Writer, run *experiment.Run) error {
	cfg := run.Config

	var b strings.Builder
	b.WriteString(titleStyle.Render("rotorsim run"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("mode", cfg.Drive.Mode)
	row("integrator", cfg.Simulation.Integrator)
	row("samples", fmt.Sprintf("%d", len(run.Samples)))
	row("horizon", fmt.Sprintf("%gs @ %gs", cfg.Simulation.TotalTime, cfg.Simulation.SampleTime))
	row("elapsed", run.Elapsed.String())
	row("final rpm", fmt.Sprintf("%.2f", run.FinalRPM()))

	if r := run.Response; r != nil {
		row("reference rpm", fmt.Sprintf("%.2f", r.Reference))
		row("steady-state error", fmt.Sprintf("%.2f rpm", r.SteadyStateError))
		row("overshoot", fmt.Sprintf("%.2f%%", r.OvershootPercent))
		row("rise time", seconds(r.RiseTime))
		row("settling time", seconds(r.SettlingTime))
		row("ITAE", fmt.Sprintf("%.4g", r.ITAE))
	}

	names := make([]string, 0, len(run.Metrics))
	for name := range run.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.6f", run.Metrics[name]))
	}

	_, err := fmt.Fprintln(w, panelStyle.Render(strings.TrimRight(b.String(), "\n")))
	return err
}

func seconds(v float64) string {
	if math.IsNaN(v) {
		return "not reached"
	}
	return fmt.Sprintf("%.2fs", v)
}
