package display

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// New creates a new formatter based on configuration.
//
// Parameters:
//   - cfg: Formatter configuration
//
// Returns a configured Formatter.
func New(cfg Config) Formatter {
	if cfg.Format == "" {
		cfg.Format = FormatTable
	}

	switch cfg.Format {
	case FormatJSON:
		return &jsonFormatter{config: cfg}
	case FormatSimple:
		return &simpleFormatter{config: cfg}
	case FormatTable:
		fallthrough
	default:
		return &tableFormatter{config: cfg, styles: newStyles(cfg.Color)}
	}
}

// IsTerminal reports whether fd refers to a terminal. Callers use it to
// decide Config.Color.
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// styles holds the lipgloss styles of table output. Without color every
// style renders its input unchanged.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	bar    lipgloss.Style
	good   lipgloss.Style
	muted  lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, header: plain, bar: plain, good: plain, muted: plain}
	}

	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		header: lipgloss.NewStyle().Bold(true).Underline(true),
		bar:    lipgloss.NewStyle().Foreground(lipgloss.Color("99")),
		good:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// formatNumber formats a number with thousand separators.
func formatNumber(n int) string {
	return humanize.Comma(int64(n))
}

// formatFloat formats a float with specified precision, rounding half away
// from zero.
func formatFloat(f float64, precision int) string {
	p := math.Pow(10, float64(precision))
	return strconv.FormatFloat(math.Round(f*p)/p, 'f', precision, 64)
}

// formatHours renders a rounded hour count without trailing zeros,
// e.g. 4.8 or 12.
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// progressBar renders pct (0..100) as a bar of width cells.
func progressBar(pct float64, width int) string {
	pct = math.Max(0, math.Min(100, pct))
	filled := int(math.Round(pct / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// dailyPercent is a day's hours relative to one default-length session,
// capped at 100.
func dailyPercent(minutes, defaultDuration int) float64 {
	if defaultDuration <= 0 {
		return 0
	}
	return math.Min(float64(minutes)/float64(defaultDuration)*100, 100)
}

// insight is the one-paragraph summary of a skill's practice.
func insight(p Progress) string {
	m := p.Metrics
	return fmt.Sprintf("You've practiced %s for %s hours over %d days (%d practice days). "+
		"Your consistency rate is %d%% with an average of %d minutes per session.",
		p.Skill.Name, formatHours(m.TotalHoursRounded), m.TimeRange, m.DaysPracticed,
		m.ConsistencyPercent, m.AvgMinutesPerSession)
}

// emptyProgress is shown for a skill without sessions.
func emptyProgress(name string) string {
	return fmt.Sprintf("No sessions logged for %s yet. Log your first session to start tracking progress.", name)
}

// writeHeader writes a section header.
func writeHeader(w io.Writer, title string, compact bool, st styles) error {
	if compact {
		_, err := fmt.Fprintf(w, "%s\n", st.title.Render(title))
		return err
	}

	separator := strings.Repeat("=", lipgloss.Width(title))
	_, err := fmt.Fprintf(w, "\n%s\n%s\n\n", st.title.Render(title), separator)
	return err
}
