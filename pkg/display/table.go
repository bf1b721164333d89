package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

const barWidth = 20

// tableFormatter formats output as tables.
type tableFormatter struct {
	config Config
	styles styles
}

// FormatSkills implements Formatter.FormatSkills.
func (f *tableFormatter) FormatSkills(w io.Writer, skills []SkillSummary) error {
	if err := writeHeader(w, "Skills", f.config.Compact, f.styles); err != nil {
		return err
	}

	header := []string{"Name", "Hours", "Target", "Progress", "Sessions", "Last Practiced", "ID"}

	rows := make([][]string, len(skills))
	for i, s := range skills {
		hours, progress, sessions, last := "0", formatFloat(0, 1)+"%", "0", "-"
		if m := s.Metrics; m != nil {
			hours = formatHours(m.TotalHoursRounded)
			progress = formatFloat(m.ProgressPercentage, 1) + "%"
			sessions = formatNumber(m.TotalSessions)
			last = m.LastDate.Long()
		}
		rows[i] = []string{
			s.Skill.Name,
			hours,
			formatNumber(s.Skill.Settings.TargetHours),
			progress,
			sessions,
			last,
			s.Skill.ID,
		}
	}

	return f.writeTable(w, header, rows)
}

// FormatProgress implements Formatter.FormatProgress.
func (f *tableFormatter) FormatProgress(w io.Writer, p Progress) error {
	if err := writeHeader(w, p.Skill.Name+" Progress", f.config.Compact, f.styles); err != nil {
		return err
	}

	if p.Metrics == nil {
		_, err := fmt.Fprintln(w, emptyProgress(p.Skill.Name))
		return err
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", f.styles.title.Render("Insight:"), insight(p)); err != nil {
		return err
	}

	if err := f.writeMilestone(w, p); err != nil {
		return err
	}

	m := p.Metrics
	if err := writeHeader(w, "Overview", f.config.Compact, f.styles); err != nil {
		return err
	}
	overview := [][]string{
		{"Total Hours", formatHours(m.TotalHoursRounded) + "h"},
		{"Sessions", formatNumber(m.TotalSessions)},
		{"Practice Days", formatNumber(m.DaysPracticed)},
		{"Consistency", fmt.Sprintf("%d%%", m.ConsistencyPercent)},
		{"Avg Session", fmt.Sprintf("%dm", m.AvgMinutesPerSession)},
		{"First Session", m.StartDate.Long()},
		{"Last Session", m.LastDate.Long()},
	}
	if err := f.writeTable(w, []string{"Metric", "Value"}, overview); err != nil {
		return err
	}

	if f.config.Compact {
		return nil
	}

	if err := f.writeDaily(w, p); err != nil {
		return err
	}
	if len(p.Sessions) == 0 {
		return nil
	}
	return f.writeSessions(w, p.Sessions)
}

// writeMilestone writes the mastery goal block.
func (f *tableFormatter) writeMilestone(w io.Writer, p Progress) error {
	m := p.Metrics
	title := fmt.Sprintf("%s-Hour Mastery Goal", formatNumber(m.TargetHours))
	if err := writeHeader(w, title, f.config.Compact, f.styles); err != nil {
		return err
	}

	lines := []string{
		fmt.Sprintf("%s %s%%", f.styles.bar.Render(progressBar(m.ProgressPercentage, barWidth)),
			formatFloat(m.ProgressPercentage, 1)),
		fmt.Sprintf("%s / %s hours", formatHours(m.TotalHoursRounded), formatNumber(m.TargetHours)),
	}

	if m.IsMilestoneReached {
		lines = append(lines,
			fmt.Sprintf("+%sh above goal", formatFloat(m.HoursAbove, 1)),
			f.styles.good.Render(fmt.Sprintf("Milestone reached! You've reached the %s-hour mastery milestone.",
				formatNumber(m.TargetHours))),
		)
	} else {
		lines = append(lines, fmt.Sprintf("%sh remaining", formatFloat(m.HoursRemaining, 1)))
		if m.EstimatedTimeText != "" && m.EstimatedCompletionDate != nil {
			lines = append(lines, fmt.Sprintf("Estimated completion: %s (%s)",
				m.EstimatedTimeText, m.EstimatedCompletionDate.Format("January 2, 2006")))
		}
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// writeDaily writes the most recent daily totals as bars relative to one
// default-length session.
func (f *tableFormatter) writeDaily(w io.Writer, p Progress) error {
	if err := writeHeader(w, "Daily Practice Hours", false, f.styles); err != nil {
		return err
	}

	days := p.Daily
	if len(days) > MaxDailyRows {
		days = days[:MaxDailyRows]
	}

	rows := make([][]string, len(days))
	for i, d := range days {
		pct := dailyPercent(d.Minutes, p.Skill.Settings.DefaultSessionDuration)
		rows[i] = []string{
			d.DisplayDate,
			f.styles.bar.Render(progressBar(pct, barWidth)),
			formatFloat(d.Hours, 1) + "h",
		}
	}

	return f.writeTable(w, []string{"Date", "", "Hours"}, rows)
}

// writeSessions writes the most recent sessions.
func (f *tableFormatter) writeSessions(w io.Writer, sessions []model.Session) error {
	if err := writeHeader(w, "Recent Sessions", false, f.styles); err != nil {
		return err
	}

	if len(sessions) > MaxRecentSessions {
		sessions = sessions[:MaxRecentSessions]
	}

	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		rows[i] = []string{s.Date.Long(), fmt.Sprintf("%dm", s.Duration), f.styles.muted.Render(s.Notes)}
	}

	return f.writeTable(w, []string{"Date", "Duration", "Notes"}, rows)
}

// FormatSettings implements Formatter.FormatSettings.
func (f *tableFormatter) FormatSettings(w io.Writer, s model.Settings) error {
	if err := writeHeader(w, "Settings", f.config.Compact, f.styles); err != nil {
		return err
	}

	return f.writeTable(w, []string{"Setting", "Value"}, [][]string{
		{"Theme", string(s.Theme)},
		{"Default Session Duration", fmt.Sprintf("%d minutes", s.DefaultSessionDuration)},
	})
}

// writeTable writes a formatted table.
func (f *tableFormatter) writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	// Widths are measured on the visible text, ignoring styling.
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	styled := make([]string, len(header))
	for i, h := range header {
		styled[i] = f.styles.header.Render(h)
	}
	if err := f.writeRow(w, styled, widths); err != nil {
		return err
	}

	if !f.config.Compact {
		separator := make([]string, len(header))
		for i, width := range widths {
			separator[i] = strings.Repeat("-", width)
		}
		if err := f.writeRow(w, separator, widths); err != nil {
			return err
		}
	}

	for _, row := range rows {
		if err := f.writeRow(w, row, widths); err != nil {
			return err
		}
	}

	if !f.config.Compact {
		_, err := fmt.Fprintln(w)
		return err
	}

	return nil
}

// writeRow writes a single table row.
func (f *tableFormatter) writeRow(w io.Writer, cells []string, widths []int) error {
	gap := "  "
	if f.config.Compact {
		gap = " "
	}

	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(gap)
		}
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", max(0, widths[i]-lipgloss.Width(cell))))
		}
	}

	_, err := fmt.Fprintln(w, b.String())
	return err
}
