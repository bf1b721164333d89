package display

import (
	"fmt"
	"io"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

// simpleFormatter formats output as simple text.
type simpleFormatter struct {
	config Config
}

// FormatSkills implements Formatter.FormatSkills.
func (f *simpleFormatter) FormatSkills(w io.Writer, skills []SkillSummary) error {
	for _, s := range skills {
		hours, pct := 0.0, 0.0
		if s.Metrics != nil {
			hours, pct = s.Metrics.TotalHoursRounded, s.Metrics.ProgressPercentage
		}
		if _, err := fmt.Fprintf(w, "%s: %s / %s hours (%s%%) [%s]\n",
			s.Skill.Name,
			formatHours(hours),
			formatNumber(s.Skill.Settings.TargetHours),
			formatFloat(pct, 1),
			s.Skill.ID); err != nil {
			return err
		}
	}

	return nil
}

// FormatProgress implements Formatter.FormatProgress.
func (f *simpleFormatter) FormatProgress(w io.Writer, p Progress) error {
	m := p.Metrics
	if m == nil {
		_, err := fmt.Fprintln(w, emptyProgress(p.Skill.Name))
		return err
	}

	status := formatFloat(m.HoursRemaining, 1) + "h remaining"
	if m.IsMilestoneReached {
		status = "+" + formatFloat(m.HoursAbove, 1) + "h above goal"
	} else if m.EstimatedTimeText != "" {
		status += ", done in " + m.EstimatedTimeText
	}

	if _, err := fmt.Fprintf(w, "%s: %s / %s hours (%s%%) | Sessions: %d | Days: %d | Consistency: %d%% | Avg: %dm | %s\n",
		p.Skill.Name,
		formatHours(m.TotalHoursRounded),
		formatNumber(m.TargetHours),
		formatFloat(m.ProgressPercentage, 1),
		m.TotalSessions,
		m.DaysPracticed,
		m.ConsistencyPercent,
		m.AvgMinutesPerSession,
		status); err != nil {
		return err
	}

	if f.config.Compact {
		return nil
	}

	days := p.Daily
	if len(days) > MaxDailyRows {
		days = days[:MaxDailyRows]
	}
	for _, d := range days {
		if _, err := fmt.Fprintf(w, "%s: %sh\n", d.DisplayDate, formatFloat(d.Hours, 1)); err != nil {
			return err
		}
	}

	return nil
}

// FormatSettings implements Formatter.FormatSettings.
func (f *simpleFormatter) FormatSettings(w io.Writer, s model.Settings) error {
	_, err := fmt.Fprintf(w, "theme=%s defaultSessionDuration=%d\n", s.Theme, s.DefaultSessionDuration)
	return err
}
