// Package display provides output formatting for skills and progress.
//
// It supports multiple output formats (table, JSON, simple text). Table
// output can be styled with lipgloss when color is enabled.
package display

import (
	"io"

	"github.com/0xmhha/skill-tracker/pkg/metrics"
	"github.com/0xmhha/skill-tracker/pkg/model"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays data in formatted tables.
	FormatTable Format = "table"

	// FormatJSON displays data as JSON.
	FormatJSON Format = "json"

	// FormatSimple displays data as one line per record.
	FormatSimple Format = "simple"
)

// Row limits of the progress view.
const (
	MaxDailyRows      = 10
	MaxRecentSessions = 8
)

// SkillSummary is one line of the skill list.
type SkillSummary struct {
	Skill model.Skill `json:"skill"`

	// Metrics is nil when the skill has no sessions.
	Metrics *metrics.Metrics `json:"metrics"`
}

// Progress is everything the progress view shows for one skill.
type Progress struct {
	Skill model.Skill `json:"skill"`

	// Metrics is nil when the skill has no sessions.
	Metrics *metrics.Metrics `json:"metrics"`

	// Daily contains per-date totals, most recent first.
	Daily []metrics.DailyTotal `json:"dailyHours"`

	// Sessions contains the skill's sessions, most recent first.
	Sessions []model.Session `json:"sessions"`
}

// Formatter formats skills, progress and settings.
type Formatter interface {
	// FormatSkills formats the skill list.
	//
	// Parameters:
	//   - w: Output writer
	//   - skills: Skills with their metrics
	//
	// Returns error if writing fails.
	FormatSkills(w io.Writer, skills []SkillSummary) error

	// FormatProgress formats the progress view of one skill: insight,
	// milestone, overview, daily hours and recent sessions.
	//
	// Parameters:
	//   - w: Output writer
	//   - p: Progress of the skill
	//
	// Returns error if writing fails.
	FormatProgress(w io.Writer, p Progress) error

	// FormatSettings formats user settings.
	FormatSettings(w io.Writer, s model.Settings) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// Color enables lipgloss styling of table output.
	// Default: false.
	Color bool

	// Compact omits section spacing, daily hours and recent sessions.
	// Default: false.
	Compact bool
}
