package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/0xmhha/skill-tracker/pkg/fallback"
	"github.com/0xmhha/skill-tracker/pkg/model"
)

// Target hours bounds of a skill milestone.
const (
	MinTargetHours = 1
	MaxTargetHours = 10000
)

// Messages shown when a settings form cannot be left or saved.
const (
	MsgFixBeforeLeaving = "Please fix the validation errors before leaving the settings page."
	MsgFixBeforeSaving  = "Please fix the validation errors before saving settings."
)

var (
	sessionDuration = intRange{
		min:      1,
		max:      fallback.Value[int](fallback.MaxSessionDuration),
		required: "Duration is required",
		invalid:  "Please enter a valid number",
		fraction: "Duration must be a whole number",
		tooSmall: "Duration must be at least 1 minute",
		tooLarge: "Duration cannot exceed 1440 minutes (24 hours)",
	}

	// Floor is 5 minutes here but 1 minute for a logged session.
	defaultDuration = intRange{
		min:      fallback.Value[int](fallback.MinSessionDuration),
		max:      fallback.Value[int](fallback.MaxSessionDuration),
		required: "Session duration cannot be empty",
		invalid:  "Please enter a valid number",
		fraction: "Session duration must be a whole number",
		tooSmall: "Session duration must be at least 5 minutes",
		tooLarge: "Session duration cannot exceed 1440 minutes (24 hours)",
	}

	targetHours = intRange{
		min:      MinTargetHours,
		max:      MaxTargetHours,
		required: "Target hours cannot be empty",
		invalid:  "Please enter a valid number",
		fraction: "Target hours must be a whole number",
		tooSmall: "Target hours must be at least 1 hour",
		tooLarge: "Target hours cannot exceed 10,000 hours",
	}
)

// SessionLogSchema validates the log-a-session form.
var SessionLogSchema = NewSchema("session log",
	Field{Name: model.FieldSkillID, Check: requiredText("Please select a skill"), Normalize: strings.TrimSpace},
	Field{Name: model.FieldDuration, Check: sessionDuration.check, Normalize: normalizeInt},
	Field{Name: model.FieldDate, Check: pastDate, Normalize: strings.TrimSpace},
	Field{Name: model.FieldNotes, Check: maxLength(fallback.Value[int](fallback.MaxNotesLength), "Notes cannot exceed 1000 characters")},
)

// SettingsSchema validates the user settings form.
var SettingsSchema = NewSchema("settings",
	Field{Name: model.FieldTheme, Check: theme, Normalize: strings.TrimSpace},
	Field{Name: model.FieldDefaultSessionDuration, Check: defaultDuration.check, Normalize: normalizeInt},
)

// SkillSettingsSchema validates the per-skill settings form.
var SkillSettingsSchema = NewSchema("skill settings",
	Field{Name: model.FieldDefaultSessionDuration, Check: defaultDuration.check, Normalize: normalizeInt},
	Field{Name: model.FieldTargetHours, Check: targetHours.check, Normalize: normalizeInt},
)

// ParseSessionLog validates a session form against the calendar date of
// now and returns the session to log.
func ParseSessionLog(form Form, now time.Time) Result[model.NewSession] {
	schema := SessionLogSchema.WithClock(func() time.Time { return now })
	return mapResult(schema.Validate(form), func(f Form) model.NewSession {
		return model.NewSession{
			SkillID:  f[model.FieldSkillID],
			Duration: atoi(f[model.FieldDuration]),
			Date:     model.MustParseDate(f[model.FieldDate]),
			Notes:    f[model.FieldNotes],
		}
	})
}

// ParseSettings validates a user settings form.
func ParseSettings(form Form) Result[model.Settings] {
	return mapResult(SettingsSchema.Validate(form), func(f Form) model.Settings {
		return model.Settings{
			Theme:                  model.Theme(f[model.FieldTheme]),
			DefaultSessionDuration: atoi(f[model.FieldDefaultSessionDuration]),
		}
	})
}

// ParseSkillSettings validates a skill settings form.
func ParseSkillSettings(form Form) Result[model.SkillSettings] {
	return mapResult(SkillSettingsSchema.Validate(form), func(f Form) model.SkillSettings {
		return model.SkillSettings{
			DefaultSessionDuration: atoi(f[model.FieldDefaultSessionDuration]),
			TargetHours:            atoi(f[model.FieldTargetHours]),
		}
	})
}

// atoi converts a value already accepted by an intRange check.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
