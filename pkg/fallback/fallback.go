// Package fallback is the single table of hardcoded defaults.
//
// Every "value or default" decision in skill-tracker goes through Lookup
// or Or so call sites cannot drift apart. A missing settings record is
// never an error for the user; it is resolved here.
package fallback

import (
	"fmt"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

// Key names a fallback value.
type Key string

// Fallback keys. Record fields reuse the model field names.
const (
	Theme                  Key = model.FieldTheme
	DefaultSessionDuration Key = model.FieldDefaultSessionDuration
	TargetHours            Key = model.FieldTargetHours
	MinSessionDuration     Key = "minSessionDuration"
	MaxSessionDuration     Key = "maxSessionDuration"
	SessionDurationStep    Key = "sessionDurationStep"
	MaxNotesLength         Key = "maxNotesLength"
)

var table = map[Key]any{
	Theme:                  model.ThemeSystem,
	DefaultSessionDuration: 60,
	TargetHours:            1000,
	MinSessionDuration:     5,
	MaxSessionDuration:     1440,
	SessionDurationStep:    5,
	MaxNotesLength:         1000,
}

// Lookup returns the fallback for key and whether one exists.
func Lookup(key Key) (any, bool) {
	v, ok := table[key]
	return v, ok
}

// Value returns the fallback for key as T. It panics when the key is
// unknown or holds another type, which is a programming error.
func Value[T any](key Key) T {
	raw, ok := Lookup(key)
	if !ok {
		panic(fmt.Sprintf("fallback: unknown key %q", key))
	}
	v, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("fallback: key %q holds %T", key, raw))
	}
	return v
}

// Or returns v unless it is the zero value, in which case the fallback
// for key is returned.
func Or[T comparable](v T, key Key) T {
	var zero T
	if v != zero {
		return v
	}
	return Value[T](key)
}

// Settings returns the fallback user settings.
func Settings() model.Settings {
	return model.Settings{
		Theme:                  Value[model.Theme](Theme),
		DefaultSessionDuration: Value[int](DefaultSessionDuration),
	}
}

// FillSettings fills unset fields of s from the table.
func FillSettings(s *model.Settings) model.Settings {
	if s == nil {
		return Settings()
	}
	return model.Settings{
		Theme:                  Or(s.Theme, Theme),
		DefaultSessionDuration: Or(s.DefaultSessionDuration, DefaultSessionDuration),
	}
}

// SkillSettings returns the settings a new skill starts with. The user's
// default session duration wins over the table value.
func SkillSettings(userDefaultDuration int) model.SkillSettings {
	return model.SkillSettings{
		DefaultSessionDuration: Or(userDefaultDuration, DefaultSessionDuration),
		TargetHours:            Value[int](TargetHours),
	}
}

// FillSkillSettings fills unset fields of s from the table.
func FillSkillSettings(s model.SkillSettings) model.SkillSettings {
	return model.SkillSettings{
		DefaultSessionDuration: Or(s.DefaultSessionDuration, DefaultSessionDuration),
		TargetHours:            Or(s.TargetHours, TargetHours),
	}
}
