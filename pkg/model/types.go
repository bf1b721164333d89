// Package model defines the records tracked by skill-tracker.
//
// Three record kinds exist: a Skill (an area of deliberate practice with
// its own milestone settings), a Session (one logged practice event) and
// the per-user Settings singleton. JSON field names are camel-cased; the
// relational backend renames them at its boundary.
package model

import (
	"strconv"
	"time"
)

// Field names shared by forms, validation schemas and the fallback table.
const (
	FieldTheme                  = "theme"
	FieldDefaultSessionDuration = "defaultSessionDuration"
	FieldTargetHours            = "targetHours"
	FieldSkillID                = "skillId"
	FieldDuration               = "duration"
	FieldDate                   = "date"
	FieldNotes                  = "notes"
)

// SkillSettings holds the per-skill overrides.
type SkillSettings struct {
	// DefaultSessionDuration is the prefilled session length in minutes, [5, 1440].
	DefaultSessionDuration int `json:"defaultSessionDuration"`

	// TargetHours is the mastery milestone, [1, 10000].
	TargetHours int `json:"targetHours"`
}

// Form returns the settings as raw form values.
func (s SkillSettings) Form() map[string]string {
	return map[string]string{
		FieldDefaultSessionDuration: strconv.Itoa(s.DefaultSessionDuration),
		FieldTargetHours:            strconv.Itoa(s.TargetHours),
	}
}

// Skill is a trackable area of deliberate practice.
type Skill struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Name      string        `json:"name"`
	CreatedAt Date          `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Settings  SkillSettings `json:"settings"`
}

// Session is one logged practice event. Sessions are immutable once
// created and disappear only when their skill is deleted.
type Session struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	SkillID  string `json:"skillId"`
	Duration int    `json:"duration"`
	Date     Date   `json:"date"`
	Notes    string `json:"notes"`
}

// Minutes returns the session duration as a time.Duration.
func (s Session) Minutes() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}

// NewSession carries the fields needed to log a session.
type NewSession struct {
	SkillID  string `json:"skillId"`
	Duration int    `json:"duration"`
	Date     Date   `json:"date"`
	Notes    string `json:"notes"`
}

// Settings is the per-user settings singleton.
type Settings struct {
	Theme                  Theme `json:"theme"`
	DefaultSessionDuration int   `json:"defaultSessionDuration"`
}

// Form returns the settings as raw form values.
func (s Settings) Form() map[string]string {
	return map[string]string{
		FieldTheme:                  string(s.Theme),
		FieldDefaultSessionDuration: strconv.Itoa(s.DefaultSessionDuration),
	}
}

// SettingsPatch lists the settings fields to change. Nil fields are left alone.
type SettingsPatch struct {
	Theme                  *Theme `json:"theme,omitempty"`
	DefaultSessionDuration *int   `json:"defaultSessionDuration,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.Theme == nil && p.DefaultSessionDuration == nil
}

// Apply returns s with the patch applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.DefaultSessionDuration != nil {
		s.DefaultSessionDuration = *p.DefaultSessionDuration
	}
	return s
}

// SkillSettingsPatch lists the skill settings fields to change.
type SkillSettingsPatch struct {
	DefaultSessionDuration *int `json:"defaultSessionDuration,omitempty"`
	TargetHours            *int `json:"targetHours,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SkillSettingsPatch) IsEmpty() bool {
	return p.DefaultSessionDuration == nil && p.TargetHours == nil
}

// Apply returns s with the patch applied.
func (p SkillSettingsPatch) Apply(s SkillSettings) SkillSettings {
	if p.DefaultSessionDuration != nil {
		s.DefaultSessionDuration = *p.DefaultSessionDuration
	}
	if p.TargetHours != nil {
		s.TargetHours = *p.TargetHours
	}
	return s
}
