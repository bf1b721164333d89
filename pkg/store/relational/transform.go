package relational

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/0xmhha/skill-tracker/pkg/caseconv"
	"github.com/0xmhha/skill-tracker/pkg/model"
)

// Records are the camelCase maps of the domain side. Rows are their
// snake_case twins. Skills additionally carry their settings nested on
// the record side and flat on the row side.

const settingsKey = "settings"

var skillSettingsFields = []string{
	model.FieldDefaultSessionDuration,
	model.FieldTargetHours,
}

func skillToRow(sk model.Skill) Row {
	record := map[string]any{
		"id":        sk.ID,
		"userId":    sk.UserID,
		"name":      sk.Name,
		"createdAt": sk.CreatedAt.String(),
		"updatedAt": formatTime(sk.UpdatedAt),
		settingsKey: map[string]any{
			model.FieldDefaultSessionDuration: sk.Settings.DefaultSessionDuration,
			model.FieldTargetHours:            sk.Settings.TargetHours,
		},
	}
	return caseconv.MapToSnake(flattenSettings(record))
}

func skillFromRow(row Row) (model.Skill, error) {
	return decode[model.Skill](nestSettings(caseconv.MapToCamel(row)))
}

func sessionToRow(s model.Session) Row {
	return caseconv.MapToSnake(map[string]any{
		"id":                s.ID,
		"userId":            s.UserID,
		model.FieldSkillID:  s.SkillID,
		model.FieldDuration: s.Duration,
		model.FieldDate:     s.Date.String(),
		model.FieldNotes:    s.Notes,
	})
}

func sessionFromRow(row Row) (model.Session, error) {
	return decode[model.Session](caseconv.MapToCamel(row))
}

func settingsToRow(userID string, s model.Settings) Row {
	return caseconv.MapToSnake(map[string]any{
		"userId":                          userID,
		model.FieldTheme:                  string(s.Theme),
		model.FieldDefaultSessionDuration: s.DefaultSessionDuration,
	})
}

func settingsFromRow(row Row) (model.Settings, error) {
	return decode[model.Settings](caseconv.MapToCamel(row))
}

// skillSettingsChanges returns the columns a patch changes.
func skillSettingsChanges(p model.SkillSettingsPatch, updatedAt time.Time) Row {
	record := map[string]any{"updatedAt": formatTime(updatedAt)}
	if p.DefaultSessionDuration != nil {
		record[model.FieldDefaultSessionDuration] = *p.DefaultSessionDuration
	}
	if p.TargetHours != nil {
		record[model.FieldTargetHours] = *p.TargetHours
	}
	return caseconv.MapToSnake(record)
}

// flattenSettings lifts the nested settings map into the record.
func flattenSettings(record map[string]any) map[string]any {
	nested, ok := record[settingsKey].(map[string]any)
	if !ok {
		return record
	}
	delete(record, settingsKey)
	for k, v := range nested {
		record[k] = v
	}
	return record
}

// nestSettings moves the flat settings fields under "settings".
func nestSettings(record map[string]any) map[string]any {
	nested := make(map[string]any, len(skillSettingsFields))
	for _, k := range skillSettingsFields {
		if v, ok := record[k]; ok {
			nested[k] = v
			delete(record, k)
		}
	}
	record[settingsKey] = nested
	return record
}

// decode converts a camelCase record into T through its JSON form.
func decode[T any](record map[string]any) (T, error) {
	var out T

	for k, v := range record {
		if b, ok := v.([]byte); ok {
			record[k] = string(b)
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return out, fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
