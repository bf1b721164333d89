package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

var testNow = time.Date(2024, time.June, 14, 18, 30, 0, 0, time.UTC)

func sessionForm(mods ...func(Form)) Form {
	f := Form{
		model.FieldSkillID:  "1",
		model.FieldDuration: "60",
		model.FieldDate:     "2024-06-14",
		model.FieldNotes:    "",
	}
	for _, mod := range mods {
		mod(f)
	}
	return f
}

func TestParseSessionLog(t *testing.T) {
	r := ParseSessionLog(sessionForm(func(f Form) {
		f[model.FieldDuration] = " 075 "
		f[model.FieldNotes] = "New song practice - Wonderwall"
	}), testNow)

	got, ok := r.Value()
	require.True(t, ok)
	assert.NoError(t, r.Err())
	assert.Equal(t, model.NewSession{
		SkillID:  "1",
		Duration: 75,
		Date:     model.MustParseDate("2024-06-14"),
		Notes:    "New song practice - Wonderwall",
	}, got)
}

func TestSessionLogMessages(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"no skill", model.FieldSkillID, "  ", "Please select a skill"},
		{"no duration", model.FieldDuration, "", "Duration is required"},
		{"text duration", model.FieldDuration, "abc", "Please enter a valid number"},
		{"trailing junk", model.FieldDuration, "12abc", "Please enter a valid number"},
		{"fraction", model.FieldDuration, "1.5", "Duration must be a whole number"},
		{"zero", model.FieldDuration, "0", "Duration must be at least 1 minute"},
		{"too long", model.FieldDuration, "1441", "Duration cannot exceed 1440 minutes (24 hours)"},
		{"no date", model.FieldDate, "", "Date is required"},
		{"bad date", model.FieldDate, "2024-13-01", "Please enter a valid date"},
		{"future", model.FieldDate, "2024-06-15", "Date cannot be in the future"},
		{"long notes", model.FieldNotes, strings.Repeat("x", 1001), "Notes cannot exceed 1000 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseSessionLog(sessionForm(func(f Form) { f[tt.field] = tt.value }), testNow)
			require.False(t, r.OK())
			assert.Equal(t, Errors{tt.field: tt.want}, r.Errors())

			var verrs Errors
			require.True(t, errors.As(r.Err(), &verrs))
			assert.Equal(t, tt.want, verrs.Field(tt.field))
		})
	}
}

func TestSessionLogBoundaries(t *testing.T) {
	for _, value := range []string{"1", "3", "1440"} {
		r := ParseSessionLog(sessionForm(func(f Form) { f[model.FieldDuration] = value }), testNow)
		assert.True(t, r.OK(), value)
	}

	r := ParseSessionLog(sessionForm(func(f Form) { f[model.FieldNotes] = strings.Repeat("é", 1000) }), testNow)
	assert.True(t, r.OK())

	missingNotes := sessionForm()
	delete(missingNotes, model.FieldNotes)
	assert.True(t, ParseSessionLog(missingNotes, testNow).OK())
}

func TestSessionLogTodayUsesClockLocation(t *testing.T) {
	// 18:30 UTC on the 14th is already the 15th at UTC+10.
	ahead := testNow.In(time.FixedZone("UTC+10", 10*3600))
	form := sessionForm(func(f Form) { f[model.FieldDate] = "2024-06-15" })

	assert.False(t, ParseSessionLog(form, testNow).OK())
	assert.True(t, ParseSessionLog(form, ahead).OK())
}

func TestSessionLogCollectsAllErrors(t *testing.T) {
	r := ParseSessionLog(Form{}, testNow)
	assert.Equal(t, Errors{
		model.FieldSkillID:  "Please select a skill",
		model.FieldDuration: "Duration is required",
		model.FieldDate:     "Date is required",
	}, r.Errors())
	assert.Equal(t,
		"validation failed: date: Date is required; duration: Duration is required; skillId: Please select a skill",
		r.Err().Error())
}

func TestParseSettings(t *testing.T) {
	got, ok := ParseSettings(Form{
		model.FieldTheme:                  "dark",
		model.FieldDefaultSessionDuration: "45",
	}).Value()
	require.True(t, ok)
	assert.Equal(t, model.Settings{Theme: model.ThemeDark, DefaultSessionDuration: 45}, got)

	r := ParseSettings(Form{
		model.FieldTheme:                  "neon",
		model.FieldDefaultSessionDuration: "",
	})
	assert.Equal(t, Errors{
		model.FieldTheme:                  "Theme must be light, dark or system",
		model.FieldDefaultSessionDuration: "Session duration cannot be empty",
	}, r.Errors())
}

func TestDurationFloorAsymmetry(t *testing.T) {
	settings := ParseSettings(Form{
		model.FieldTheme:                  "system",
		model.FieldDefaultSessionDuration: "3",
	})
	assert.Equal(t, "Session duration must be at least 5 minutes",
		settings.Errors().Field(model.FieldDefaultSessionDuration))

	session := ParseSessionLog(sessionForm(func(f Form) { f[model.FieldDuration] = "3" }), testNow)
	assert.True(t, session.OK())
}

func TestParseSkillSettings(t *testing.T) {
	got, ok := ParseSkillSettings(Form{
		model.FieldDefaultSessionDuration: "90",
		model.FieldTargetHours:            "10000",
	}).Value()
	require.True(t, ok)
	assert.Equal(t, model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 10000}, got)

	tests := []struct {
		value string
		want  string
	}{
		{"", "Target hours cannot be empty"},
		{"lots", "Please enter a valid number"},
		{"0", "Target hours must be at least 1 hour"},
		{"10001", "Target hours cannot exceed 10,000 hours"},
		{"2.5", "Target hours must be a whole number"},
	}
	for _, tt := range tests {
		r := ParseSkillSettings(Form{
			model.FieldDefaultSessionDuration: "90",
			model.FieldTargetHours:            tt.value,
		})
		assert.Equal(t, tt.want, r.Errors().Field(model.FieldTargetHours), tt.value)
	}
}

func TestValidateField(t *testing.T) {
	msg, ok := SettingsSchema.ValidateField(model.FieldDefaultSessionDuration, "1500")
	assert.False(t, ok)
	assert.Equal(t, "Session duration cannot exceed 1440 minutes (24 hours)", msg)

	msg, ok = SettingsSchema.ValidateField(model.FieldDefaultSessionDuration, "30")
	assert.True(t, ok)
	assert.Empty(t, msg)

	_, ok = SettingsSchema.ValidateField("unknown", "anything")
	assert.True(t, ok)
}

func TestWithClock(t *testing.T) {
	past := SessionLogSchema.WithClock(func() time.Time {
		return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	})

	msg, ok := past.ValidateField(model.FieldDate, "2024-06-10")
	assert.False(t, ok)
	assert.Equal(t, "Date cannot be in the future", msg)

	_, ok = SessionLogSchema.WithClock(func() time.Time { return testNow }).ValidateField(model.FieldDate, "2024-06-10")
	assert.True(t, ok)
}

func TestSchemaNormalize(t *testing.T) {
	assert.Equal(t, "60", SettingsSchema.Normalize(model.FieldDefaultSessionDuration, "060"))
	assert.Equal(t, "6x", SettingsSchema.Normalize(model.FieldDefaultSessionDuration, " 6x "))
	assert.Equal(t, "dark", SettingsSchema.Normalize(model.FieldTheme, " dark"))
	assert.Equal(t, "  keep  ", SessionLogSchema.Normalize(model.FieldNotes, "  keep  "))
	assert.Equal(t, []string{model.FieldTheme, model.FieldDefaultSessionDuration}, SettingsSchema.Fields())
	assert.True(t, SkillSettingsSchema.Has(model.FieldTargetHours))
	assert.False(t, SettingsSchema.Has(model.FieldTargetHours))
}

func TestValidDropsUnknownKeys(t *testing.T) {
	r := SettingsSchema.Validate(Form{
		model.FieldTheme:                  "light",
		model.FieldDefaultSessionDuration: "0060",
		"extra":                           "x",
	})
	got, ok := r.Value()
	require.True(t, ok)
	assert.Equal(t, Form{model.FieldTheme: "light", model.FieldDefaultSessionDuration: "60"}, got)
}
