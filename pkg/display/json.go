package display

import (
	"encoding/json"
	"io"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct {
	config Config
}

func (f *jsonFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(v)
}

// FormatSkills implements Formatter.FormatSkills.
func (f *jsonFormatter) FormatSkills(w io.Writer, skills []SkillSummary) error {
	if skills == nil {
		skills = []SkillSummary{}
	}
	return f.encode(w, skills)
}

// FormatProgress implements Formatter.FormatProgress.
func (f *jsonFormatter) FormatProgress(w io.Writer, p Progress) error {
	if f.config.Compact {
		p.Daily = nil
		p.Sessions = nil
	}
	return f.encode(w, p)
}

// FormatSettings implements Formatter.FormatSettings.
func (f *jsonFormatter) FormatSettings(w io.Writer, s model.Settings) error {
	return f.encode(w, s)
}
