package tracker

import (
	"context"
	"fmt"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

type sampleSkill struct {
	key      string
	name     string
	settings model.SkillSettings
}

type sampleSession struct {
	skill    string
	duration int
	date     string
	notes    string
}

var sampleSkills = []sampleSkill{
	{"guitar", "Guitar", model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 1000}},
	{"spanish", "Spanish", model.SkillSettings{DefaultSessionDuration: 45, TargetHours: 500}},
	{"react", "React Development", model.SkillSettings{DefaultSessionDuration: 120, TargetHours: 2000}},
}

var sampleSessions = []sampleSession{
	{"guitar", 120, "2024-06-10", "Practiced scales and arpeggios"},
	{"guitar", 90, "2024-06-12", "Worked on chord transitions"},
	{"spanish", 60, "2024-06-11", "Duolingo + conversation practice"},
	{"guitar", 75, "2024-06-14", "New song practice - Wonderwall"},
	{"spanish", 45, "2024-06-14", "Grammar exercises and vocab"},
	{"react", 180, "2024-06-13", "Built a todo app with hooks"},
	{"react", 150, "2024-06-14", "Learning Next.js routing"},
	{"guitar", 60, "2024-06-13", "Fingerpicking exercises"},
}

// SeedSamples loads the demo data set when the user has no skills yet.
// It reports whether anything was written.
func (t *Tracker) SeedSamples(ctx context.Context) (bool, error) {
	if len(t.Skills()) > 0 {
		return false, nil
	}

	release, err := t.acquire("seed")
	if err != nil {
		return false, err
	}
	defer release()

	ids := make(map[string]string, len(sampleSkills))
	for _, s := range sampleSkills {
		sk, insertErr := t.store.InsertSkill(ctx, t.userID, s.name, s.settings)
		if insertErr != nil {
			return false, fmt.Errorf("seed skill %s: %w", s.name, insertErr)
		}
		ids[s.key] = sk.ID
	}

	for _, s := range sampleSessions {
		_, insertErr := t.store.InsertSession(ctx, t.userID, model.NewSession{
			SkillID:  ids[s.skill],
			Duration: s.duration,
			Date:     model.MustParseDate(s.date),
			Notes:    s.notes,
		})
		if insertErr != nil {
			return false, fmt.Errorf("seed session %s: %w", s.date, insertErr)
		}
	}

	t.logger.Info("sample data seeded", "skills", len(sampleSkills), "sessions", len(sampleSessions))
	return true, t.Load(ctx)
}
