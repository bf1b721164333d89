// Package store defines the persistence contract of skill-tracker.
//
// Two implementations exist: store/local keeps documents in a bolt file
// and store/relational keeps rows in SQLite through gorm. One of them is
// chosen at startup from configuration and used for the whole process.
// Both return ErrNotFound for unknown skills and *PersistenceError for
// I/O failures.
package store

import (
	"context"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

// Backend names accepted by configuration.
const (
	BackendLocal = "local"
	BackendSQL   = "sql"
)

// DataStore persists skills, sessions and settings of users.
type DataStore interface {
	// ListSkills returns the skills of userID, oldest first.
	ListSkills(ctx context.Context, userID string) ([]model.Skill, error)

	// InsertSkill creates a skill with a fresh id.
	InsertSkill(ctx context.Context, userID, name string, settings model.SkillSettings) (model.Skill, error)

	// UpdateSkillSettings applies patch to the settings of skillID.
	//
	// Returns ErrNotFound when the skill does not exist.
	UpdateSkillSettings(ctx context.Context, skillID string, patch model.SkillSettingsPatch) (model.Skill, error)

	// DeleteSkill removes skillID and every session referencing it.
	//
	// Returns ErrNotFound when the skill does not exist.
	DeleteSkill(ctx context.Context, skillID string) error

	// ListSessions returns the sessions of userID, most recent date first.
	ListSessions(ctx context.Context, userID string) ([]model.Session, error)

	// InsertSession logs a session with a fresh id.
	//
	// Returns ErrNotFound when the session's skill does not exist.
	InsertSession(ctx context.Context, userID string, s model.NewSession) (model.Session, error)

	// GetSettings returns the settings of userID, or nil when none were
	// ever saved.
	GetSettings(ctx context.Context, userID string) (*model.Settings, error)

	// UpdateSettings applies patch to the settings of userID, creating the
	// record from fallbacks when absent.
	UpdateSettings(ctx context.Context, userID string, patch model.SettingsPatch) (model.Settings, error)

	// Close releases resources.
	Close() error
}
