// Package relational implements store.DataStore on SQLite through gorm.
//
// Rows cross the table client as snake_case maps; the store converts them
// to and from the camelCase domain records. Writes that touch more than
// one row run in a single transaction.
//
// Example usage:
//
//	s, err := relational.Open(relational.Config{
//	    Client: relational.ClientConfig{Path: "~/.config/skill-tracker/skills.sqlite"},
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	skills, err := s.ListSkills(ctx, userID)
package relational

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xmhha/skill-tracker/pkg/fallback"
	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/store"
)

// Config contains relational store configuration.
type Config struct {
	// Client configures the database connection.
	Client ClientConfig

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	// NewID returns a fresh record id. Default: random UUID.
	NewID func() string
}

// Store implements store.DataStore.
type Store struct {
	client *Client
	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

var _ store.DataStore = (*Store)(nil)

// Open connects to the database and prepares the schema.
func Open(cfg Config, log logger.Logger) (*Store, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if log == nil {
		log = logger.Noop()
	}
	log = log.Component("store").With("backend", store.BackendSQL)

	client, err := OpenClient(cfg.Client, log)
	if err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		now:    cfg.Now,
		newID:  cfg.NewID,
		logger: log,
	}, nil
}

// ListSkills implements store.DataStore.
func (s *Store) ListSkills(ctx context.Context, userID string) ([]model.Skill, error) {
	const op = "list_skills"
	if err := ctx.Err(); err != nil {
		return nil, store.Fail(op, err)
	}

	rows, err := s.client.Select(ctx, tableSkills, Row{"user_id": userID}, "created_at ASC, rowid ASC")
	if err != nil {
		return nil, store.Fail(op, err)
	}

	skills := make([]model.Skill, 0, len(rows))
	for _, row := range rows {
		sk, decodeErr := skillFromRow(row)
		if decodeErr != nil {
			return nil, store.Fail(op, decodeErr)
		}
		skills = append(skills, sk)
	}
	return skills, nil
}

// InsertSkill implements store.DataStore.
func (s *Store) InsertSkill(ctx context.Context, userID, name string, settings model.SkillSettings) (model.Skill, error) {
	const op = "insert_skill"
	if err := ctx.Err(); err != nil {
		return model.Skill{}, store.Fail(op, err)
	}

	now := s.now()
	sk := model.Skill{
		ID:        s.newID(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: model.DateOf(now),
		UpdatedAt: now.UTC(),
		Settings:  fallback.FillSkillSettings(settings),
	}

	if err := s.client.Insert(ctx, tableSkills, skillToRow(sk)); err != nil {
		return model.Skill{}, store.Fail(op, err)
	}

	s.logger.Debug("skill inserted", "skill_id", sk.ID, "name", sk.Name)
	return sk, nil
}

// UpdateSkillSettings implements store.DataStore.
func (s *Store) UpdateSkillSettings(ctx context.Context, skillID string, patch model.SkillSettingsPatch) (model.Skill, error) {
	const op = "update_skill_settings"
	if err := ctx.Err(); err != nil {
		return model.Skill{}, store.Fail(op, err)
	}

	var updated model.Skill
	err := s.client.Transaction(ctx, func(tx *Client) error {
		n, err := tx.Update(ctx, tableSkills, Row{"id": skillID}, skillSettingsChanges(patch, s.now()))
		if err != nil {
			return err
		}
		if n == 0 {
			return store.NotFound("skill", skillID)
		}

		rows, err := tx.Select(ctx, tableSkills, Row{"id": skillID}, "")
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return store.NotFound("skill", skillID)
		}

		updated, err = skillFromRow(rows[0])
		return err
	})
	if err != nil {
		return model.Skill{}, store.Fail(op, err)
	}
	return updated, nil
}

// DeleteSkill implements store.DataStore. Sessions are deleted
// explicitly in the same transaction as the skill.
func (s *Store) DeleteSkill(ctx context.Context, skillID string) error {
	const op = "delete_skill"
	if err := ctx.Err(); err != nil {
		return store.Fail(op, err)
	}

	var removed int64
	err := s.client.Transaction(ctx, func(tx *Client) error {
		n, err := tx.Delete(ctx, tableSessions, Row{"skill_id": skillID})
		if err != nil {
			return err
		}
		removed = n

		n, err = tx.Delete(ctx, tableSkills, Row{"id": skillID})
		if err != nil {
			return err
		}
		if n == 0 {
			return store.NotFound("skill", skillID)
		}
		return nil
	})
	if err != nil {
		return store.Fail(op, err)
	}

	s.logger.Debug("skill deleted", "skill_id", skillID, "sessions_removed", removed)
	return nil
}

// ListSessions implements store.DataStore.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]model.Session, error) {
	const op = "list_sessions"
	if err := ctx.Err(); err != nil {
		return nil, store.Fail(op, err)
	}

	rows, err := s.client.Select(ctx, tableSessions, Row{"user_id": userID}, "date DESC, rowid ASC")
	if err != nil {
		return nil, store.Fail(op, err)
	}

	sessions := make([]model.Session, 0, len(rows))
	for _, row := range rows {
		ss, decodeErr := sessionFromRow(row)
		if decodeErr != nil {
			return nil, store.Fail(op, decodeErr)
		}
		sessions = append(sessions, ss)
	}
	return sessions, nil
}

// InsertSession implements store.DataStore.
func (s *Store) InsertSession(ctx context.Context, userID string, ns model.NewSession) (model.Session, error) {
	const op = "insert_session"
	if err := ctx.Err(); err != nil {
		return model.Session{}, store.Fail(op, err)
	}

	sess := model.Session{
		ID:       s.newID(),
		UserID:   userID,
		SkillID:  ns.SkillID,
		Duration: ns.Duration,
		Date:     ns.Date,
		Notes:    ns.Notes,
	}

	err := s.client.Transaction(ctx, func(tx *Client) error {
		rows, err := tx.Select(ctx, tableSkills, Row{"id": ns.SkillID}, "")
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return store.NotFound("skill", ns.SkillID)
		}
		return tx.Insert(ctx, tableSessions, sessionToRow(sess))
	})
	if err != nil {
		return model.Session{}, store.Fail(op, err)
	}

	s.logger.Debug("session inserted", "session_id", sess.ID, "skill_id", sess.SkillID, "duration", sess.Duration)
	return sess, nil
}

// GetSettings implements store.DataStore.
func (s *Store) GetSettings(ctx context.Context, userID string) (*model.Settings, error) {
	const op = "get_settings"
	if err := ctx.Err(); err != nil {
		return nil, store.Fail(op, err)
	}

	rows, err := s.client.Select(ctx, tableSettings, Row{"user_id": userID}, "")
	if err != nil {
		return nil, store.Fail(op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	settings, err := settingsFromRow(rows[0])
	if err != nil {
		return nil, store.Fail(op, err)
	}
	return &settings, nil
}

// UpdateSettings implements store.DataStore.
func (s *Store) UpdateSettings(ctx context.Context, userID string, patch model.SettingsPatch) (model.Settings, error) {
	const op = "update_settings"
	if err := ctx.Err(); err != nil {
		return model.Settings{}, store.Fail(op, err)
	}

	var updated model.Settings
	err := s.client.Transaction(ctx, func(tx *Client) error {
		rows, err := tx.Select(ctx, tableSettings, Row{"user_id": userID}, "")
		if err != nil {
			return err
		}

		current := fallback.Settings()
		if len(rows) > 0 {
			if current, err = settingsFromRow(rows[0]); err != nil {
				return err
			}
		}

		applied := patch.Apply(current)
		updated = fallback.FillSettings(&applied)
		row := settingsToRow(userID, updated)

		if len(rows) == 0 {
			return tx.Insert(ctx, tableSettings, row)
		}
		delete(row, "user_id")
		_, err = tx.Update(ctx, tableSettings, Row{"user_id": userID}, row)
		return err
	})
	if err != nil {
		return model.Settings{}, store.Fail(op, fmt.Errorf("upsert settings: %w", err))
	}
	return updated, nil
}

// Close implements store.DataStore.
func (s *Store) Close() error {
	return s.client.Close()
}
