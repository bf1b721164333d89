// Package local implements store.DataStore on top of a kvstore document
// store.
//
// All skills live in one document, all sessions in another, and each
// user's settings in a document of their own. Every write replaces whole
// documents and completes before the call returns.
package local

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0xmhha/skill-tracker/pkg/fallback"
	"github.com/0xmhha/skill-tracker/pkg/kvstore"
	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/store"
)

// Document keys.
const (
	keySkills      = "skills"
	keySessions    = "sessions"
	settingsPrefix = "settings:"
)

// Config contains local store configuration.
type Config struct {
	// KV is the document store. Required. Closed by Store.Close.
	KV kvstore.Store

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	// NewID returns a fresh record id. Default: random UUID.
	NewID func() string
}

// Store implements store.DataStore.
type Store struct {
	kv     kvstore.Store
	now    func() time.Time
	newID  func() string
	logger logger.Logger

	// mu serializes read-modify-write cycles on the documents.
	mu sync.Mutex
}

var _ store.DataStore = (*Store)(nil)

// New creates a local store.
func New(cfg Config, log logger.Logger) (*Store, error) {
	if cfg.KV == nil {
		return nil, errors.New("local store: document store is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if log == nil {
		log = logger.Noop()
	}

	return &Store{
		kv:     cfg.KV,
		now:    cfg.Now,
		newID:  cfg.NewID,
		logger: log.Component("store").With("backend", store.BackendLocal),
	}, nil
}

// ListSkills implements store.DataStore.
func (s *Store) ListSkills(ctx context.Context, userID string) ([]model.Skill, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Fail("list_skills", err)
	}

	s.mu.Lock()
	all := s.loadSkills()
	s.mu.Unlock()

	out := make([]model.Skill, 0, len(all))
	for _, sk := range all {
		if sk.UserID == userID {
			out = append(out, sk)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Skill) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// InsertSkill implements store.DataStore.
func (s *Store) InsertSkill(ctx context.Context, userID, name string, settings model.SkillSettings) (model.Skill, error) {
	const op = "insert_skill"
	if err := ctx.Err(); err != nil {
		return model.Skill{}, store.Fail(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sk := model.Skill{
		ID:        s.newID(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: model.DateOf(now),
		UpdatedAt: now,
		Settings:  fallback.FillSkillSettings(settings),
	}

	skills, err := editDocument[model.Skill](s, op, keySkills)
	if err != nil {
		return model.Skill{}, err
	}
	skills = append(skills, sk)
	if !s.kv.Set(keySkills, skills) {
		return model.Skill{}, s.writeFailed(op)
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

	s.mu.Lock()
	defer s.mu.Unlock()

	skills, err := editDocument[model.Skill](s, op, keySkills)
	if err != nil {
		return model.Skill{}, err
	}
	i := slices.IndexFunc(skills, func(sk model.Skill) bool { return sk.ID == skillID })
	if i < 0 {
		return model.Skill{}, store.NotFound("skill", skillID)
	}

	skills[i].Settings = patch.Apply(skills[i].Settings)
	skills[i].UpdatedAt = s.now()

	if !s.kv.Set(keySkills, skills) {
		return model.Skill{}, s.writeFailed(op)
	}
	return skills[i], nil
}

// DeleteSkill implements store.DataStore. The skill and its sessions are
// written in one batch.
func (s *Store) DeleteSkill(ctx context.Context, skillID string) error {
	const op = "delete_skill"
	if err := ctx.Err(); err != nil {
		return store.Fail(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	skills, err := editDocument[model.Skill](s, op, keySkills)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(skills, func(sk model.Skill) bool { return sk.ID == skillID })
	if i < 0 {
		return store.NotFound("skill", skillID)
	}
	skills = slices.Delete(skills, i, i+1)

	sessions, err := editDocument[model.Session](s, op, keySessions)
	if err != nil {
		return err
	}
	before := len(sessions)
	sessions = slices.DeleteFunc(sessions, func(ss model.Session) bool { return ss.SkillID == skillID })

	if !s.kv.SetMany(map[string]any{
		keySkills:   skills,
		keySessions: sessions,
	}) {
		return s.writeFailed(op)
	}

	s.logger.Debug("skill deleted", "skill_id", skillID, "sessions_removed", before-len(sessions))
	return nil
}

// ListSessions implements store.DataStore.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]model.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Fail("list_sessions", err)
	}

	s.mu.Lock()
	all := s.loadSessions()
	s.mu.Unlock()

	out := make([]model.Session, 0, len(all))
	for _, ss := range all {
		if ss.UserID == userID {
			out = append(out, ss)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Session) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}

// InsertSession implements store.DataStore.
func (s *Store) InsertSession(ctx context.Context, userID string, ns model.NewSession) (model.Session, error) {
	const op = "insert_session"
	if err := ctx.Err(); err != nil {
		return model.Session{}, store.Fail(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.ContainsFunc(s.loadSkills(), func(sk model.Skill) bool { return sk.ID == ns.SkillID }) {
		return model.Session{}, store.NotFound("skill", ns.SkillID)
	}

	sess := model.Session{
		ID:       s.newID(),
		UserID:   userID,
		SkillID:  ns.SkillID,
		Duration: ns.Duration,
		Date:     ns.Date,
		Notes:    ns.Notes,
	}

	sessions, err := editDocument[model.Session](s, op, keySessions)
	if err != nil {
		return model.Session{}, err
	}
	sessions = append(sessions, sess)
	if !s.kv.Set(keySessions, sessions) {
		return model.Session{}, s.writeFailed(op)
	}

	s.logger.Debug("session inserted", "session_id", sess.ID, "skill_id", sess.SkillID, "duration", sess.Duration)
	return sess, nil
}

// GetSettings implements store.DataStore.
func (s *Store) GetSettings(ctx context.Context, userID string) (*model.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Fail("get_settings", err)
	}

	var settings model.Settings
	if !s.kv.Get(settingsKey(userID), &settings) {
		return nil, nil
	}
	return &settings, nil
}

// UpdateSettings implements store.DataStore.
func (s *Store) UpdateSettings(ctx context.Context, userID string, patch model.SettingsPatch) (model.Settings, error) {
	const op = "update_settings"
	if err := ctx.Err(); err != nil {
		return model.Settings{}, store.Fail(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := fallback.Settings()
	s.kv.Get(settingsKey(userID), &current)

	applied := patch.Apply(current)
	updated := fallback.FillSettings(&applied)
	if !s.kv.Set(settingsKey(userID), updated) {
		return model.Settings{}, s.writeFailed(op)
	}
	return updated, nil
}

// Close implements store.DataStore.
func (s *Store) Close() error {
	return s.kv.Close()
}

// loadSkills returns the stored skills, or none when the document is
// absent or unreadable.
func (s *Store) loadSkills() []model.Skill {
	skills := []model.Skill{}
	s.kv.Get(keySkills, &skills)
	return skills
}

func (s *Store) loadSessions() []model.Session {
	sessions := []model.Session{}
	s.kv.Get(keySessions, &sessions)
	return sessions
}

// editDocument loads the list stored at key for a read-modify-write. A
// missing document is empty; one that exists but cannot be decoded is
// reported instead of being overwritten.
func editDocument[T any](s *Store, op, key string) ([]T, error) {
	docs := []T{}
	if s.kv.Get(key, &docs) || !s.kv.Has(key) {
		return docs, nil
	}

	s.logger.Error("refusing to overwrite unreadable document", "key", key, "op", op)
	return nil, &store.PersistenceError{
		Op:  op,
		Err: fmt.Errorf("%w: %s", store.ErrUnreadableDocument, key),
	}
}

func (s *Store) writeFailed(op string) error {
	return &store.PersistenceError{Op: op, Err: store.ErrWriteFailed}
}

func settingsKey(userID string) string {
	return settingsPrefix + userID
}
