// Package tracker holds the application state of one user.
//
// A Tracker owns the user's skills, sessions and settings as loaded from a
// store.DataStore. Reads are served from memory. Mutations go to the store
// first and touch memory only once the store reports success, so a failed
// write leaves the visible state untouched. Two mutations of the same
// record may not overlap; the second one fails with ErrBusy.
//
// Example usage:
//
//	t, err := tracker.New(tracker.Config{
//	    Store:  ds,
//	    UserID: cfg.User.ID,
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Close()
//
//	if err := t.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	m, _ := t.SkillMetrics(skillID, time.Now())
package tracker

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/0xmhha/skill-tracker/pkg/fallback"
	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/metrics"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/store"
	"github.com/0xmhha/skill-tracker/pkg/validation"
)

// Config contains tracker configuration.
type Config struct {
	// Store persists the records. Required. Closed by Tracker.Close.
	Store store.DataStore

	// UserID is the user whose records are tracked. Required.
	UserID string

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Tracker is the application state service.
type Tracker struct {
	store  store.DataStore
	userID string
	now    func() time.Time
	logger logger.Logger

	mu       sync.RWMutex
	skills   []model.Skill
	sessions []model.Session
	settings *model.Settings

	guardMu  sync.Mutex
	inflight map[string]struct{}
}

// New creates a tracker with empty state. Call Load to read the store.
func New(cfg Config, log logger.Logger) (*Tracker, error) {
	if cfg.Store == nil {
		return nil, ErrNoStore
	}
	if strings.TrimSpace(cfg.UserID) == "" {
		return nil, ErrNoUser
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Noop()
	}

	return &Tracker{
		store:    cfg.Store,
		userID:   cfg.UserID,
		now:      cfg.Now,
		logger:   log.Component("tracker").With("user_id", cfg.UserID),
		inflight: make(map[string]struct{}),
	}, nil
}

// UserID returns the tracked user.
func (t *Tracker) UserID() string {
	return t.userID
}

// Load replaces the in-memory state with the store's.
func (t *Tracker) Load(ctx context.Context) error {
	skills, err := t.store.ListSkills(ctx, t.userID)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}
	sessions, err := t.store.ListSessions(ctx, t.userID)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	settings, err := t.store.GetSettings(ctx, t.userID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	t.mu.Lock()
	t.skills = skills
	t.sessions = sessions
	t.settings = settings
	t.mu.Unlock()

	t.logger.Debug("state loaded", "skills", len(skills), "sessions", len(sessions))
	return nil
}

// Skills returns the user's skills, oldest first.
func (t *Tracker) Skills() []model.Skill {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.skills)
}

// Sessions returns every session of the user, most recent first.
func (t *Tracker) Sessions() []model.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.sessions)
}

// SessionsFor returns the sessions of one skill, most recent first.
func (t *Tracker) SessionsFor(skillID string) []model.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessionsForLocked(skillID)
}

// Settings returns the user's settings with fallbacks for anything never
// saved.
func (t *Tracker) Settings() model.Settings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fallback.FillSettings(t.settings)
}

// Skill returns one skill.
func (t *Tracker) Skill(id string) (model.Skill, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.skillLocked(id)
}

// FindSkill returns the skill whose id or name matches ref. Names match
// case-insensitively.
func (t *Tracker) FindSkill(ref string) (model.Skill, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if sk, err := t.skillLocked(ref); err == nil {
		return sk, nil
	}
	for _, sk := range t.skills {
		if strings.EqualFold(sk.Name, strings.TrimSpace(ref)) {
			return sk, nil
		}
	}
	return model.Skill{}, store.NotFound("skill", ref)
}

// AddSkill creates a skill named name. Its default session duration is
// the user's current default.
func (t *Tracker) AddSkill(ctx context.Context, name string) (model.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Skill{}, ErrEmptyName
	}

	release, err := t.acquire("new-skill:" + strings.ToLower(name))
	if err != nil {
		return model.Skill{}, err
	}
	defer release()

	settings := fallback.SkillSettings(t.Settings().DefaultSessionDuration)
	sk, err := t.store.InsertSkill(ctx, t.userID, name, settings)
	if err != nil {
		return model.Skill{}, err
	}

	t.mu.Lock()
	t.skills = append(t.skills, sk)
	t.mu.Unlock()

	t.logger.Info("skill added", "skill_id", sk.ID, "name", sk.Name)
	return sk, nil
}

// DeleteSkill removes a skill and all its sessions.
func (t *Tracker) DeleteSkill(ctx context.Context, id string) error {
	if _, err := t.Skill(id); err != nil {
		return err
	}

	release, err := t.acquire(skillGuard(id))
	if err != nil {
		return err
	}
	defer release()

	if err := t.store.DeleteSkill(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	t.skills = slices.DeleteFunc(t.skills, func(sk model.Skill) bool { return sk.ID == id })
	t.sessions = slices.DeleteFunc(t.sessions, func(s model.Session) bool { return s.SkillID == id })
	t.mu.Unlock()

	t.logger.Info("skill deleted", "skill_id", id)
	return nil
}

// LogSession validates a session form and records the session.
//
// Returns validation.Errors for invalid input and ErrNotFound when the
// skill is unknown.
func (t *Tracker) LogSession(ctx context.Context, form validation.Form) (model.Session, error) {
	result := validation.ParseSessionLog(form, t.now())
	ns, ok := result.Value()
	if !ok {
		return model.Session{}, result.Err()
	}

	if _, err := t.Skill(ns.SkillID); err != nil {
		return model.Session{}, err
	}

	release, err := t.acquire(skillGuard(ns.SkillID))
	if err != nil {
		return model.Session{}, err
	}
	defer release()

	sess, err := t.store.InsertSession(ctx, t.userID, ns)
	if err != nil {
		return model.Session{}, err
	}

	t.mu.Lock()
	t.sessions = append(t.sessions, sess)
	slices.SortStableFunc(t.sessions, func(a, b model.Session) int {
		return b.Date.Compare(a.Date)
	})
	t.mu.Unlock()

	t.logger.Info("session logged", "session_id", sess.ID, "skill_id", sess.SkillID, "duration", sess.Duration)
	return sess, nil
}

// UpdateSettings applies patch to the user's settings.
func (t *Tracker) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	release, err := t.acquire("settings")
	if err != nil {
		return model.Settings{}, err
	}
	defer release()

	updated, err := t.store.UpdateSettings(ctx, t.userID, patch)
	if err != nil {
		return model.Settings{}, err
	}

	t.mu.Lock()
	t.settings = &updated
	t.mu.Unlock()

	t.logger.Info("settings updated", "theme", updated.Theme, "default_session_duration", updated.DefaultSessionDuration)
	return updated, nil
}

// UpdateSkillSettings applies patch to the settings of one skill.
func (t *Tracker) UpdateSkillSettings(ctx context.Context, id string, patch model.SkillSettingsPatch) (model.Skill, error) {
	if _, err := t.Skill(id); err != nil {
		return model.Skill{}, err
	}

	release, err := t.acquire(skillGuard(id))
	if err != nil {
		return model.Skill{}, err
	}
	defer release()

	updated, err := t.store.UpdateSkillSettings(ctx, id, patch)
	if err != nil {
		return model.Skill{}, err
	}

	t.mu.Lock()
	if i := slices.IndexFunc(t.skills, func(sk model.Skill) bool { return sk.ID == id }); i >= 0 {
		t.skills[i] = updated
	}
	t.mu.Unlock()

	t.logger.Info("skill settings updated", "skill_id", id,
		"default_session_duration", updated.Settings.DefaultSessionDuration,
		"target_hours", updated.Settings.TargetHours)
	return updated, nil
}

// SkillMetrics computes the metrics of one skill at now. The metrics are
// nil when the skill has no sessions.
func (t *Tracker) SkillMetrics(id string, now time.Time) (*metrics.Metrics, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sk, err := t.skillLocked(id)
	if err != nil {
		return nil, err
	}
	return metrics.Compute(t.sessionsForLocked(id), sk.Settings.TargetHours, now), nil
}

// DailyHours returns the per-date practice totals of one skill, most
// recent first.
func (t *Tracker) DailyHours(id string) (iter.Seq[metrics.DailyTotal], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, err := t.skillLocked(id); err != nil {
		return nil, err
	}
	return metrics.DailyHours(t.sessionsForLocked(id)), nil
}

// DefaultDurationFor returns the duration a new session of skillID is
// prefilled with: the skill's own default, then the user's default, then
// the fallback.
func (t *Tracker) DefaultDurationFor(skillID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if sk, err := t.skillLocked(skillID); err == nil && sk.Settings.DefaultSessionDuration > 0 {
		return sk.Settings.DefaultSessionDuration
	}
	return fallback.FillSettings(t.settings).DefaultSessionDuration
}

// Close closes the store.
func (t *Tracker) Close() error {
	return t.store.Close()
}

// acquire marks key as in flight. The returned func clears the mark.
func (t *Tracker) acquire(key string) (func(), error) {
	t.guardMu.Lock()
	defer t.guardMu.Unlock()

	if _, busy := t.inflight[key]; busy {
		return nil, fmt.Errorf("%w: %s", ErrBusy, key)
	}
	t.inflight[key] = struct{}{}

	return func() {
		t.guardMu.Lock()
		delete(t.inflight, key)
		t.guardMu.Unlock()
	}, nil
}

func (t *Tracker) skillLocked(id string) (model.Skill, error) {
	i := slices.IndexFunc(t.skills, func(sk model.Skill) bool { return sk.ID == id })
	if i < 0 {
		return model.Skill{}, store.NotFound("skill", id)
	}
	return t.skills[i], nil
}

func (t *Tracker) sessionsForLocked(skillID string) []model.Session {
	var out []model.Session
	for _, s := range t.sessions {
		if s.SkillID == skillID {
			out = append(out, s)
		}
	}
	return out
}

func skillGuard(id string) string {
	return "skill:" + id
}
