package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/metrics"
	"github.com/0xmhha/skill-tracker/pkg/watcher"
)

// liveMonitor implements the LiveMonitor interface.
type liveMonitor struct {
	config  Config
	logger  logger.Logger
	watcher watcher.Watcher
	source  Source

	mu       sync.RWMutex
	running  bool
	closed   bool
	stopChan chan struct{}

	// refreshMu serializes refreshes from events and the ticker.
	refreshMu sync.Mutex
	skillID   string
	last      Update

	updates chan Update
}

// New creates a new live monitor.
//
// Parameters:
//   - cfg: Monitor configuration
//   - w: File watcher
//   - src: Opens a loaded tracker for each refresh
//   - log: Logger instance
//
// Returns:
//   - Configured LiveMonitor
//   - ErrInvalidConfig if the skill reference, watcher or source is missing
func New(cfg Config, w watcher.Watcher, src Source, log logger.Logger) (LiveMonitor, error) {
	if strings.TrimSpace(cfg.SkillRef) == "" || w == nil || src == nil {
		return nil, ErrInvalidConfig
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Noop()
	}

	m := &liveMonitor{
		config:   cfg,
		logger:   log.Component("monitor").With("skill", cfg.SkillRef),
		watcher:  w,
		source:   src,
		stopChan: make(chan struct{}),
		updates:  make(chan Update, 10),
	}

	m.logger.Debug("live monitor created", "refresh_interval", cfg.RefreshInterval)
	return m, nil
}

// Start implements LiveMonitor.Start.
func (m *liveMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMonitorClosed
	}
	if m.running {
		m.mu.Unlock()
		return ErrMonitorRunning
	}
	m.running = true
	stop := m.stopChan
	m.mu.Unlock()

	if err := m.refresh(ctx); err != nil {
		m.setStopped()
		return fmt.Errorf("initial refresh failed: %w", err)
	}

	if err := m.watcher.Start(ctx, m.config.WatchPaths); err != nil {
		m.setStopped()
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	m.logger.Info("live monitor started", "skill_id", m.Latest().Skill.ID)

	go m.processEvents(ctx, stop)
	go m.periodicUpdates(ctx, stop)
	return nil
}

func (m *liveMonitor) setStopped() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

// Stop implements LiveMonitor.Stop.
func (m *liveMonitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrMonitorClosed
	}
	if !m.running {
		return ErrMonitorNotRunning
	}

	close(m.stopChan)
	m.stopChan = make(chan struct{})
	m.running = false

	if err := m.watcher.Stop(); err != nil {
		m.logger.Warn("failed to stop watcher", "error", err)
	}

	m.logger.Info("live monitor stopped")
	return nil
}

// Latest implements LiveMonitor.Latest.
func (m *liveMonitor) Latest() Update {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	return m.last
}

// Updates implements LiveMonitor.Updates.
func (m *liveMonitor) Updates() <-chan Update {
	return m.updates
}

// processEvents refreshes on every debounced storage change.
func (m *liveMonitor) processEvents(ctx context.Context, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-stop:
			return

		case event, ok := <-m.watcher.Events():
			if !ok {
				m.logger.Debug("watcher events channel closed")
				return
			}

			m.logger.Debug("storage change detected", "path", event.Path, "op", event.Op)
			if err := m.refresh(ctx); err != nil {
				m.logger.Warn("refresh after change failed", "error", err)
			}

		case err, ok := <-m.watcher.Errors():
			if !ok {
				m.logger.Debug("watcher errors channel closed")
				return
			}
			m.logger.Error("watcher error", "error", err)
		}
	}
}

// periodicUpdates refreshes even without changes, so time-based
// metrics such as consistency keep moving.
func (m *liveMonitor) periodicUpdates(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(m.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-stop:
			return

		case <-ticker.C:
			if err := m.refresh(ctx); err != nil {
				m.logger.Warn("periodic refresh failed", "error", err)
			}
		}
	}
}

// refresh reloads the skill and publishes an update.
func (m *liveMonitor) refresh(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	tr, err := m.source(ctx)
	if err != nil {
		return fmt.Errorf("open tracker: %w", err)
	}
	defer func() {
		if closeErr := tr.Close(); closeErr != nil {
			m.logger.Warn("failed to close tracker", "error", closeErr)
		}
	}()

	ref := m.skillID
	if ref == "" {
		ref = m.config.SkillRef
	}
	skill, err := tr.FindSkill(ref)
	if err != nil {
		return err
	}

	now := m.config.Now()
	sessions := tr.SessionsFor(skill.ID)
	current := metrics.Compute(sessions, skill.Settings.TargetHours, now)

	update := Update{
		Timestamp: now,
		Skill:     skill,
		Metrics:   current,
		Daily:     metrics.CollectDailyHours(sessions),
	}
	// The first update has no baseline.
	if m.skillID != "" {
		update.Delta = delta(m.last.Metrics, current)
	}

	m.skillID = skill.ID
	m.last = update
	m.publish(update)
	return nil
}

// delta returns what changed between two metric snapshots.
func delta(prev, cur *metrics.Metrics) DeltaStats {
	var d DeltaStats
	if cur != nil {
		d.NewSessions = cur.TotalSessions
		d.Minutes = cur.TotalMinutes
	}
	if prev != nil {
		d.NewSessions -= prev.TotalSessions
		d.Minutes -= prev.TotalMinutes
	}
	return d
}

// publish sends update without blocking.
func (m *liveMonitor) publish(update Update) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}

	select {
	case m.updates <- update:
	default:
		m.logger.Warn("updates channel full, dropping update")
	}
}

// Close implements LiveMonitor.Close.
func (m *liveMonitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.running {
		close(m.stopChan)
		m.running = false
	}

	close(m.updates)

	if err := m.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	m.logger.Debug("live monitor closed")
	return nil
}
