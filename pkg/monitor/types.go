// Package monitor provides live progress of one skill.
//
// The monitor reloads the skill's sessions whenever the storage file
// changes and on a fixed interval, and publishes an Update with the
// recomputed metrics and what changed since the previous update.
package monitor

import (
	"context"
	"time"

	"github.com/0xmhha/skill-tracker/pkg/metrics"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/tracker"
)

// Source opens a loaded tracker. The monitor closes it after each
// refresh, so a store holding a file lock releases it between refreshes.
type Source func(ctx context.Context) (*tracker.Tracker, error)

// Config holds the configuration for the live monitor.
type Config struct {
	// SkillRef is the id or name of the skill to follow. Required.
	SkillRef string

	// WatchPaths are handed to the watcher, normally the storage file.
	WatchPaths []string

	// RefreshInterval is the interval between periodic refreshes.
	// Default: 1m.
	RefreshInterval time.Duration

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// LiveMonitor follows the progress of one skill.
type LiveMonitor interface {
	// Start performs the first refresh and begins watching. It returns
	// once the first Update is available.
	Start(ctx context.Context) error

	// Stop stops the monitor gracefully.
	Stop() error

	// Latest returns the most recent update.
	Latest() Update

	// Updates returns a channel for receiving live updates. It is
	// closed by Close.
	Updates() <-chan Update

	// Close stops the monitor and releases resources.
	Close() error
}

// Update represents a live monitoring update event.
type Update struct {
	// Timestamp of the update
	Timestamp time.Time

	// Skill being monitored
	Skill model.Skill

	// Metrics of the skill, nil while it has no sessions
	Metrics *metrics.Metrics

	// Daily contains per-date totals, most recent first
	Daily []metrics.DailyTotal

	// Delta contains the change since the last update
	Delta DeltaStats
}

// DeltaStats represents changes since the last update.
type DeltaStats struct {
	// NewSessions is the number of sessions logged since the last update
	NewSessions int

	// Minutes added since the last update
	Minutes int
}

// IsZero reports whether nothing changed.
func (d DeltaStats) IsZero() bool {
	return d.NewSessions == 0 && d.Minutes == 0
}
