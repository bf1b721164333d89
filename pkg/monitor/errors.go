package monitor

import "errors"

var (
	// ErrMonitorClosed is returned by Start and Stop after Close.
	ErrMonitorClosed = errors.New("monitor is closed")

	// ErrMonitorRunning is returned by Start while a skill is followed.
	ErrMonitorRunning = errors.New("monitor is already running")

	// ErrMonitorNotRunning is returned by Stop before Start.
	ErrMonitorNotRunning = errors.New("monitor is not running")

	// ErrInvalidConfig is returned by New without a skill, watcher or
	// tracker source.
	ErrInvalidConfig = errors.New("invalid monitor configuration")
)
