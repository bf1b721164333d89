package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xmhha/skill-tracker/pkg/display"
	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/monitor"
	"github.com/0xmhha/skill-tracker/pkg/tracker"
	"github.com/0xmhha/skill-tracker/pkg/watcher"
)

// watchOptions holds the flags of the watch command.
type watchOptions struct {
	refresh     time.Duration
	clearScreen bool
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var refresh time.Duration
	var history bool

	cmd := &cobra.Command{
		Use:   "watch <skill>",
		Short: "Live progress of a skill",
		Long: "Show the progress of a skill and redraw it whenever the data store " +
			"changes, for example when a session is logged from another terminal.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, args[0], watchOptions{
				refresh:     refresh,
				clearScreen: !history,
			})
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", time.Minute, "periodic refresh interval (e.g., 30s, 5m)")
	cmd.Flags().BoolVar(&history, "history", false, "keep history of updates (append mode)")
	return cmd
}

// runWatch follows skillRef until interrupted.
func runWatch(cmd *cobra.Command, opts *globalOptions, skillRef string, wopts watchOptions) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// Only errors reach the log while the screen is redrawn.
	log := logger.New(logger.Config{
		Level:  "error",
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	out := cmd.OutOrStdout()
	f, err := formatter(cfg, opts, out)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{
		DebounceInterval: cfg.Watch.DebounceInterval,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize watcher: %w", err)
	}

	source := func(ctx context.Context) (*tracker.Tracker, error) {
		return openTracker(ctx, cfg, log)
	}

	mon, err := monitor.New(monitor.Config{
		SkillRef:        skillRef,
		WatchPaths:      []string{cfg.Storage.Path()},
		RefreshInterval: wopts.refresh,
	}, w, source, log)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to create monitor: %w", err)
	}
	defer func() {
		if err := mon.Close(); err != nil {
			log.Error("failed to close monitor", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mon.Start(ctx); err != nil {
		return err
	}

	if wopts.clearScreen {
		_, _ = fmt.Fprint(out, "\033[2J\033[H")
	}
	writeWatchHeader(out, mon.Latest(), wopts.refresh)

	for {
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprint(out, "\n\nStopping monitor...\n")
			if err := mon.Stop(); err != nil {
				log.Error("failed to stop monitor", "error", err)
			}
			return nil

		case update, ok := <-mon.Updates():
			if !ok {
				return nil
			}
			if err := renderUpdate(out, f, update, wopts.clearScreen); err != nil {
				return err
			}
		}
	}
}

// watchHeaderLines is the height of the header kept on screen.
const watchHeaderLines = 4

func writeWatchHeader(w io.Writer, u monitor.Update, refresh time.Duration) {
	_, _ = fmt.Fprintln(w, "Live Skill Progress - Press Ctrl+C to stop")
	_, _ = fmt.Fprintf(w, "Skill: %s | Refresh: %s\n", u.Skill.Name, refresh)
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))
	_, _ = fmt.Fprintln(w)
}

// renderUpdate draws one update below the header.
func renderUpdate(w io.Writer, f display.Formatter, u monitor.Update, clearScreen bool) error {
	if clearScreen {
		// Move below the header and clear to the end of the screen.
		_, _ = fmt.Fprintf(w, "\033[%d;1H\033[J", watchHeaderLines+1)
	}

	_, _ = fmt.Fprintf(w, "Last updated: %s", u.Timestamp.Format("15:04:05"))
	if !u.Delta.IsZero() {
		_, _ = fmt.Fprintf(w, " | %+d session(s), %+d minutes", u.Delta.NewSessions, u.Delta.Minutes)
	}
	_, _ = fmt.Fprintln(w)

	return f.FormatProgress(w, display.Progress{
		Skill:   u.Skill,
		Metrics: u.Metrics,
		Daily:   u.Daily,
	})
}
