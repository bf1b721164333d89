// Package main provides the skill-tracker CLI application.
//
// Skill Tracker records practice sessions per skill and reports progress
// toward a mastery milestone. Data is kept either in a local bbolt file or
// in a SQLite database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	format     string
	compact    bool
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "skill-tracker",
		Short:         "Track practice time toward skill mastery",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&opts.format, "format", "", "output format (table, json, simple)")
	root.PersistentFlags().BoolVar(&opts.compact, "compact", false, "compact output")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newSkillCmd(opts),
		newLogCmd(opts),
		newProgressCmd(opts),
		newSettingsCmd(opts),
		newSeedCmd(opts),
		newWatchCmd(opts),
		newConfigCmd(opts),
	)
	return root
}
