package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/0xmhha/skill-tracker/pkg/config"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration management"}

	cfgCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Display current configuration (yaml, or json with --format json)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runConfigShow(cmd.OutOrStdout(), opts)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file paths",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runConfigPath(cmd.OutOrStdout(), opts)
			},
		},
		newConfigResetCmd(),
	)
	return cfgCmd
}

// runConfigShow displays the current configuration.
func runConfigShow(w io.Writer, opts *globalOptions) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, _ = fmt.Fprintln(w, string(data))
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, _ = fmt.Fprintln(w, "# Current Configuration")
	_, _ = fmt.Fprintln(w, "# Source:", configSource(opts))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, string(data))
	return nil
}

// runConfigPath shows the configuration file search paths.
func runConfigPath(w io.Writer, opts *globalOptions) error {
	_, _ = fmt.Fprintln(w, "Configuration file search paths (in order of precedence):")
	_, _ = fmt.Fprintln(w)

	for i, p := range searchPaths() {
		exists := "not found"
		if _, err := os.Stat(p); err == nil {
			exists = "found"
		}
		_, _ = fmt.Fprintf(w, "  %d. %s [%s]\n", i+1, p, exists)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Active configuration:", configSource(opts))
	return nil
}

func newConfigResetCmd() *cobra.Command {
	var force bool
	var output string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputPath := output
			if outputPath == "" {
				outputPath = config.DefaultPath()
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(outputPath); err == nil && !force {
				prompt := fmt.Sprintf("Configuration file already exists at: %s\nOverwrite? [y/N]: ", outputPath)
				if !confirm(cmd.InOrStdin(), out, prompt) {
					_, _ = fmt.Fprintln(out, "Reset cancelled.")
					return nil
				}
			}

			if err := config.Save(config.Default(), outputPath); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "Configuration reset to defaults at: %s\n", outputPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")
	cmd.Flags().StringVar(&output, "output", "", "output path for config file (default: ~/.config/skill-tracker/config.yaml)")
	return cmd
}

// searchPaths lists where configuration files are looked up.
func searchPaths() []string {
	return []string{"./config.yaml", config.DefaultPath()}
}

// configSource returns the path of the active configuration file.
func configSource(opts *globalOptions) string {
	if opts.configPath != "" {
		return opts.configPath
	}
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "defaults (no config file found)"
}
