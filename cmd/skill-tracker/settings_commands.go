package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/reconcile"
)

// fieldEdit is one raw value typed for a form field.
type fieldEdit struct {
	name  string
	value string
}

// commitEdits stages edits on r, optionally after resetting to defaults,
// and commits them unless leaving the form needs no confirmation. Invalid
// edits are listed on w and nothing is saved. It reports whether anything
// was saved.
func commitEdits(ctx context.Context, w io.Writer, r *reconcile.Reconciler, edits []fieldEdit, reset bool) (bool, error) {
	if reset {
		r.ResetToDefaults()
	}
	for _, e := range edits {
		if err := r.SetField(e.name, e.value); err != nil {
			return false, err
		}
	}

	switch r.AttemptNavigateAway() {
	case reconcile.Proceed:
		_, _ = fmt.Fprintln(w, "No changes.")
		return false, nil
	case reconcile.Blocked:
		errs := r.FieldErrors()
		writeFieldErrors(w, errs)
		_, _ = fmt.Fprintln(w, r.ExitError())
		r.Discard()
		return false, errs
	}

	if err := r.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func newSettingsCmd(opts *globalOptions) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Manage user settings"}

	settings.AddCommand(
		newSettingsShowCmd(opts),
		newSettingsSetCmd(opts),
		newSettingsResetCmd(opts),
		newSettingsToggleThemeCmd(opts),
	)
	return settings
}

func newSettingsShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display user settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := formatter(a.cfg, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return f.FormatSettings(cmd.OutOrStdout(), a.tracker.Settings())
		},
	}
}

func newSettingsSetCmd(opts *globalOptions) *cobra.Command {
	var theme, duration string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change user settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var edits []fieldEdit
			if cmd.Flags().Changed("theme") {
				edits = append(edits, fieldEdit{model.FieldTheme, theme})
			}
			if cmd.Flags().Changed("duration") {
				edits = append(edits, fieldEdit{model.FieldDefaultSessionDuration, duration})
			}
			if len(edits) == 0 {
				return errors.New("nothing to set: use --theme or --duration")
			}

			return editSettings(cmd, opts, edits, false)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "theme (light, dark, system)")
	cmd.Flags().StringVar(&duration, "duration", "", "default session duration in minutes")
	return cmd
}

func newSettingsResetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset user settings to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return editSettings(cmd, opts, nil, true)
		},
	}
}

func newSettingsToggleThemeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-theme",
		Short: "Switch to the next theme (light, dark, system)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			next := a.tracker.Settings().Theme.Next()
			if _, err := a.tracker.UpdateSettings(cmd.Context(), model.SettingsPatch{Theme: &next}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Theme changed to %s\n", next)
			return nil
		},
	}
}

// editSettings runs edits through the settings reconciler and shows the
// settings as stored afterwards.
func editSettings(cmd *cobra.Command, opts *globalOptions, edits []fieldEdit, reset bool) error {
	a, err := loadApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.close()

	f, err := formatter(a.cfg, opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	r, err := a.tracker.SettingsReconciler()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	saved, err := commitEdits(cmd.Context(), w, r, edits, reset)
	if err != nil {
		return err
	}
	if saved {
		_, _ = fmt.Fprintln(w, "Settings saved.")
	}

	return f.FormatSettings(w, a.tracker.Settings())
}
