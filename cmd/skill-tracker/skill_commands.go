package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xmhha/skill-tracker/pkg/display"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/validation"
)

func newSkillCmd(opts *globalOptions) *cobra.Command {
	skill := &cobra.Command{Use: "skill", Short: "Manage skills"}

	skill.AddCommand(
		newSkillAddCmd(opts),
		newSkillListCmd(opts),
		newSkillDeleteCmd(opts),
		newSkillSettingsCmd(opts),
	)
	return skill
}

func newSkillAddCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a skill",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			sk, err := a.tracker.AddSkill(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added skill %s (%s)\n", sk.Name, sk.ID)
			return nil
		},
	}
}

func newSkillListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List skills with their progress",
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

			now := time.Now()
			skills := a.tracker.Skills()
			summaries := make([]display.SkillSummary, 0, len(skills))
			for _, sk := range skills {
				m, err := a.tracker.SkillMetrics(sk.ID, now)
				if err != nil {
					return err
				}
				summaries = append(summaries, display.SkillSummary{Skill: sk, Metrics: m})
			}

			return f.FormatSkills(cmd.OutOrStdout(), summaries)
		},
	}
}

func newSkillDeleteCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <skill>",
		Short: "Delete a skill and all of its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			sk, err := a.tracker.FindSkill(args[0])
			if err != nil {
				return err
			}
			sessions := len(a.tracker.SessionsFor(sk.ID))

			if !yes {
				prompt := fmt.Sprintf("Delete %s and its %d session(s)? [y/N]: ", sk.Name, sessions)
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled.")
					return nil
				}
			}

			if err := a.tracker.DeleteSkill(cmd.Context(), sk.ID); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted skill %s and %d session(s)\n", sk.Name, sessions)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func newSkillSettingsCmd(opts *globalOptions) *cobra.Command {
	var duration, target string
	var reset bool

	cmd := &cobra.Command{
		Use:   "settings <skill>",
		Short: "Show or change a skill's settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			sk, err := a.tracker.FindSkill(args[0])
			if err != nil {
				return err
			}

			var edits []fieldEdit
			if cmd.Flags().Changed("duration") {
				edits = append(edits, fieldEdit{model.FieldDefaultSessionDuration, duration})
			}
			if cmd.Flags().Changed("target") {
				edits = append(edits, fieldEdit{model.FieldTargetHours, target})
			}

			w := cmd.OutOrStdout()
			if len(edits) > 0 || reset {
				r, err := a.tracker.SkillSettingsReconciler(sk.ID)
				if err != nil {
					return err
				}
				saved, err := commitEdits(cmd.Context(), w, r, edits, reset)
				if err != nil {
					return err
				}
				if saved {
					_, _ = fmt.Fprintf(w, "Settings of %s saved.\n", sk.Name)
				}
				if sk, err = a.tracker.Skill(sk.ID); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintf(w, "%s\n  Default session duration: %d minutes\n  Target hours: %d\n",
				sk.Name, sk.Settings.DefaultSessionDuration, sk.Settings.TargetHours)
			return nil
		},
	}
	cmd.Flags().StringVar(&duration, "duration", "", "default session duration in minutes")
	cmd.Flags().StringVar(&target, "target", "", "target hours of the mastery milestone")
	cmd.Flags().BoolVar(&reset, "reset", false, "reset to defaults")
	return cmd
}

func newLogCmd(opts *globalOptions) *cobra.Command {
	var duration, date, notes string

	cmd := &cobra.Command{
		Use:   "log <skill>",
		Short: "Log a practice session",
		Long: "Log a practice session. The duration defaults to the skill's default " +
			"session duration and the date to today.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			sk, err := a.tracker.FindSkill(args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("duration") {
				duration = strconv.Itoa(a.tracker.DefaultDurationFor(sk.ID))
			}
			if !cmd.Flags().Changed("date") {
				date = model.DateOf(time.Now()).String()
			}

			s, err := a.tracker.LogSession(cmd.Context(), validation.Form{
				model.FieldSkillID:  sk.ID,
				model.FieldDuration: duration,
				model.FieldDate:     date,
				model.FieldNotes:    notes,
			})
			if err != nil {
				var errs validation.Errors
				if errors.As(err, &errs) {
					writeFieldErrors(cmd.OutOrStdout(), errs)
				}
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged %d minutes of %s on %s\n",
				s.Duration, sk.Name, s.Date.Long())
			return nil
		},
	}
	cmd.Flags().StringVarP(&duration, "duration", "d", "", "duration in minutes")
	cmd.Flags().StringVar(&date, "date", "", "session date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "session notes")
	return cmd
}

func newProgressCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <skill>",
		Short: "Show the progress of a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := formatter(a.cfg, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			sk, err := a.tracker.FindSkill(args[0])
			if err != nil {
				return err
			}
			m, err := a.tracker.SkillMetrics(sk.ID, time.Now())
			if err != nil {
				return err
			}
			daily, err := a.tracker.DailyHours(sk.ID)
			if err != nil {
				return err
			}

			return f.FormatProgress(cmd.OutOrStdout(), display.Progress{
				Skill:    sk,
				Metrics:  m,
				Daily:    slices.Collect(daily),
				Sessions: a.tracker.SessionsFor(sk.ID),
			})
		},
	}
}

func newSeedCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample skills and sessions into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			seeded, err := a.tracker.SeedSamples(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !seeded {
				_, _ = fmt.Fprintln(w, "Skills already exist; nothing seeded.")
				return nil
			}
			_, _ = fmt.Fprintf(w, "Seeded %d skills and %d sessions\n",
				len(a.tracker.Skills()), len(a.tracker.Sessions()))
			return nil
		},
	}
}

// writeFieldErrors lists validation messages in field order.
func writeFieldErrors(w io.Writer, errs validation.Errors) {
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", field, errs[field])
	}
}

// confirm asks a yes/no question and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes"
}
