package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/nfcprofile/internal/prefs"
	"github.com/muurk/nfcprofile/internal/profile"
	"github.com/muurk/nfcprofile/internal/tracker"
	"github.com/muurk/nfcprofile/internal/ui"
	"github.com/muurk/nfcprofile/internal/urls"
)

func init() {
	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(deactivateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.AddCommand(optionsSetCmd)
}

var invokeCmd = &cobra.Command{
	Use:   "invoke <uri|key>",
	Short: "Handle a tag touch",
	Long: `Handle a tag touch as if the tag had just been read.

With no active profile the profile is applied. With an active profile the
active profile is restored, unless reset_on_second_touch is off, in which
case the touched profile is applied. A key that is not a named profile is
registered so it can be named later.`,
	Example: `  nfcprofile invoke nfcprofile://3f2a9c...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			key, err := urls.KeyFromURI(args[0])
			if err != nil {
				return err
			}
			tr, err := a.tracker.Invoke(key)
			return reportTransition(cmd.OutOrStdout(), a, tr, err)
		})
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <key>",
	Short: "Apply a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			key, err := resolveKey(a, args[0])
			if err != nil {
				return err
			}
			tr, err := a.tracker.Activate(key)
			return reportTransition(cmd.OutOrStdout(), a, tr, err)
		})
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Restore the settings saved when the active profile was applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			tr, err := a.tracker.Deactivate()
			return reportTransition(cmd.OutOrStdout(), a, tr, err)
		})
	},
}

// reportTransition prints the outcome, records the change for backup and
// returns err so the exit status reflects failures.
func reportTransition(out io.Writer, a *app, tr *tracker.Transition, err error) error {
	if tr == nil {
		return err
	}
	if markErr := a.markChanged(); markErr != nil && err == nil {
		err = markErr
	}

	if tr.Action == tracker.ActionUnknown {
		fmt.Fprintln(out, ui.NewWarningResult("Unknown profile tag",
			ui.Param{Key: "Key", Value: tr.Key},
			ui.Param{Key: "Next step", Value: "nfcprofile profile rename " + tr.Key + " <name>"},
		).Render())
		return err
	}

	fmt.Fprintln(out, transitionResult(tr).Render())
	return err
}

func transitionResult(tr *tracker.Transition) *ui.Result {
	title := "Profile applied"
	if tr.Action == tracker.ActionRestored {
		title = "Settings restored"
	}

	r := ui.NewSuccessResult(title,
		ui.Param{Key: "Profile", Value: tr.Name},
		ui.Param{Key: "Key", Value: tr.Key},
	)
	if res := tr.Result; res != nil {
		r.AddDetail("Result", res.Summary())
		r.AddDetail("Duration", res.Duration.String())
		if !res.Success {
			r.Type = ui.ResultFailure
			r.Error = res.Error
			r.Hints = failureHints(res)
		}
	}
	return r
}

func failureHints(res *profile.Result) []string {
	var hints []string
	if len(res.Skipped) > 0 && len(res.Changed) > 0 {
		hints = append(hints, "Settings after the failure were not attempted; set profiles.continue_on_error to try all of them")
	}
	hints = append(hints, "Check the properties file with 'nfcprofile props show'")
	return hints
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active profile and options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			defaults := prefs.Default(a.db)
			active := "none"
			if key, ok := a.tracker.Current(); ok {
				active = a.db.Store(key).GetString(profile.NameKey, key) + " (" + key + ")"
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.NewHeader("Status", cmd.CommandPath(),
				ui.Param{Key: "Active profile", Value: active},
				ui.Param{Key: "Second touch resets", Value: strconv.FormatBool(defaults.GetBool(tracker.PrefResetOnSecondTouch, true))},
				ui.Param{Key: "Vibrate feedback", Value: strconv.FormatBool(defaults.GetBool(tracker.PrefVibrate, true))},
				ui.Param{Key: "Data directory", Value: cfg.DataDir},
				ui.Param{Key: "Properties file", Value: cfg.PropertiesFile},
			).Render())
			return nil
		})
	},
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Tag behaviour options",
}

var optionsSetCmd = &cobra.Command{
	Use:   "set <option> <true|false>",
	Short: "Set a tag behaviour option",
	Long: `Set a tag behaviour option.

Options:
  reset_on_second_touch  touching a tag while a profile is active restores it (default true)
  vibrate                pulse the vibrator on every transition (default true)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case tracker.PrefResetOnSecondTouch, tracker.PrefVibrate:
		default:
			return fmt.Errorf("unknown option %q", args[0])
		}
		v, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}

		return withApp(func(a *app) error {
			if err := prefs.Default(a.db).Edit().PutBool(args[0], v).Apply(); err != nil {
				return err
			}
			return a.markChanged()
		})
	},
}
