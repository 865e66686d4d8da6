package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/nfcprofile/internal/profile"
	"github.com/muurk/nfcprofile/internal/setting"
	"github.com/muurk/nfcprofile/internal/ui"
	"github.com/muurk/nfcprofile/internal/urls"
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileURICmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create, edit and delete profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name> [setting=value...]",
	Short: "Create a profile",
	Long: `Create a profile with a generated key and optional setting values.

Settings and their values:
  airplane_mode      activate | deactivate
  screen_timeout     seconds
  screen_brightness  0-255, or -1 for automatic
  vibrator_0         on | off | silent
  vibrator_1         on | off | silent
  ring_mode          silent | vibrate | ring | ring_vibrate | activate | deactivate

Settings not given stay "unchanged".`,
	Example: `  # Quiet evening profile
  nfcprofile profile add Night ring_mode=silent screen_brightness=20

  # Flight profile
  nfcprofile profile add Flight airplane_mode=activate`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProfileAdd,
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	return withApp(func(a *app) error {
		key, err := a.registry.GenerateKey()
		if err != nil {
			return err
		}
		if err := a.registry.SetName(key, args[0]); err != nil {
			return err
		}
		if err := writeSettings(a, key, values); err != nil {
			return err
		}
		if err := a.markChanged(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.NewSuccessResult("Profile created",
			ui.Param{Key: "Name", Value: args[0]},
			ui.Param{Key: "Key", Value: key},
			ui.Param{Key: "Tag URI", Value: urls.TagURI(key)},
		).Render())
		return nil
	})
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List profiles",
	RunE:    runProfileList,
}

func runProfileList(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		entries, err := a.registry.ListValid()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No profiles. Create one with 'nfcprofile profile add <name>'.")
			return nil
		}

		current, _ := a.tracker.Current()
		table := ui.NewTable("", "KEY", "NAME")
		for _, e := range entries {
			mark := ""
			if e.Key == current {
				mark = ui.SuccessMarker
			}
			table.AddRow(mark, e.Key, e.Name)
		}
		fmt.Fprintln(out, table.Render())
		return nil
	})
}

var profileShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a profile's settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		key, err := resolveKey(a, args[0])
		if err != nil {
			return err
		}
		p := profile.New(a.db.Store(key), nil)

		fmt.Fprintln(cmd.OutOrStdout(), ui.NewHeader(p.Name(), cmd.CommandPath()+" "+key,
			ui.Param{Key: "Key", Value: key},
			ui.Param{Key: "Tag URI", Value: urls.TagURI(key)},
		).Render())

		table := ui.NewTable("SETTING", "VALUE")
		for _, s := range p.Settings() {
			table.AddRow(s.Name(), s.Desired())
		}
		fmt.Fprintln(cmd.OutOrStdout(), table.Render())
		return nil
	})
}

var profileSetCmd = &cobra.Command{
	Use:   "set <key> <setting=value>...",
	Short: "Change settings of a profile",
	Long: `Change one or more settings of an existing profile. Use the value
"unchanged" to stop a profile from touching a setting.`,
	Example: `  nfcprofile profile set 3f2a9c screen_timeout=30 vibrator_0=off`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runProfileSet,
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	return withApp(func(a *app) error {
		key, err := resolveKey(a, args[0])
		if err != nil {
			return err
		}
		if err := writeSettings(a, key, values); err != nil {
			return err
		}
		if err := a.markChanged(); err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", ui.SuccessMarker, v.Key, v.Value)
		}
		return nil
	})
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <key> <name>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			key, err := resolveKey(a, args[0])
			if err != nil {
				return err
			}
			if err := a.registry.SetName(key, args[1]); err != nil {
				return err
			}
			return a.markChanged()
		})
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete <key>",
	Aliases: []string{"rm"},
	Short:   "Delete a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileDelete,
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		key, err := resolveKey(a, args[0])
		if err != nil {
			return err
		}
		name := a.db.Store(key).GetString(profile.NameKey, key)

		warnings := []string{"Tags written for this profile will stop working"}
		if current, _ := a.tracker.Current(); current == key {
			warnings = append(warnings, "The profile is active; its saved values will not be restored")
		}
		if !assumeYes && !ui.ConfirmDestructive(os.Stdin, cmd.OutOrStdout(), "DELETE "+name, warnings) {
			return nil
		}

		if err := a.registry.Delete(key); err != nil {
			return err
		}
		if err := a.markChanged(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", ui.SuccessMarker, name)
		return nil
	})
}

var profileURICmd = &cobra.Command{
	Use:   "uri <key>",
	Short: "Print the tag URI for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			key, err := resolveKey(a, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), urls.TagURI(key))
			return nil
		})
	},
}

// assignment is one "setting=value" argument after validation.
type assignment struct {
	Key   string
	Value string
}

// parseAssignments validates setting=value arguments and returns their
// canonical values in argument order.
func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected setting=value, got %q", arg)
		}
		canonical, err := setting.Validate(strings.TrimSpace(name), value)
		if err != nil {
			return nil, err
		}
		out = append(out, assignment{Key: strings.TrimSpace(name), Value: canonical})
	}
	return out, nil
}

func writeSettings(a *app, key string, values []assignment) error {
	if len(values) == 0 {
		return nil
	}
	ed := a.db.Store(key).Edit()
	for _, v := range values {
		ed.PutString(v.Key, v.Value)
	}
	return ed.Apply()
}

// resolveKey accepts a full key, a tag URI, a unique key prefix or a
// unique profile name.
func resolveKey(a *app, arg string) (string, error) {
	key, err := urls.KeyFromURI(arg)
	if err != nil {
		return "", err
	}
	if a.registry.IsValid(key) {
		return key, nil
	}

	entries, err := a.registry.ListValid()
	if err != nil {
		return "", err
	}
	var matches []string
	for _, e := range entries {
		if strings.HasPrefix(e.Key, key) || strings.EqualFold(e.Name, arg) {
			matches = append(matches, e.Key)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no profile matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return "", errors.New("ambiguous profile " + arg + ": " + strings.Join(matches, ", "))
	}
}
