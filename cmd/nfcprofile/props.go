package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/nfcprofile/internal/sysprop"
	"github.com/muurk/nfcprofile/internal/ui"
)

var (
	propString bool
	propEvents int
)

func init() {
	rootCmd.AddCommand(propsCmd)
	propsCmd.AddCommand(propsShowCmd)
	propsCmd.AddCommand(propsSetCmd)

	propsShowCmd.Flags().IntVar(&propEvents, "events", 10, "Number of recent broadcasts to show")
	propsSetCmd.Flags().BoolVar(&propString, "string", false, "Store the value as a string property")
}

var propsCmd = &cobra.Command{
	Use:   "props",
	Short: "Inspect and edit the system properties file",
	Long: `Profiles read and write system properties through a YAML file. On a
real device a platform bridge keeps that file in sync with the system; on
a desktop it lets profiles be exercised end to end.`,
}

var propsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print all properties and recent broadcasts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := sysprop.NewFile(cfg.PropertiesFile)
		ints, strs, events, err := f.Snapshot()
		if err != nil {
			return err
		}

		table := ui.NewTable("PROPERTY", "VALUE")
		for _, k := range slices.Sorted(maps.Keys(ints)) {
			table.AddRow(k, strconv.Itoa(ints[k]))
		}
		for _, k := range slices.Sorted(maps.Keys(strs)) {
			table.AddRow(k, strconv.Quote(strs[k]))
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, table.Render())

		if len(events) > propEvents {
			events = events[len(events)-propEvents:]
		}
		if len(events) > 0 {
			fmt.Fprintln(out)
			ev := ui.NewTable("EVENT", "PAYLOAD")
			for _, e := range events {
				ev.AddRow(e.Name, fmt.Sprint(e.Payload))
			}
			fmt.Fprintln(out, ev.Render())
		}
		return nil
	},
}

var propsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a property",
	Example: `  nfcprofile props set ringer_mode 2
  nfcprofile props set airplane_mode_radios cell,bluetooth,wifi,nfc --string`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := sysprop.NewFile(cfg.PropertiesFile)
		if propString {
			return f.PutString(args[0], args[1])
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%s is not an integer (use --string for text values)", args[1])
		}
		return f.PutInt(args[0], v)
	},
}
