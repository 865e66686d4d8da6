package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/nfcprofile/internal/ui"
)

var (
	backupOut   string
	backupState string
	forceBackup bool
	restoreIn   string
)

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)

	backupCmd.Flags().StringVarP(&backupOut, "out", "o", "", "Backup file to write (required)")
	backupCmd.Flags().StringVar(&backupState, "state", "", "State file from the previous backup; skipped when nothing changed since")
	backupCmd.Flags().BoolVar(&forceBackup, "force", false, "Write a backup even if nothing changed")
	_ = backupCmd.MarkFlagRequired("out")

	restoreCmd.Flags().StringVarP(&restoreIn, "in", "i", "", "Backup file to read (required)")
	restoreCmd.Flags().StringVar(&backupState, "state", "", "State file to write after restoring")
	_ = restoreCmd.MarkFlagRequired("in")
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up profiles and options",
	Long: `Write every profile and the global options to a backup file.

With --state, the file written by the previous backup is consulted and the
backup is skipped when nothing changed since. The state file is then
updated.`,
	Example: `  nfcprofile backup -o profiles.bak --state profiles.state`,
	Args:    cobra.NoArgs,
	RunE:    runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		var oldState io.Reader
		if backupState != "" && !forceBackup {
			data, err := os.ReadFile(backupState)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("read state: %w", err)
			}
			oldState = bytes.NewReader(data)
		}

		var out, state bytes.Buffer
		res, err := a.agent.Backup(oldState, &out, &state)
		if err != nil {
			return err
		}

		if res.Performed {
			if err := writeFileAtomic(backupOut, out.Bytes()); err != nil {
				return err
			}
		}
		if backupState != "" {
			if err := writeFileAtomic(backupState, state.Bytes()); err != nil {
				return err
			}
		}

		if !res.Performed {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed since the last backup.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.NewSuccessResult("Backup written",
			ui.Param{Key: "File", Value: backupOut},
			ui.Param{Key: "Blocks", Value: strconv.Itoa(len(res.Blocks))},
			ui.Param{Key: "Bytes", Value: strconv.Itoa(res.Bytes)},
		).Render())
		return nil
	})
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore profiles and options from a backup",
	Long: `Replace profiles and options with the contents of a backup file.

Each stored block is restored on its own. A corrupt block keeps the entries
read before the damage and the remaining blocks are still restored.`,
	Args: cobra.NoArgs,
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	f, err := os.Open(restoreIn)
	if err != nil {
		return err
	}
	defer f.Close()

	return withApp(func(a *app) error {
		if !assumeYes && !ui.ConfirmDestructive(os.Stdin, cmd.OutOrStdout(), "RESTORE",
			[]string{"Profiles and options in the backup replace the current ones"}) {
			return nil
		}

		var state bytes.Buffer
		res, err := a.agent.Restore(f, &state)
		if err != nil {
			return err
		}
		if backupState != "" {
			if err := writeFileAtomic(backupState, state.Bytes()); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		table := ui.NewTable("BLOCK", "STORE", "ENTRIES", "")
		for _, b := range res.Blocks {
			status := ui.SuccessMarker
			if b.Err != nil {
				status = ui.FailureMarker + " " + b.Err.Error()
			}
			table.AddRow(b.Name, b.Store, strconv.Itoa(b.Entries), status)
		}
		for _, name := range res.Skipped {
			table.AddRow(name, "", "", ui.SkippedMarker+" unknown block")
		}
		fmt.Fprintln(out, table.Render())

		if failed := res.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d blocks restored partially", len(failed), len(res.Blocks))
		}
		return nil
	})
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
