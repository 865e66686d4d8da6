package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/nfcprofile/internal/discovery"
	"github.com/muurk/nfcprofile/internal/server"
	"github.com/muurk/nfcprofile/internal/ui"
	"github.com/muurk/nfcprofile/internal/urls"
)

var (
	scanTimeout int
	daemonURL   string
	daemonName  string
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(writeTagCmd)

	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")

	writeTagCmd.Flags().StringVar(&daemonURL, "daemon", "", "Daemon base URL (skips discovery), e.g. http://pi.local:8765")
	writeTagCmd.Flags().StringVar(&daemonName, "instance", "", "mDNS instance to use when several daemons run")
	writeTagCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Discovery timeout in seconds")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find nfcprofiled daemons on the network",
	Long: `Browse mDNS for nfcprofiled daemons and list them with the URL tag
bridges connect to.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		scanner := discovery.NewScanner()
		scanner.Timeout = time.Duration(scanTimeout) * time.Second
		var daemons []*discovery.Daemon
		err := ui.Wait(cmd.Context(), out, "Scanning for daemons", scanner.Timeout, func(ctx context.Context) error {
			var err error
			daemons, err = scanner.ScanForDaemons(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		fmt.Fprintln(out)
		if len(daemons) == 0 {
			fmt.Fprintln(out, "No daemons found.")
			fmt.Fprintln(out, "\nTroubleshooting:")
			fmt.Fprintln(out, "  - Check that nfcprofiled runs with bridge.advertise enabled")
			fmt.Fprintln(out, "  - Multicast (UDP 5353) must be allowed between the hosts")
			fmt.Fprintln(out, "  - Try a longer --timeout")
			return nil
		}

		table := ui.NewTable("INSTANCE", "ADDRESS", "VERSION", "TAG URL")
		for _, d := range daemons {
			table.AddRow(d.Instance, d.BaseURL(), d.Version, d.TagURL())
		}
		fmt.Fprintln(out, table.Render())
		return nil
	},
}

var writeTagCmd = &cobra.Command{
	Use:   "write-tag <key>",
	Short: "Write a profile URI to the next tag held to the bridge",
	Long: `Ask a running nfcprofiled to write the profile's URI to a tag. The
daemon forwards the request to its tag bridge and waits until the tag is
written or the write times out.`,
	Example: `  nfcprofile write-tag 3f2a9c...
  nfcprofile write-tag 3f2a9c... --daemon http://192.168.1.20:8765`,
	Args: cobra.ExactArgs(1),
	RunE: runWriteTag,
}

func runWriteTag(cmd *cobra.Command, args []string) error {
	key, err := urls.KeyFromURI(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	base := daemonURL
	if base == "" {
		scanner := discovery.NewScanner()
		scanner.Timeout = time.Duration(scanTimeout) * time.Second
		err := ui.Wait(cmd.Context(), out, "Looking for a daemon", scanner.Timeout, func(ctx context.Context) error {
			d, err := scanner.WaitForDaemon(ctx, daemonName)
			if err != nil {
				return err
			}
			base = d.BaseURL()
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w (use --daemon to skip discovery)", err)
		}
	}

	timeout := 30 * time.Second
	if cfg.Bridge != nil && cfg.Bridge.WriteTimeout > 0 {
		timeout = cfg.Bridge.WriteTimeout
	}

	var res *server.WriteResponse
	err = ui.Wait(cmd.Context(), out, "Hold a tag to the reader", timeout, func(ctx context.Context) error {
		var err error
		res, err = requestWrite(ctx, base, key, timeout+5*time.Second)
		return err
	})
	if err != nil {
		return err
	}
	if !res.OK {
		fmt.Fprintln(out, ui.NewFailureResult("Tag not written", errors.New(res.Error)).Render())
		return fmt.Errorf("write failed")
	}
	fmt.Fprintln(out, ui.NewSuccessResult("Tag written",
		ui.Param{Key: "Key", Value: key},
		ui.Param{Key: "URI", Value: urls.TagURI(key)},
	).Render())
	return nil
}

func requestWrite(ctx context.Context, base, key string, timeout time.Duration) (*server.WriteResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := base + "/write?key=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	var body server.WriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("daemon returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK && body.Error == "" {
		body.Error = resp.Status
	}
	return &body, nil
}
