package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"whiteboard/internal/discovery"

	"github.com/spf13/cobra"
)

func newDiscoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "discover",
		Short:         "List whiteboard servers advertised on the local network",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          discover,
	}
	cmd.Flags().Duration("timeout", 3*time.Second, "How long to listen for answers")
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
	return cmd
}

func discover(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	jsonMode, _ := cmd.Flags().GetBool("json")

	boards, err := discovery.Browse(timeout)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonMode {
		type entry struct {
			Instance string `json:"instance"`
			Addr     string `json:"addr"`
			URL      string `json:"url"`
		}
		entries := make([]entry, 0, len(boards))
		for _, b := range boards {
			entries = append(entries, entry{Instance: b.Instance, Addr: b.Addr, URL: b.URL()})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(boards) == 0 {
		fmt.Fprintln(out, "No boards found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INSTANCE\tADDRESS\tURL")
	for _, b := range boards {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Instance, b.Addr, b.URL())
	}
	return w.Flush()
}
