package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultBoardURL = "ws://localhost:3001/ws"

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "boardctl",
		Short:         "Find, export and script whiteboard servers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newDiscoverCommand(),
		newRenderCommand(),
		newMCPCommand(),
	)
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
