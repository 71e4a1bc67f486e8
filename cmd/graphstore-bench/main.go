// Command graphstore-bench opens a record store and drives it through
// the write-transaction core: running a scripted sequence of mutations
// through prepare/commit, or replaying a previously logged command
// stream through recovery.
package main

import (
	"fmt"
	"os"

	"github.com/cuemby/graphstore/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var jsonLogs bool
	var logLevel string

	root := &cobra.Command{
		Use:   "graphstore-bench",
		Short: "Exercise the graphstore write-transaction core directly",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: jsonLogs})
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit structured JSON logs instead of console format")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd())
	root.AddCommand(replayCmd())
	return root
}
