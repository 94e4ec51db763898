// Command ragpipe wires the indexing and query pipelines into a pair of
// CLI subcommands, following the cobra root-command-plus-subcommands shape
// and viper-backed configuration the domain-stack dependency table calls
// for the outer surface of this repo.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ragpipe",
		Short: "Index documents and answer questions over them",
	}

	var verbose bool
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	root.AddCommand(newIndexCmd())
	root.AddCommand(newQueryCmd())
	return root
}
