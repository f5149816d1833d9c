// Command tokenloom is a thin CLI demonstration of the tokenloom streaming
// parser: feed it a file or stdin, watch a growing file, or list the
// configured tag set. It is not part of the library's core scope (spec.md
// §1) — everything here just exercises the library and the bus/addon
// surface the way glow's cmd/gold once exercised the flow package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by the build (ldflags -X), matching glow's own versioning
// convention; it stays "dev" for local builds.
var version = "dev"

func main() {
	if closeLog, err := setupLog(); err == nil {
		defer closeLog() //nolint:errcheck
	}

	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "tokenloom",
		Short: "Stream chunked text through the tokenloom parser",
		Long: "tokenloom feeds chunked input through an incremental, fragmentation-tolerant\n" +
			"parser that recognizes custom tags, fenced code blocks, and segmented plain\n" +
			"text, printing the resulting event stream.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (yaml/json/toml)")

	root.AddCommand(
		newFeedCommand(&cfgFile),
		newWatchCommand(&cfgFile),
		newTagsCommand(&cfgFile),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tokenloom version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
