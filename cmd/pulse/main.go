package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "pulse",
		Short: "Pulse - single-file UI components, compiled to JavaScript",
		Long: `Pulse compiles .pulse component files into JavaScript ES modules built
on fine-grained reactive primitives. One file holds a component's state,
view, actions and styles; the compiler turns it into plain JS that any
bundler can consume.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newDevCommand())
	rootCmd.AddCommand(newNewCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
