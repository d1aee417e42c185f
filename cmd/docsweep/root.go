// Package main provides the entry point for the docsweep CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for docsweep.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docsweep",
		Short: "Find duplicated sections across documentation trees",
		Long: `Docsweep scans documentation trees for duplicated heading-delimited
sections. Sections are compared after normalization, so copies that differ
only in case, whitespace, or punctuation are still grouped together.

Each scan is saved locally so results can be compared across runs.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
