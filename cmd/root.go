// Package cmd implements the assistant CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "CloudWalk merchant assistant",
	Long: `A conversational assistant for CloudWalk merchants.

It answers questions about InfinitePay, JIM and Stratus in English and
Brazilian Portuguese, grounded on a vector knowledge base.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
