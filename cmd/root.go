// Package cmd provides the command-line interface for the AXI pipeline
// simulator.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "axipipe",
	Short: "axipipe simulates an AXI bus retimer built from elastic " +
		"pipelines.",
	Long: `axipipe simulates an AXI bus retimer built from elastic ` +
		`pipelines. It drives randomized write and read traffic through ` +
		`the retimer, checks the handshake protocol on every channel, and ` +
		`verifies data integrity end to end.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// Environment defaults may come from a .env file; a missing file is
	// fine.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
