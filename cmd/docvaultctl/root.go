package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docvaultctl",
	Short: "Encrypted document vault server and tooling",
	Long: `docvaultctl runs the docvault server and provides supporting tooling:
key generation, identity management and database migrations.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
