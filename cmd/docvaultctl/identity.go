package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// identityCmd represents the identity command
var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage signing identities",
	Long:  `Manage the ed25519 signing keys that back docvault identities.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'identity' requires a subcommand generate")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(identityCmd)
}
