package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docvault/docvault/pkg/identity"
)

// identityGenerateCmd represents the identity > generate command
var identityGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a signing key and print its address",
	Long: `
Generate a new ed25519 signing key.

The private key is written PEM-encoded to the --out file (or stdout) and
the derived account address is printed to stderr.

Example:

$ docvaultctl identity generate --out alice.pem
`,
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := cmd.Flags().GetString("out")

		key, err := identity.GenerateKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to generate key:", err)
			os.Exit(1)
		}

		pemBytes, err := key.PrivatePEM()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to encode key:", err)
			os.Exit(1)
		}

		if out == "" {
			fmt.Print(string(pemBytes))
		} else {
			if err := os.WriteFile(out, pemBytes, 0o600); err != nil {
				fmt.Fprintln(os.Stderr, "Failed to write key:", err)
				os.Exit(1)
			}
		}

		fmt.Fprintln(os.Stderr, "Address:", key.Address())
	},
}

func init() {
	identityCmd.AddCommand(identityGenerateCmd)
	identityGenerateCmd.Flags().StringP("out", "o", "", "file to write the private key to (default: stdout)")
}
