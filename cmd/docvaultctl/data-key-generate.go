package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docvault/docvault/pkg/envelope"
)

// dataKeyGenerateCmd represents the data-key > generate command
var dataKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a vault sealing key",
	Long: `
Generate a vault sealing key

Use this command to generate a new Base64-encoded 256 bit sealing key. Once generated, this key should be placed into the environment of
the docvault server. It will be used to seal every access key held by the vault.

Example:

$ export DOCVAULT_DATA_KEY="$(docvaultctl data-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		bytes, _ := envelope.RandomBytes(32)
		fmt.Printf("%s", base64.StdEncoding.Strict().EncodeToString(bytes))
	},
}

func init() {
	dataKeyCmd.AddCommand(dataKeyGenerateCmd)
}
