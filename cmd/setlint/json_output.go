package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON renders v as indented JSON on the command's stdout so --json
// output from every subcommand looks the same.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
