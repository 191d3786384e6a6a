package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools with their input schemas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeTools(cmd.OutOrStdout(), tools.Definitions())
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func writeTools(w io.Writer, defs []tools.Definition) error {
	for _, def := range defs {
		schema, err := json.MarshalIndent(def.Schema(), "  ", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema of %s: %w", def.Name, err)
		}
		fmt.Fprintf(w, "%s\n  %s\n  %s\n\n", def.Name, def.Description, schema)
	}
	return nil
}
