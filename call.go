package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Run one tool and print its result",
	Example: `  datadog-billing-mcp call get_projected_cost
  datadog-billing-mcp call get_historical_cost '{"start_month":"2024-01","end_month":"2024-03"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	var toolArgs json.RawMessage
	if len(args) == 2 {
		toolArgs = json.RawMessage(args[1])
		if !json.Valid(toolArgs) {
			return fmt.Errorf("arguments are not valid JSON: %s", args[1])
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx := a.logger.WithContext(cmd.Context())
	res := a.dispatcher.Call(ctx, args[0], toolArgs)
	fmt.Fprintln(cmd.OutOrStdout(), res.Text())

	if !res.OK() {
		return fmt.Errorf("tool %s failed", args[0])
	}
	return nil
}
