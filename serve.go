package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/firebase/genkit/go/genkit"
	"github.com/spf13/cobra"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/mcp"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/telemetry"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the billing tools over MCP stdio",
	RunE:  runServe,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().String("metrics-addr", "", "address for the /metrics and /healthz HTTP server (disabled when empty)")
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := v.BindPFlag("metrics_addr", cmd.Flags().Lookup("metrics-addr")); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = a.logger.WithContext(ctx)

	g := genkit.Init(ctx)
	toolList := tools.Register(g, a.dispatcher)

	if a.cfg.MetricsAddr != "" {
		go func() {
			if err := telemetry.Serve(ctx, a.cfg.MetricsAddr, a.metrics); err != nil {
				a.logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	server := mcp.NewServer(g, serverName, version, toolList)
	return server.ServeStdio(ctx)
}
