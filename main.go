// Datadog Billing MCP Server
//
// A Model Context Protocol (MCP) server that exposes Datadog cost and usage
// data using the Datadog Usage Metering API.
//
// Features:
//   - Estimated cost of the current billing period by product
//   - Historical monthly cost over a range of months
//   - Projected end-of-month cost with committed and on-demand breakdowns
//   - Usage summary (logs, hosts, containers, APM, RUM, synthetics, custom metrics)
//   - Indexed log volume by index, per day or per hour
//
// Authentication:
//
//	Set DD_API_KEY and DD_APP_KEY (and DD_SITE outside US1), either in the
//	environment or in a .env file.
//
// Usage:
//
//	go run . serve
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/config"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/logging"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/metering"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/telemetry"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/tools"
)

const serverName = "datadog-billing-mcp-server"

var (
	envFile string
	v       = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:           "datadog-billing-mcp",
	Short:         "MCP server for Datadog billing and usage",
	Long:          "datadog-billing-mcp exposes Datadog estimated, historical and projected costs, usage summaries and indexed log volume as Model Context Protocol tools.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default: .env if present)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn or error")
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the components shared by the commands.
type app struct {
	cfg        config.Config
	logger     zerolog.Logger
	metrics    *telemetry.Metrics
	dispatcher *tools.Dispatcher
}

// newApp loads the configuration and wires the tool dispatcher.
// Logs go to stderr since stdout carries the MCP transport and command output.
func newApp() (*app, error) {
	cfg, err := config.Load(v, envFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.New()
	factory := metering.NewFactory(cfg,
		metering.WithMetrics(metrics),
		metering.WithHTTPTimeout(cfg.HTTPTimeout),
	)
	service := tools.NewService(tools.FactoryOpener(factory))

	return &app{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		dispatcher: tools.NewDispatcher(service, metrics),
	}, nil
}
