// Package tools provides MCP tools for Datadog billing and usage queries.
package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/metering"
)

// Cost attribution views.
const (
	ViewSummary = "summary"
	ViewSubOrg  = "sub-org"

	DefaultView = ViewSubOrg
)

// UsageClient is the subset of the Datadog Usage Metering API the tools call.
type UsageClient interface {
	GetEstimatedCostByOrg(ctx context.Context, view string, startMonth *time.Time) (*metering.CostByOrgResponse, error)
	GetHistoricalCostByOrg(ctx context.Context, view string, startMonth time.Time, endMonth *time.Time) (*metering.CostByOrgResponse, error)
	GetProjectedCost(ctx context.Context, view string) (*metering.ProjectedCostResponse, error)
	GetUsageSummary(ctx context.Context, startMonth time.Time, endMonth *time.Time) (*metering.UsageSummaryResponse, error)
	GetUsageLogsByIndex(ctx context.Context, startHr, endHr time.Time) (*metering.UsageLogsByIndexResponse, error)
	Close() error
}

// OpenFunc opens a client scoped to a single tool call.
type OpenFunc func(ctx context.Context) (UsageClient, error)

// FactoryOpener adapts a metering.Factory to an OpenFunc.
func FactoryOpener(f *metering.Factory) OpenFunc {
	return func(ctx context.Context) (UsageClient, error) {
		client, err := f.Open(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Service runs the billing tools against clients obtained from open.
type Service struct {
	open OpenFunc
}

// NewService creates a Service.
func NewService(open OpenFunc) *Service {
	return &Service{open: open}
}

// withClient opens a client, runs fn and closes the client on every path.
func (s *Service) withClient(ctx context.Context, fn func(UsageClient) error) error {
	client, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to create Datadog client: %w", err)
	}
	defer client.Close()

	return fn(client)
}

// ArgumentError reports a missing or invalid tool argument.
type ArgumentError struct {
	Field   string
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Kind reports the error classification used by the dispatcher.
func (e *ArgumentError) Kind() string {
	return "InvalidArgument"
}

func requireArg(field, value string) error {
	if value == "" {
		return &ArgumentError{Field: field, Message: "is required"}
	}
	return nil
}

func resolveView(view string) (string, error) {
	switch view {
	case "":
		return DefaultView, nil
	case ViewSummary, ViewSubOrg:
		return view, nil
	default:
		return "", &ArgumentError{
			Field:   "view",
			Message: fmt.Sprintf("must be one of %q or %q, got %q", ViewSummary, ViewSubOrg, view),
		}
	}
}
