package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/dateparse"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/metering"
)

// UsageSummaryInput is the input for the get_usage_summary tool
type UsageSummaryInput struct {
	StartMonth string `json:"start_month" jsonschema_description:"Start month in YYYY-MM format (required)"`
	EndMonth   string `json:"end_month,omitempty" jsonschema_description:"End month in YYYY-MM format (optional)"`
}

// UsageMetrics maps metric names to values, in a fixed order.
type UsageMetrics = orderedmap.OrderedMap[string, int64]

// MonthlyUsage is the usage of one month
type MonthlyUsage struct {
	Month   *string       `json:"month"`
	OrgName *string       `json:"org_name"`
	Metrics *UsageMetrics `json:"metrics"`
}

// UsageSummaryOutput is the output of the get_usage_summary tool
type UsageSummaryOutput struct {
	UsageSummary []MonthlyUsage `json:"usage_summary"`
}

type usageField func(*metering.UsageSummaryDate) *int64

// usageMetric names an output metric and the upstream fields it is read from,
// in order of preference.
type usageMetric struct {
	key    string
	fields []usageField
}

func metric(key string, fields ...usageField) usageMetric {
	return usageMetric{key: key, fields: fields}
}

// usageMetrics is the output order of the metrics map.
var usageMetrics = []usageMetric{
	// Logs
	metric("logs_indexed_30day_events",
		func(u *metering.UsageSummaryDate) *int64 { return u.LogsIndexedLogsUsageSum },
		func(u *metering.UsageSummaryDate) *int64 { return u.IndexedEventsCountSum },
	),
	metric("logs_ingested_bytes",
		func(u *metering.UsageSummaryDate) *int64 { return u.IngestedEventsBytesSum }),

	// Infrastructure
	metric("infra_hosts_p99",
		func(u *metering.UsageSummaryDate) *int64 { return u.InfraHostTop99p }),
	metric("containers_avg",
		func(u *metering.UsageSummaryDate) *int64 { return u.ContainerAvg }),
	metric("containers_excl_agent_avg",
		func(u *metering.UsageSummaryDate) *int64 { return u.ContainerExclAgentAvg }),

	// APM
	metric("apm_hosts_p99",
		func(u *metering.UsageSummaryDate) *int64 { return u.ApmHostTop99p }),
	metric("apm_indexed_spans",
		func(u *metering.UsageSummaryDate) *int64 { return u.TraceSearchIndexedEventsCountSum }),

	// RUM
	metric("rum_sessions",
		func(u *metering.UsageSummaryDate) *int64 { return u.RumTotalSessionCountSum }),

	// Synthetics
	metric("synthetics_api_calls",
		func(u *metering.UsageSummaryDate) *int64 { return u.SyntheticsCheckCallsCountSum }),
	metric("synthetics_browser_calls",
		func(u *metering.UsageSummaryDate) *int64 { return u.SyntheticsBrowserCheckCallsCountSum }),

	// Custom metrics
	metric("custom_metrics_avg",
		func(u *metering.UsageSummaryDate) *int64 { return u.CustomTsAvg }),
}

// UsageSummary returns usage metrics (logs, hosts, containers, APM, RUM,
// synthetics, custom metrics) per month.
func (s *Service) UsageSummary(ctx context.Context, input UsageSummaryInput) (*UsageSummaryOutput, error) {
	zerolog.Ctx(ctx).Info().
		Str("start_month", input.StartMonth).
		Str("end_month", input.EndMonth).
		Msg("Tool 'get_usage_summary' called")

	if err := requireArg("start_month", input.StartMonth); err != nil {
		return nil, err
	}

	startMonth, err := dateparse.ParseMonth(input.StartMonth)
	if err != nil {
		return nil, err
	}
	var endMonth *time.Time
	if input.EndMonth != "" {
		t, err := dateparse.ParseMonth(input.EndMonth)
		if err != nil {
			return nil, err
		}
		endMonth = &t
	}

	output := &UsageSummaryOutput{UsageSummary: []MonthlyUsage{}}
	err = s.withClient(ctx, func(client UsageClient) error {
		resp, err := client.GetUsageSummary(ctx, startMonth, endMonth)
		if err != nil {
			return fmt.Errorf("failed to get usage summary: %w", err)
		}

		for i := range resp.Usage {
			usage := &resp.Usage[i]
			output.UsageSummary = append(output.UsageSummary, MonthlyUsage{
				Month:   truncate(usage.Date, monthKeyLen),
				OrgName: usage.OrgName,
				Metrics: sparseMetrics(usage),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// sparseMetrics collects the metrics that have a non-zero value.
func sparseMetrics(usage *metering.UsageSummaryDate) *UsageMetrics {
	metrics := orderedmap.New[string, int64]()
	for _, m := range usageMetrics {
		for _, field := range m.fields {
			if v := field(usage); v != nil && *v != 0 {
				metrics.Set(m.key, *v)
				break
			}
		}
	}
	return metrics
}
