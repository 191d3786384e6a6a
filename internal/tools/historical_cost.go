package tools

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/dateparse"
)

// HistoricalCostInput is the input for the get_historical_cost tool
type HistoricalCostInput struct {
	StartMonth string `json:"start_month" jsonschema_description:"Start month in YYYY-MM format (required)"`
	EndMonth   string `json:"end_month,omitempty" jsonschema_description:"End month in YYYY-MM format (optional, defaults to start_month)"`
	View       string `json:"view,omitempty" jsonschema:"enum=summary,enum=sub-org,default=sub-org" jsonschema_description:"Cost attribution view: 'summary' or 'sub-org'"`
}

// HistoricalCostSummary totals the returned months
type HistoricalCostSummary struct {
	Total  float64 `json:"total"`
	Months int     `json:"months"`
}

// HistoricalCostOutput is the output of the get_historical_cost tool
type HistoricalCostOutput struct {
	HistoricalCosts []OrgCost             `json:"historical_costs"`
	Summary         HistoricalCostSummary `json:"summary"`
}

// HistoricalCost returns monthly costs by product over a range of months.
func (s *Service) HistoricalCost(ctx context.Context, input HistoricalCostInput) (*HistoricalCostOutput, error) {
	zerolog.Ctx(ctx).Info().
		Str("start_month", input.StartMonth).
		Str("end_month", input.EndMonth).
		Str("view", input.View).
		Msg("Tool 'get_historical_cost' called")

	if err := requireArg("start_month", input.StartMonth); err != nil {
		return nil, err
	}
	view, err := resolveView(input.View)
	if err != nil {
		return nil, err
	}

	startMonth, err := dateparse.ParseMonth(input.StartMonth)
	if err != nil {
		return nil, err
	}
	endMonth := startMonth
	if input.EndMonth != "" {
		if endMonth, err = dateparse.ParseMonth(input.EndMonth); err != nil {
			return nil, err
		}
	}

	costs := []OrgCost{}
	err = s.withClient(ctx, func(client UsageClient) error {
		resp, err := client.GetHistoricalCostByOrg(ctx, view, startMonth, &endMonth)
		if err != nil {
			return fmt.Errorf("failed to get historical cost: %w", err)
		}

		for _, item := range resp.Data {
			costs = append(costs, orgCost(item.Attributes, monthKeyLen))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(costs, func(a, b OrgCost) int {
		return cmp.Compare(stringOf(a.Date), stringOf(b.Date))
	})

	var total float64
	for _, c := range costs {
		total += costOf(c.TotalCost)
	}

	return &HistoricalCostOutput{
		HistoricalCosts: costs,
		Summary: HistoricalCostSummary{
			Total:  total,
			Months: len(costs),
		},
	}, nil
}

func stringOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
