package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/dateparse"
)

// EstimatedCostInput is the input for the get_estimated_cost tool
type EstimatedCostInput struct {
	View       string `json:"view,omitempty" jsonschema:"enum=summary,enum=sub-org,default=sub-org" jsonschema_description:"Cost attribution view: 'summary' or 'sub-org'"`
	StartMonth string `json:"start_month,omitempty" jsonschema_description:"Start month in YYYY-MM format (optional, defaults to current month)"`
}

// EstimatedCostOutput is the output of the get_estimated_cost tool
type EstimatedCostOutput struct {
	EstimatedCosts []OrgCost `json:"estimated_costs"`
}

// EstimatedCost returns the estimated cost of the current billing period by product.
func (s *Service) EstimatedCost(ctx context.Context, input EstimatedCostInput) (*EstimatedCostOutput, error) {
	zerolog.Ctx(ctx).Info().
		Str("view", input.View).
		Str("start_month", input.StartMonth).
		Msg("Tool 'get_estimated_cost' called")

	view, err := resolveView(input.View)
	if err != nil {
		return nil, err
	}

	var startMonth *time.Time
	if input.StartMonth != "" {
		t, err := dateparse.ParseMonth(input.StartMonth)
		if err != nil {
			return nil, err
		}
		startMonth = &t
	}

	output := &EstimatedCostOutput{EstimatedCosts: []OrgCost{}}
	err = s.withClient(ctx, func(client UsageClient) error {
		resp, err := client.GetEstimatedCostByOrg(ctx, view, startMonth)
		if err != nil {
			return fmt.Errorf("failed to get estimated cost: %w", err)
		}

		for _, item := range resp.Data {
			output.EstimatedCosts = append(output.EstimatedCosts, orgCost(item.Attributes, dayKeyLen))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}
