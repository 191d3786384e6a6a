package tools

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/metering"
)

// ProjectedCostInput is the input for the get_projected_cost tool
type ProjectedCostInput struct {
	View string `json:"view,omitempty" jsonschema:"enum=summary,enum=sub-org,default=sub-org" jsonschema_description:"Cost attribution view: 'summary' or 'sub-org'"`
}

// ProjectedOrgCost is the projected end-of-month cost of one organization
type ProjectedOrgCost struct {
	OrgName            *string      `json:"org_name"`
	Date               *string      `json:"date"`
	ProjectedTotalCost *float64     `json:"projected_total_cost"`
	Breakdown          []ChargeInfo `json:"breakdown"`
	Committed          []ChargeInfo `json:"committed"`
	OnDemand           []ChargeInfo `json:"on_demand"`
}

// ProjectedCostOutput is the output of the get_projected_cost tool
type ProjectedCostOutput struct {
	ProjectedCosts []ProjectedOrgCost `json:"projected_costs"`
}

// ProjectedCost returns the projected cost of the current billing period with
// committed and on-demand breakdowns.
func (s *Service) ProjectedCost(ctx context.Context, input ProjectedCostInput) (*ProjectedCostOutput, error) {
	zerolog.Ctx(ctx).Info().Str("view", input.View).Msg("Tool 'get_projected_cost' called")

	view, err := resolveView(input.View)
	if err != nil {
		return nil, err
	}

	output := &ProjectedCostOutput{ProjectedCosts: []ProjectedOrgCost{}}
	err = s.withClient(ctx, func(client UsageClient) error {
		resp, err := client.GetProjectedCost(ctx, view)
		if err != nil {
			return fmt.Errorf("failed to get projected cost: %w", err)
		}

		for _, item := range resp.Data {
			output.ProjectedCosts = append(output.ProjectedCosts, projectedOrgCost(item.Attributes))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func projectedOrgCost(attrs *metering.ProjectedCostAttributes) ProjectedOrgCost {
	out := ProjectedOrgCost{
		Breakdown: []ChargeInfo{},
		Committed: []ChargeInfo{},
		OnDemand:  []ChargeInfo{},
	}
	if attrs == nil {
		return out
	}

	out.OrgName = attrs.OrgName
	out.Date = truncate(attrs.Date, dayKeyLen)
	out.ProjectedTotalCost = attrs.ProjectedTotalCost

	for _, c := range attrs.Charges {
		switch chargeType(c) {
		case ChargeTypeTotal:
			out.Breakdown = append(out.Breakdown, toChargeInfo(c))
		case ChargeTypeProjectedCommitted:
			out.Committed = append(out.Committed, toChargeInfo(c))
		case ChargeTypeProjectedOnDemand:
			// On-demand lines without spend are noise.
			if costOf(c.Cost) != 0 {
				out.OnDemand = append(out.OnDemand, toChargeInfo(c))
			}
		}
	}

	sortByCostDesc(out.Breakdown)
	sortByCostDesc(out.Committed)
	sortByCostDesc(out.OnDemand)
	return out
}
