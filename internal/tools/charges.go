package tools

import (
	"cmp"
	"slices"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/metering"
)

// Charge types returned by the cost endpoints.
const (
	ChargeTypeTotal              = "total"
	ChargeTypeProjectedCommitted = "projected_committed"
	ChargeTypeProjectedOnDemand  = "projected_on_demand"
)

// Truncation lengths of upstream timestamps.
const (
	dayKeyLen   = len("2006-01-02")
	monthKeyLen = len("2006-01")
	hourKeyLen  = len("2006-01-02T15")
)

// ChargeInfo is a product cost line.
type ChargeInfo struct {
	Product *string  `json:"product"`
	Cost    *float64 `json:"cost"`
}

// OrgCost is the cost of one organization for one period.
type OrgCost struct {
	OrgName   *string      `json:"org_name"`
	Date      *string      `json:"date"`
	TotalCost *float64     `json:"total_cost"`
	Charges   []ChargeInfo `json:"charges"`
}

func toChargeInfo(c metering.Charge) ChargeInfo {
	return ChargeInfo{Product: c.ProductName, Cost: c.Cost}
}

// totalCharges keeps the charges of type total, most expensive first.
func totalCharges(charges []metering.Charge) []ChargeInfo {
	out := make([]ChargeInfo, 0, len(charges))
	for _, c := range charges {
		if chargeType(c) == ChargeTypeTotal {
			out = append(out, toChargeInfo(c))
		}
	}
	sortByCostDesc(out)
	return out
}

// orgCost reshapes a cost record, truncating its date to keyLen characters.
func orgCost(attrs *metering.CostByOrgAttributes, keyLen int) OrgCost {
	if attrs == nil {
		return OrgCost{Charges: []ChargeInfo{}}
	}
	return OrgCost{
		OrgName:   attrs.OrgName,
		Date:      truncate(attrs.Date, keyLen),
		TotalCost: attrs.TotalCost,
		Charges:   totalCharges(attrs.Charges),
	}
}

// sortByCostDesc sorts in place by descending cost; a null cost counts as 0.
// Equal costs keep their upstream order.
func sortByCostDesc(charges []ChargeInfo) {
	slices.SortStableFunc(charges, func(a, b ChargeInfo) int {
		return cmp.Compare(costOf(b.Cost), costOf(a.Cost))
	})
}

func costOf(cost *float64) float64 {
	if cost == nil {
		return 0
	}
	return *cost
}

func chargeType(c metering.Charge) string {
	if c.ChargeType == nil {
		return ""
	}
	return *c.ChargeType
}

// truncate returns the first n bytes of s. Null and empty values stay null.
func truncate(s *string, n int) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	if len(v) > n {
		v = v[:n]
	}
	return &v
}
