package tools

import (
	"context"
	"time"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/metering"
)

// fakeClient is an in-memory UsageClient recording the arguments it receives.
type fakeClient struct {
	estimated  *metering.CostByOrgResponse
	historical *metering.CostByOrgResponse
	projected  *metering.ProjectedCostResponse
	usage      *metering.UsageSummaryResponse
	logs       *metering.UsageLogsByIndexResponse
	err        error
	panicValue any

	calls      int
	closed     int
	view       string
	startMonth *time.Time
	endMonth   *time.Time
	startHr    time.Time
	endHr      time.Time
}

func (f *fakeClient) begin() error {
	f.calls++
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	return f.err
}

func (f *fakeClient) GetEstimatedCostByOrg(_ context.Context, view string, startMonth *time.Time) (*metering.CostByOrgResponse, error) {
	f.view, f.startMonth = view, startMonth
	if err := f.begin(); err != nil {
		return nil, err
	}
	return orEmpty(f.estimated), nil
}

func (f *fakeClient) GetHistoricalCostByOrg(_ context.Context, view string, startMonth time.Time, endMonth *time.Time) (*metering.CostByOrgResponse, error) {
	f.view, f.startMonth, f.endMonth = view, &startMonth, endMonth
	if err := f.begin(); err != nil {
		return nil, err
	}
	return orEmpty(f.historical), nil
}

func (f *fakeClient) GetProjectedCost(_ context.Context, view string) (*metering.ProjectedCostResponse, error) {
	f.view = view
	if err := f.begin(); err != nil {
		return nil, err
	}
	if f.projected == nil {
		return &metering.ProjectedCostResponse{}, nil
	}
	return f.projected, nil
}

func (f *fakeClient) GetUsageSummary(_ context.Context, startMonth time.Time, endMonth *time.Time) (*metering.UsageSummaryResponse, error) {
	f.startMonth, f.endMonth = &startMonth, endMonth
	if err := f.begin(); err != nil {
		return nil, err
	}
	if f.usage == nil {
		return &metering.UsageSummaryResponse{}, nil
	}
	return f.usage, nil
}

func (f *fakeClient) GetUsageLogsByIndex(_ context.Context, startHr, endHr time.Time) (*metering.UsageLogsByIndexResponse, error) {
	f.startHr, f.endHr = startHr, endHr
	if err := f.begin(); err != nil {
		return nil, err
	}
	if f.logs == nil {
		return &metering.UsageLogsByIndexResponse{}, nil
	}
	return f.logs, nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func orEmpty(resp *metering.CostByOrgResponse) *metering.CostByOrgResponse {
	if resp == nil {
		return &metering.CostByOrgResponse{}
	}
	return resp
}

// newFakeService returns a Service whose every call opens client.
func newFakeService(client *fakeClient) *Service {
	return NewService(func(context.Context) (UsageClient, error) {
		return client, nil
	})
}

func ptr[T any](v T) *T {
	return &v
}

func charge(chargeType, product string, cost *float64) metering.Charge {
	return metering.Charge{ChargeType: ptr(chargeType), ProductName: ptr(product), Cost: cost}
}

func products(charges []ChargeInfo) []string {
	out := make([]string, 0, len(charges))
	for _, c := range charges {
		out = append(out, *c.Product)
	}
	return out
}
