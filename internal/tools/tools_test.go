package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/dateparse"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/metering"
)

func costRecord(org, date string, total *float64, charges ...metering.Charge) metering.CostByOrg {
	return metering.CostByOrg{
		Type: "cost_by_org",
		Attributes: &metering.CostByOrgAttributes{
			OrgName:   ptr(org),
			Date:      ptr(date),
			TotalCost: total,
			Charges:   charges,
		},
	}
}

func TestEstimatedCost(t *testing.T) {
	client := &fakeClient{
		estimated: &metering.CostByOrgResponse{Data: []metering.CostByOrg{
			costRecord("acme", "2024-03-15T00:00:00Z", ptr(17.0),
				charge("total", "A", ptr(5.0)),
				charge("total", "B", nil),
				charge("committed", "X", ptr(100.0)),
				charge("total", "C", ptr(12.0)),
			),
		}},
	}

	out, err := newFakeService(client).EstimatedCost(context.Background(), EstimatedCostInput{})
	require.NoError(t, err)
	require.Len(t, out.EstimatedCosts, 1)

	got := out.EstimatedCosts[0]
	assert.Equal(t, "acme", *got.OrgName)
	assert.Equal(t, "2024-03-15", *got.Date)
	assert.Equal(t, 17.0, *got.TotalCost)
	assert.Equal(t, []string{"C", "A", "B"}, products(got.Charges))

	assert.Equal(t, ViewSubOrg, client.view)
	assert.Nil(t, client.startMonth)
	assert.Equal(t, 1, client.closed)
}

func TestEstimatedCost_StartMonth(t *testing.T) {
	client := &fakeClient{}

	out, err := newFakeService(client).EstimatedCost(context.Background(), EstimatedCostInput{
		View:       ViewSummary,
		StartMonth: "2024-03",
	})
	require.NoError(t, err)
	assert.NotNil(t, out.EstimatedCosts)
	assert.Empty(t, out.EstimatedCosts)

	assert.Equal(t, ViewSummary, client.view)
	require.NotNil(t, client.startMonth)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *client.startMonth)
}

func TestHistoricalCost(t *testing.T) {
	client := &fakeClient{
		historical: &metering.CostByOrgResponse{Data: []metering.CostByOrg{
			costRecord("acme", "2024-03-01T00:00:00Z", ptr(30.5), charge("total", "logs", ptr(30.5))),
			costRecord("acme", "2024-01-01T00:00:00Z", ptr(10.0)),
			costRecord("acme", "2024-02-01T00:00:00Z", nil),
		}},
	}

	out, err := newFakeService(client).HistoricalCost(context.Background(), HistoricalCostInput{
		StartMonth: "2024-01",
		EndMonth:   "2024-03",
	})
	require.NoError(t, err)

	dates := make([]string, 0, len(out.HistoricalCosts))
	for _, c := range out.HistoricalCosts {
		dates = append(dates, *c.Date)
	}
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, dates)
	assert.Equal(t, 40.5, out.Summary.Total)
	assert.Equal(t, 3, out.Summary.Months)

	require.NotNil(t, client.endMonth)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *client.endMonth)
}

func TestHistoricalCost_EndMonthDefaultsToStart(t *testing.T) {
	client := &fakeClient{}

	out, err := newFakeService(client).HistoricalCost(context.Background(), HistoricalCostInput{StartMonth: "2024-02-10"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Summary.Months)
	assert.Equal(t, 0.0, out.Summary.Total)

	require.NotNil(t, client.startMonth)
	require.NotNil(t, client.endMonth)
	assert.Equal(t, *client.startMonth, *client.endMonth)
}

func TestProjectedCost(t *testing.T) {
	client := &fakeClient{
		projected: &metering.ProjectedCostResponse{Data: []metering.ProjectedCost{{
			Attributes: &metering.ProjectedCostAttributes{
				OrgName:            ptr("acme"),
				Date:               ptr("2024-03-01T00:00:00Z"),
				ProjectedTotalCost: ptr(150.0),
				Charges: []metering.Charge{
					charge("total", "logs", ptr(50.0)),
					charge("total", "apm", ptr(100.0)),
					charge("projected_committed", "logs", ptr(40.0)),
					charge("projected_committed", "apm", ptr(90.0)),
					charge("projected_on_demand", "logs", ptr(10.0)),
					charge("projected_on_demand", "apm", ptr(0.0)),
					charge("projected_on_demand", "rum", nil),
					charge("projected_on_demand", "infra", ptr(20.0)),
					charge("unknown", "other", ptr(1.0)),
				},
			},
		}}},
	}

	out, err := newFakeService(client).ProjectedCost(context.Background(), ProjectedCostInput{View: ViewSummary})
	require.NoError(t, err)
	require.Len(t, out.ProjectedCosts, 1)

	got := out.ProjectedCosts[0]
	assert.Equal(t, "2024-03-01", *got.Date)
	assert.Equal(t, 150.0, *got.ProjectedTotalCost)
	assert.Equal(t, []string{"apm", "logs"}, products(got.Breakdown))
	assert.Equal(t, []string{"apm", "logs"}, products(got.Committed))
	assert.Equal(t, []string{"infra", "logs"}, products(got.OnDemand))
	assert.Equal(t, ViewSummary, client.view)
}

func TestUsageSummary(t *testing.T) {
	client := &fakeClient{
		usage: &metering.UsageSummaryResponse{Usage: []metering.UsageSummaryDate{
			{
				Date:            ptr("2024-03-01T00:00:00Z"),
				OrgName:         ptr("acme"),
				InfraHostTop99p: ptr[int64](5),
				ContainerAvg:    ptr[int64](0),
			},
			{
				Date:                    ptr("2024-04-01T00:00:00Z"),
				OrgName:                 ptr("acme"),
				LogsIndexedLogsUsageSum: ptr[int64](0),
				IndexedEventsCountSum:   ptr[int64](42),
				CustomTsAvg:             ptr[int64](7),
				RumTotalSessionCountSum: ptr[int64](3),
			},
		}},
	}

	out, err := newFakeService(client).UsageSummary(context.Background(), UsageSummaryInput{StartMonth: "2024-03"})
	require.NoError(t, err)
	require.Len(t, out.UsageSummary, 2)

	first := out.UsageSummary[0]
	assert.Equal(t, "2024-03", *first.Month)
	b, err := first.Metrics.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"infra_hosts_p99": 5}`, string(b))

	second := out.UsageSummary[1]
	keys := []string{}
	for pair := second.Metrics.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"logs_indexed_30day_events", "rum_sessions", "custom_metrics_avg"}, keys)
	v, ok := second.Metrics.Get("logs_indexed_30day_events")
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	assert.Nil(t, client.endMonth)
}

func TestUsageSummary_RequiresStartMonth(t *testing.T) {
	client := &fakeClient{}

	_, err := newFakeService(client).UsageSummary(context.Background(), UsageSummaryInput{})

	var argErr *ArgumentError
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, "start_month", argErr.Field)
	assert.Equal(t, 0, client.calls)
}

func logsHour(index, hour string, count int64) metering.LogsByIndexHour {
	return metering.LogsByIndexHour{IndexName: ptr(index), Hour: ptr(hour), EventCount: ptr(count)}
}

func TestLogsByIndex_Day(t *testing.T) {
	client := &fakeClient{
		logs: &metering.UsageLogsByIndexResponse{Usage: []metering.LogsByIndexHour{
			logsHour("main", "2024-01-01T05", 10),
			logsHour("main", "2024-01-01T09", 20),
		}},
	}

	out, err := newFakeService(client).LogsByIndex(context.Background(), LogsByIndexInput{
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-02",
		AggregateBy: AggregateByDay,
	})
	require.NoError(t, err)

	assert.Equal(t, []LogsPeriod{
		{Date: "2024-01-01", TotalEvents: 30, ByIndex: map[string]int64{"main": 30}},
	}, out.LogsByIndex)
	assert.Equal(t, LogsSummary{TotalEvents: 30, Periods: 1, AveragePerPeriod: 30, Indexes: []string{"main"}}, out.Summary)

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), client.startHr)
	assert.Equal(t, time.Date(2024, time.January, 2, 23, 0, 0, 0, time.UTC), client.endHr)
}

func TestLogsByIndex_Hour(t *testing.T) {
	client := &fakeClient{
		logs: &metering.UsageLogsByIndexResponse{Usage: []metering.LogsByIndexHour{
			logsHour("main", "2024-01-01T09:00:00+00:00", 20),
			logsHour("audit", "2024-01-01T05:00:00+00:00", 0),
			logsHour("main", "2024-01-01 05:00:00", 10),
			{Hour: ptr("2024-01-01T05"), EventCount: ptr[int64](1)},
		}},
	}

	out, err := newFakeService(client).LogsByIndex(context.Background(), LogsByIndexInput{
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-01",
		AggregateBy: AggregateByHour,
	})
	require.NoError(t, err)

	assert.Equal(t, []LogsPeriod{
		{Hour: "2024-01-01T05", TotalEvents: 11, ByIndex: map[string]int64{"main": 10, unknownIndex: 1}},
		{Hour: "2024-01-01T09", TotalEvents: 20, ByIndex: map[string]int64{"main": 20}},
	}, out.LogsByIndex)
	assert.Equal(t, []string{"audit", "main", unknownIndex}, out.Summary.Indexes)
	assert.Equal(t, int64(15), out.Summary.AveragePerPeriod)
}

func TestLogsByIndex_Average(t *testing.T) {
	tests := []struct {
		name  string
		usage []metering.LogsByIndexHour
		want  LogsSummary
	}{
		{
			name: "Three periods",
			usage: []metering.LogsByIndexHour{
				logsHour("main", "2024-01-01T00", 10),
				logsHour("main", "2024-01-02T00", 20),
				logsHour("main", "2024-01-03T00", 30),
			},
			want: LogsSummary{TotalEvents: 60, Periods: 3, AveragePerPeriod: 20, Indexes: []string{"main"}},
		},
		{
			name:  "No periods",
			usage: nil,
			want:  LogsSummary{Indexes: []string{}},
		},
		{
			name: "Floor division",
			usage: []metering.LogsByIndexHour{
				logsHour("main", "2024-01-01T00", 1),
				logsHour("main", "2024-01-02T00", 2),
			},
			want: LogsSummary{TotalEvents: 3, Periods: 2, AveragePerPeriod: 1, Indexes: []string{"main"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{logs: &metering.UsageLogsByIndexResponse{Usage: tt.usage}}

			out, err := newFakeService(client).LogsByIndex(context.Background(), LogsByIndexInput{
				StartDate: "2024-01-01",
				EndDate:   "2024-01-03",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Summary)
			assert.NotNil(t, out.LogsByIndex)
		})
	}
}

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name     string
		run      func(*Service) error
		wantKind string
	}{
		{
			name: "Unparseable month",
			run: func(s *Service) error {
				_, err := s.HistoricalCost(context.Background(), HistoricalCostInput{StartMonth: "March 2024"})
				return err
			},
			wantKind: "InvalidDateFormat",
		},
		{
			name: "Unparseable end month",
			run: func(s *Service) error {
				_, err := s.UsageSummary(context.Background(), UsageSummaryInput{StartMonth: "2024-01", EndMonth: "2024/02"})
				return err
			},
			wantKind: "InvalidDateFormat",
		},
		{
			name: "Month where day expected",
			run: func(s *Service) error {
				_, err := s.LogsByIndex(context.Background(), LogsByIndexInput{StartDate: "2024-01", EndDate: "2024-01-02"})
				return err
			},
			wantKind: "InvalidDateFormat",
		},
		{
			name: "Unknown view",
			run: func(s *Service) error {
				_, err := s.ProjectedCost(context.Background(), ProjectedCostInput{View: "everything"})
				return err
			},
			wantKind: "InvalidArgument",
		},
		{
			name: "Unknown aggregation",
			run: func(s *Service) error {
				_, err := s.LogsByIndex(context.Background(), LogsByIndexInput{StartDate: "2024-01-01", EndDate: "2024-01-02", AggregateBy: "week"})
				return err
			},
			wantKind: "InvalidArgument",
		},
		{
			name: "Missing end date",
			run: func(s *Service) error {
				_, err := s.LogsByIndex(context.Background(), LogsByIndexInput{StartDate: "2024-01-01"})
				return err
			},
			wantKind: "InvalidArgument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			err := tt.run(newFakeService(client))
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, classify(err).Kind)
			assert.Equal(t, 0, client.calls, "upstream must not be called for invalid input")
			assert.Equal(t, 0, client.closed)
		})
	}
}

func TestInvalidDateFormat_ListsAcceptedFormats(t *testing.T) {
	_, err := newFakeService(&fakeClient{}).HistoricalCost(context.Background(), HistoricalCostInput{StartMonth: "March 2024"})

	var dateErr *dateparse.InvalidDateFormatError
	require.True(t, errors.As(err, &dateErr))
	assert.Equal(t, "March 2024", dateErr.Value)
	assert.Contains(t, err.Error(), "YYYY-MM")
}

func TestUpstreamErrorClosesClient(t *testing.T) {
	upstream := &metering.APIError{Op: "get projected cost", StatusCode: 403, Body: "Forbidden"}
	client := &fakeClient{err: upstream}

	_, err := newFakeService(client).ProjectedCost(context.Background(), ProjectedCostInput{})

	require.ErrorIs(t, err, upstream)
	assert.Equal(t, "UpstreamError", classify(err).Kind)
	assert.Equal(t, 1, client.closed)
}
