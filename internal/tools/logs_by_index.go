package tools

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/dateparse"
)

// Aggregation levels of get_logs_by_index.
const (
	AggregateByDay  = "day"
	AggregateByHour = "hour"
)

// unknownIndex names events reported without an index name.
const unknownIndex = "unknown"

// LogsByIndexInput is the input for the get_logs_by_index tool
type LogsByIndexInput struct {
	StartDate   string `json:"start_date" jsonschema_description:"Start date in YYYY-MM-DD format (required)"`
	EndDate     string `json:"end_date" jsonschema_description:"End date in YYYY-MM-DD format (required)"`
	AggregateBy string `json:"aggregate_by,omitempty" jsonschema:"enum=hour,enum=day,default=day" jsonschema_description:"Aggregation level: 'hour' or 'day'"`
}

// LogsPeriod holds the indexed events of one day or hour. Exactly one of Date
// and Hour is set.
type LogsPeriod struct {
	Date        string           `json:"date,omitempty"`
	Hour        string           `json:"hour,omitempty"`
	TotalEvents int64            `json:"total_events"`
	ByIndex     map[string]int64 `json:"by_index"`
}

// LogsSummary aggregates all periods
type LogsSummary struct {
	TotalEvents      int64    `json:"total_events"`
	Periods          int      `json:"periods"`
	AveragePerPeriod int64    `json:"average_per_period"`
	Indexes          []string `json:"indexes"`
}

// LogsByIndexOutput is the output of the get_logs_by_index tool
type LogsByIndexOutput struct {
	LogsByIndex []LogsPeriod `json:"logs_by_index"`
	Summary     LogsSummary  `json:"summary"`
}

// LogsByIndex returns indexed log events per index, aggregated by day or hour.
func (s *Service) LogsByIndex(ctx context.Context, input LogsByIndexInput) (*LogsByIndexOutput, error) {
	zerolog.Ctx(ctx).Info().
		Str("start_date", input.StartDate).
		Str("end_date", input.EndDate).
		Str("aggregate_by", input.AggregateBy).
		Msg("Tool 'get_logs_by_index' called")

	if err := requireArg("start_date", input.StartDate); err != nil {
		return nil, err
	}
	if err := requireArg("end_date", input.EndDate); err != nil {
		return nil, err
	}

	aggregateBy := input.AggregateBy
	switch aggregateBy {
	case "":
		aggregateBy = AggregateByDay
	case AggregateByDay, AggregateByHour:
	default:
		return nil, &ArgumentError{
			Field:   "aggregate_by",
			Message: fmt.Sprintf("must be one of %q or %q, got %q", AggregateByHour, AggregateByDay, aggregateBy),
		}
	}

	startHr, err := dateparse.ParseDay(input.StartDate)
	if err != nil {
		return nil, err
	}
	endHr, err := dateparse.EndOfDay(input.EndDate)
	if err != nil {
		return nil, err
	}

	agg := newLogsAggregator(aggregateBy)
	err = s.withClient(ctx, func(client UsageClient) error {
		resp, err := client.GetUsageLogsByIndex(ctx, startHr, endHr)
		if err != nil {
			return fmt.Errorf("failed to get logs usage by index: %w", err)
		}

		for _, item := range resp.Usage {
			hour := hourKey(item.Hour)
			if hour == "" {
				continue
			}
			name := unknownIndex
			if item.IndexName != nil && *item.IndexName != "" {
				name = *item.IndexName
			}
			var count int64
			if item.EventCount != nil {
				count = *item.EventCount
			}
			agg.add(hour, name, count)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return agg.output(), nil
}

// hourKey returns the YYYY-MM-DDTHH prefix of an upstream hour, or "" when absent.
func hourKey(hour *string) string {
	if hour == nil || *hour == "" {
		return ""
	}
	key := *hour
	if len(key) > hourKeyLen {
		key = key[:hourKeyLen]
	}
	// Space-separated timestamps are normalized to the ISO form.
	if len(key) > dayKeyLen && key[dayKeyLen] == ' ' {
		key = key[:dayKeyLen] + "T" + key[dayKeyLen+1:]
	}
	return key
}

type logsAggregator struct {
	aggregateBy string
	totals      map[string]int64
	byIndex     map[string]map[string]int64
	indexes     map[string]struct{}
}

func newLogsAggregator(aggregateBy string) *logsAggregator {
	return &logsAggregator{
		aggregateBy: aggregateBy,
		totals:      make(map[string]int64),
		byIndex:     make(map[string]map[string]int64),
		indexes:     make(map[string]struct{}),
	}
}

func (a *logsAggregator) add(hour, index string, count int64) {
	key := hour
	if a.aggregateBy == AggregateByDay {
		key = hour[:min(len(hour), dayKeyLen)]
	}

	a.indexes[index] = struct{}{}
	if a.byIndex[key] == nil {
		a.byIndex[key] = make(map[string]int64)
	}
	a.byIndex[key][index] += count
	a.totals[key] += count
}

func (a *logsAggregator) output() *LogsByIndexOutput {
	keys := slices.Sorted(maps.Keys(a.totals))

	periods := make([]LogsPeriod, 0, len(keys))
	var total int64
	for _, key := range keys {
		byIndex := make(map[string]int64)
		for index, count := range a.byIndex[key] {
			if count > 0 {
				byIndex[index] = count
			}
		}

		period := LogsPeriod{TotalEvents: a.totals[key], ByIndex: byIndex}
		if a.aggregateBy == AggregateByDay {
			period.Date = key
		} else {
			period.Hour = key
		}
		periods = append(periods, period)
		total += a.totals[key]
	}

	var average int64
	if len(periods) > 0 {
		average = floorDiv(total, int64(len(periods)))
	}

	indexes := slices.AppendSeq(make([]string, 0, len(a.indexes)), maps.Keys(a.indexes))
	slices.Sort(indexes)

	return &LogsByIndexOutput{
		LogsByIndex: periods,
		Summary: LogsSummary{
			TotalEvents:      total,
			Periods:          len(periods),
			AveragePerPeriod: average,
			Indexes:          indexes,
		},
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
