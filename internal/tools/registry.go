package tools

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Definition declares a tool: its name, description and input schema, and how
// to run it.
type Definition struct {
	Name        string
	Description string

	input  any
	run    func(ctx context.Context, s *Service, args []byte) (any, error)
	define func(g *genkit.Genkit, d *Dispatcher) ai.Tool
}

// Schema reflects the JSON schema of the tool input. Fields without omitempty
// are required.
func (d Definition) Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}
	return r.Reflect(d.input)
}

// Definitions returns every billing tool in presentation order.
func Definitions() []Definition {
	return []Definition{
		newDefinition(
			"get_estimated_cost",
			"Get estimated cost for the current billing period, broken down by product. Shows committed vs on-demand costs.",
			(*Service).EstimatedCost,
		),
		newDefinition(
			"get_historical_cost",
			"Get historical cost data for a date range, showing monthly costs broken down by product.",
			(*Service).HistoricalCost,
		),
		newDefinition(
			"get_projected_cost",
			"Get projected total cost for the current billing period, showing expected end-of-month costs by product with committed vs on-demand breakdown.",
			(*Service).ProjectedCost,
		),
		newDefinition(
			"get_usage_summary",
			"Get usage metrics summary including logs indexed/ingested, hosts, containers, APM, RUM, and custom metrics.",
			(*Service).UsageSummary,
		),
		newDefinition(
			"get_logs_by_index",
			"Get logs indexed usage broken down by index with hourly or daily aggregation. Useful for identifying log volume spikes and trends.",
			(*Service).LogsByIndex,
		),
	}
}

func newDefinition[In, Out any](name, description string, fn func(*Service, context.Context, In) (*Out, error)) Definition {
	return Definition{
		Name:        name,
		Description: description,
		input:       new(In),
		run: func(ctx context.Context, s *Service, args []byte) (any, error) {
			var input In
			if len(args) > 0 {
				if err := json.Unmarshal(args, &input); err != nil {
					return nil, &ArgumentError{Message: fmt.Sprintf("invalid arguments: %v", err)}
				}
			}

			out, err := fn(s, ctx, input)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
		define: genkitTool[In](name, description),
	}
}
