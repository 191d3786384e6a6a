package tools

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// genkitTool returns a function defining the named tool on a Genkit instance.
// The tool output is the dispatcher's text payload, so failures reach MCP
// clients as text rather than protocol errors.
func genkitTool[In any](name, description string) func(g *genkit.Genkit, d *Dispatcher) ai.Tool {
	return func(g *genkit.Genkit, d *Dispatcher) ai.Tool {
		return genkit.DefineTool(
			g,
			name,
			description,
			func(ctx *ai.ToolContext, input In) (string, error) {
				return d.Call(ctx.Context, name, input).Text(), nil
			})
	}
}

// Register defines every tool of d on g.
func Register(g *genkit.Genkit, d *Dispatcher) []ai.Tool {
	tools := make([]ai.Tool, 0, len(d.defs))
	for _, def := range d.defs {
		tools = append(tools, def.define(g, d))
	}
	return tools
}
