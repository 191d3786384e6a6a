package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/telemetry"
)

// Error kinds assigned by the dispatcher itself. Other kinds come from the
// Kind method of the returned error.
const (
	KindUnknownTool   = "UnknownTool"
	KindSerialization = "SerializationError"
	KindPanic         = "Panic"
	KindGeneric       = "Error"
)

// Error is a tool failure.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is the outcome of one tool call: a value or an error.
type Result struct {
	Tool  string
	Value any
	Err   *Error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text renders the result as the text payload returned to MCP clients:
// pretty-printed JSON on success, "Error: <kind>: <message>" on failure and
// "Unknown tool: <name>" for unknown tools.
func (r Result) Text() string {
	if r.Err != nil {
		if r.Err.Kind == KindUnknownTool {
			return r.Err.Message
		}
		return fmt.Sprintf("Error: %s: %s", r.Err.Kind, r.Err.Message)
	}

	text, err := renderJSON(r.Value)
	if err != nil {
		return fmt.Sprintf("Error: %s: %v", KindSerialization, err)
	}
	return text
}

func (r Result) outcome() string {
	if r.Err != nil {
		return r.Err.Kind
	}
	return "ok"
}

func renderJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Dispatcher routes named tool invocations to their definitions.
// It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	service *Service
	defs    []Definition
	byName  map[string]Definition
	metrics *telemetry.Metrics
}

// NewDispatcher creates a Dispatcher over every billing tool. m may be nil.
func NewDispatcher(s *Service, m *telemetry.Metrics) *Dispatcher {
	defs := Definitions()
	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	return &Dispatcher{
		service: s,
		defs:    defs,
		byName:  byName,
		metrics: m,
	}
}

// Definitions returns the tools served by d.
func (d *Dispatcher) Definitions() []Definition {
	return d.defs
}

// Call runs the named tool with args, which may be nil, raw JSON or any value
// that marshals to the tool's input object. Call never panics and never
// returns a Go error; failures are carried in the Result.
func (d *Dispatcher) Call(ctx context.Context, name string, args any) (res Result) {
	logger := zerolog.Ctx(ctx).With().
		Str("tool", name).
		Str("call_id", uuid.New().String()).
		Logger()
	ctx = logger.WithContext(ctx)

	def, ok := d.byName[name]
	if !ok {
		logger.Warn().Msg("Unknown tool requested")
		return Result{Tool: name, Err: &Error{Kind: KindUnknownTool, Message: "Unknown tool: " + name}}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Tool panicked")
			res = Result{Tool: name, Err: &Error{Kind: KindPanic, Message: fmt.Sprint(r)}}
		}
		d.metrics.ObserveToolCall(name, res.outcome(), time.Since(start))
	}()

	raw, err := encodeArgs(args)
	if err != nil {
		return d.fail(logger, name, &ArgumentError{Message: fmt.Sprintf("invalid arguments: %v", err)})
	}

	value, err := def.run(ctx, d.service, raw)
	if err != nil {
		return d.fail(logger, name, err)
	}

	logger.Debug().Dur("duration", time.Since(start)).Msg("Tool completed")
	return Result{Tool: name, Value: value}
}

func (d *Dispatcher) fail(logger zerolog.Logger, name string, err error) Result {
	e := classify(err)
	logger.Error().Err(err).Str("kind", e.Kind).Msg("Tool failed")
	return Result{Tool: name, Err: e}
}

// classify converts err into an Error, taking the kind from the first error in
// the chain that reports one.
func classify(err error) *Error {
	kind := KindGeneric
	var kinded interface{ Kind() string }
	if errors.As(err, &kinded) {
		kind = kinded.Kind()
	}
	return &Error{Kind: kind, Message: err.Error()}
}

func encodeArgs(args any) ([]byte, error) {
	switch v := args.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
