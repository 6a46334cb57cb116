package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/provider"
)

// Executor handles one callable tool offered to the model.
type Executor interface {
	// Name returns the tool name as exposed to the model.
	Name() string

	// Description tells the model when to use the tool.
	Description() string

	// Parameters returns the JSON schema of the tool arguments.
	Parameters() json.RawMessage

	// Execute runs the tool with the raw JSON arguments and returns the
	// output fed back to the model.
	Execute(ctx context.Context, args string) (string, error)
}

// ToolSet is the fixed capability set offered on the direct generation
// path. Lookup is by tool name; definition order is registration order.
type ToolSet struct {
	executors map[string]Executor
	order     []string
}

// NewToolSet builds a tool set from the given executors.
func NewToolSet(executors ...Executor) *ToolSet {
	ts := &ToolSet{executors: make(map[string]Executor)}
	for _, exec := range executors {
		ts.executors[exec.Name()] = exec
		ts.order = append(ts.order, exec.Name())
	}
	return ts
}

// Definitions returns the tool definitions in registration order.
func (ts *ToolSet) Definitions() []provider.Tool {
	defs := make([]provider.Tool, 0, len(ts.order))
	for _, name := range ts.order {
		exec := ts.executors[name]
		defs = append(defs, provider.Tool{
			Name:        exec.Name(),
			Description: exec.Description(),
			Parameters:  exec.Parameters(),
		})
	}
	return defs
}

// Execute dispatches one tool call to its executor.
func (ts *ToolSet) Execute(ctx context.Context, call provider.ToolCall) (string, error) {
	exec, ok := ts.executors[call.Name]
	if !ok {
		return "", fmt.Errorf("no executor found for tool %s", call.Name)
	}
	return exec.Execute(ctx, call.Arguments)
}
