package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"weather-agent/internal/agent"
	"weather-agent/internal/dataset"
)

const (
	agentName         = "Mock Weather Agent"
	agentInstructions = "You are a weather lookup agent. When the user names a location, " +
		"call the get_mock_weather tool and answer with exactly the weather it returns."

	toolName        = "get_mock_weather"
	toolDescription = "Return the mock weather description for a location"
)

// Resolver answers weather queries remote-first with a local fallback. When
// a runtime is bound it runs one agent turn, feeding tool calls from the
// dataset; on any remote failure it degrades to a direct dataset lookup.
type Resolver struct {
	dataset *dataset.Dataset
	runtime agent.Runtime
}

// NewResolver creates a Resolver over ds and runtime. A nil ds selects the
// default dataset; a nil runtime makes every resolution take the local path.
func NewResolver(ds *dataset.Dataset, runtime agent.Runtime) *Resolver {
	if ds == nil {
		ds = dataset.Default()
	}
	return &Resolver{dataset: ds, runtime: runtime}
}

// Resolve returns the weather description for location.
//
// Remote failures of any kind are swallowed in favor of the local lookup, so
// the caller always receives an answer; the only error that escapes is
// dataset.ErrEmptyLocation from the fallback path, which indicates the input
// itself is malformed and must not be masked. At most one outbound runtime
// call is made per invocation, with no retries and no caching.
func (r *Resolver) Resolve(ctx context.Context, location string) (string, error) {
	if r.runtime != nil {
		answer, err := r.runtime.RunTurn(ctx, r.agentConfig(), location, r.resolveToolCall)
		if err == nil {
			return strings.TrimSpace(answer), nil
		}
	}
	return r.dataset.Lookup(location)
}

// Locations exposes the curated location keys of the underlying dataset.
func (r *Resolver) Locations() iter.Seq[string] {
	return r.dataset.Locations()
}

// agentConfig describes the one-tool agent the runtime should run.
func (r *Resolver) agentConfig() agent.Config {
	return agent.Config{
		Name:         agentName,
		Instructions: agentInstructions,
		Tool: agent.ToolSpec{
			Name:        toolName,
			Description: toolDescription,
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "Name of the location to look up",
					},
				},
				"required": []string{"location"},
			},
		},
	}
}

// resolveToolCall feeds a runtime-issued tool call from the local dataset.
// Malformed arguments fail the turn, which the caller turns into a fallback.
func (r *Resolver) resolveToolCall(_ context.Context, _ string, arguments string) (string, error) {
	var args struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("malformed tool arguments: %w", err)
	}
	return r.dataset.Lookup(args.Location)
}
