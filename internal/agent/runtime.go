package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable marks any failure to construct, reach, or drive the remote
// agent runtime: missing credentials, network errors, protocol mismatches,
// or tool calls that could not be resolved. Callers are expected to treat it
// as a signal to fall back to local data.
var ErrUnavailable = errors.New("agent runtime unavailable")

// ToolResolver resolves a single tool call issued by the runtime. callID is
// the runtime-assigned identifier for the call and arguments is the raw JSON
// argument payload. A resolver error fails the whole turn.
type ToolResolver func(ctx context.Context, callID, arguments string) (string, error)

// ToolSpec describes the one tool capability exposed to the agent.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Config describes the agent a runtime should run for a conversation turn.
type Config struct {
	Name         string
	Instructions string
	Tool         ToolSpec
}

// Runtime is the single capability surface the core consumes from a remote
// conversational-agent service: run one user turn for a configured
// single-tool agent, resolving any tool calls through resolve, and return
// the final text answer.
type Runtime interface {
	RunTurn(ctx context.Context, cfg Config, input string, resolve ToolResolver) (string, error)
}

// Options configures construction of a Runtime.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// New probes whether a real runtime can be configured and returns it, or an
// unavailable stub whose every turn fails with ErrUnavailable. Binding the
// stub keeps call sites free of conditionals; the fallback path takes over
// uniformly.
func New(opts Options) Runtime {
	if strings.TrimSpace(opts.APIKey) == "" {
		return Unavailable(errors.New("OPENAI_API_KEY not set"))
	}
	return newOpenAIRuntime(opts)
}

// Unavailable returns a Runtime that always fails with ErrUnavailable,
// carrying reason for diagnostics.
func Unavailable(reason error) Runtime {
	return unavailableRuntime{reason: reason}
}

type unavailableRuntime struct {
	reason error
}

func (u unavailableRuntime) RunTurn(context.Context, Config, string, ToolResolver) (string, error) {
	if u.reason == nil {
		return "", ErrUnavailable
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, u.reason)
}
