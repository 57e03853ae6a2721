package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 20 * time.Second

	// maxToolRounds bounds how many completion rounds one turn may take.
	maxToolRounds = 4
)

// openAIRuntime drives a single-tool agent over the OpenAI chat completion
// API. Outbound calls go through a circuit breaker so a misbehaving endpoint
// trips to the unavailable path instead of being hammered.
type openAIRuntime struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	circuit *gobreaker.CircuitBreaker
}

func newOpenAIRuntime(opts Options) *openAIRuntime {
	cfg := openai.DefaultConfig(opts.APIKey)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = base
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai-agent",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &openAIRuntime{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		circuit: cb,
	}
}

// RunTurn submits input as a user message to the configured agent and drives
// the tool-call loop to completion. Every tool call the runtime issues is
// resolved locally through resolve and fed back keyed by its call ID. All
// failures are reported as ErrUnavailable.
func (r *openAIRuntime) RunTurn(ctx context.Context, cfg Config, input string, resolve ToolResolver) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: cfg.Instructions},
		{Role: openai.ChatMessageRoleUser, Content: input},
	}

	tools := []openai.Tool{{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        cfg.Tool.Name,
			Description: cfg.Tool.Description,
			Parameters:  cfg.Tool.Parameters,
		},
	}}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := r.complete(ctx, openai.ChatCompletionRequest{
			Model:    r.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%w: no completion choices", ErrUnavailable)
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return strings.TrimSpace(msg.Content), nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			if resolve == nil {
				return "", fmt.Errorf("%w: tool %q requested but no resolver bound", ErrUnavailable, call.Function.Name)
			}
			output, err := resolve(ctx, call.ID, call.Function.Arguments)
			if err != nil {
				return "", fmt.Errorf("%w: tool %s: %v", ErrUnavailable, call.Function.Name, err)
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    output,
			})
		}
	}

	return "", fmt.Errorf("%w: turn did not finish within %d tool rounds", ErrUnavailable, maxToolRounds)
}

// complete executes one chat completion guarded by the circuit breaker.
func (r *openAIRuntime) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	result, err := r.circuit.Execute(func() (interface{}, error) {
		return r.api.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return openai.ChatCompletionResponse{}, fmt.Errorf("circuit breaker open: %w", err)
		}
		return openai.ChatCompletionResponse{}, err
	}

	resp, ok := result.(openai.ChatCompletionResponse)
	if !ok {
		return openai.ChatCompletionResponse{}, errors.New("unexpected result type from circuit breaker")
	}
	return resp, nil
}
