package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Name:         "Mock Weather Agent",
		Instructions: "Call the tool and answer with its output.",
		Tool: ToolSpec{
			Name:        "get_mock_weather",
			Description: "Return the mock weather description for a location",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{"type": "string"},
				},
				"required": []string{"location"},
			},
		},
	}
}

func TestNewWithoutAPIKeyReturnsUnavailableRuntime(t *testing.T) {
	runtime := New(Options{})

	_, err := runtime.RunTurn(context.Background(), testConfig(), "beijing", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestUnavailableRuntimeCarriesReason(t *testing.T) {
	runtime := Unavailable(errors.New("no network"))

	_, err := runtime.RunTurn(context.Background(), testConfig(), "beijing", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "no network") {
		t.Fatalf("expected reason in error, got %q", err)
	}
}

func TestRunTurnDrivesToolCallLoop(t *testing.T) {
	var requests int

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read request body: %v", err)
		}
		requests++

		w.Header().Set("Content-Type", "application/json")
		switch requests {
		case 1:
			if !strings.Contains(string(body), `"get_mock_weather"`) {
				t.Errorf("first request must declare the tool, got %s", body)
			}
			fmt.Fprint(w, `{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"choices": [{
					"index": 0,
					"message": {
						"role": "assistant",
						"content": "",
						"tool_calls": [{
							"id": "call_1",
							"type": "function",
							"function": {
								"name": "get_mock_weather",
								"arguments": "{\"location\": \"beijing\"}"
							}
						}]
					},
					"finish_reason": "tool_calls"
				}]
			}`)
		case 2:
			if !strings.Contains(string(body), `"tool_call_id":"call_1"`) {
				t.Errorf("second request must carry the tool output keyed by call ID, got %s", body)
			}
			if !strings.Contains(string(body), "Beijing: cloudy") {
				t.Errorf("second request must carry the tool output, got %s", body)
			}
			fmt.Fprint(w, `{
				"id": "chatcmpl-2",
				"object": "chat.completion",
				"choices": [{
					"index": 0,
					"message": {
						"role": "assistant",
						"content": "  Beijing: cloudy, 22°C  "
					},
					"finish_reason": "stop"
				}]
			}`)
		default:
			t.Errorf("unexpected extra request %d", requests)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	runtime := New(Options{APIKey: "test-key", BaseURL: ts.URL + "/v1"})

	var gotCallID, gotLocation string
	answer, err := runtime.RunTurn(context.Background(), testConfig(), "beijing",
		func(_ context.Context, callID, arguments string) (string, error) {
			gotCallID = callID
			var args struct {
				Location string `json:"location"`
			}
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", err
			}
			gotLocation = args.Location
			return "Beijing: cloudy, 22°C", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != "Beijing: cloudy, 22°C" {
		t.Fatalf("expected trimmed final answer, got %q", answer)
	}
	if gotCallID != "call_1" {
		t.Fatalf("expected resolver to receive call_1, got %q", gotCallID)
	}
	if gotLocation != "beijing" {
		t.Fatalf("expected resolver to receive beijing, got %q", gotLocation)
	}
	if requests != 2 {
		t.Fatalf("expected exactly 2 completion requests, got %d", requests)
	}
}

func TestRunTurnReportsServerErrorAsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	runtime := New(Options{APIKey: "test-key", BaseURL: ts.URL + "/v1"})

	_, err := runtime.RunTurn(context.Background(), testConfig(), "beijing", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRunTurnFailsWhenToolResolverErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {
							"name": "get_mock_weather",
							"arguments": "{not json"
						}
					}]
				},
				"finish_reason": "tool_calls"
			}]
		}`)
	}))
	defer ts.Close()

	runtime := New(Options{APIKey: "test-key", BaseURL: ts.URL + "/v1"})

	_, err := runtime.RunTurn(context.Background(), testConfig(), "beijing",
		func(context.Context, string, string) (string, error) {
			return "", errors.New("malformed tool arguments")
		})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "malformed tool arguments") {
		t.Fatalf("expected resolver failure in error, got %q", err)
	}
}
