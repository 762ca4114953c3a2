package runtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelmux/modelmux/agent"
	"github.com/modelmux/modelmux/tool"
)

// testAgent builds an agent bound to the given OpenAI-compatible stub server.
func testAgent(t *testing.T, srv *httptest.Server, optFns ...func(o *agent.Options)) *agent.Agent {
	t.Helper()
	client := openai.NewClient(option.WithBaseURL(srv.URL), option.WithAPIKey("sk-test"))
	optFns = append([]func(o *agent.Options){func(o *agent.Options) { o.Client = &client }}, optFns...)
	ag, err := agent.New("openai", "gpt-4o-mini", "You are concise.", optFns...)
	require.NoError(t, err)
	return ag
}

func completionJSON(content string) string {
	return `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": ` + mustJSON(content) + `},
			"finish_reason": "stop"
		}]
	}`
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestOpenAIRuntime_PlainCompletion(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), "unexpected path %s", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionJSON("The capital of France is Paris."))
	}))
	defer srv.Close()

	rt := NewOpenAIRuntime()
	result, err := rt.Run(context.Background(), testAgent(t, srv), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "The capital of France is Paris.", result.FinalOutput)

	// Instructions become the system message, the prompt the user message.
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You are concise.", first["content"])
	second := msgs[1].(map[string]any)
	assert.Equal(t, "user", second["role"])

	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.InDelta(t, 0.7, gotBody["temperature"].(float64), 1e-9)
}

func TestOpenAIRuntime_ToolDispatchLoop(t *testing.T) {
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var parsed map[string]any
		require.NoError(t, json.Unmarshal(body, &parsed))
		requests = append(requests, parsed)

		w.Header().Set("Content-Type", "application/json")
		if len(requests) == 1 {
			_, _ = io.WriteString(w, `{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"model": "gpt-4o-mini",
				"choices": [{
					"index": 0,
					"message": {
						"role": "assistant",
						"content": "",
						"tool_calls": [{
							"id": "call_1",
							"type": "function",
							"function": {"name": "get_weather", "arguments": "{\"city\":\"Tokyo\"}"}
						}]
					},
					"finish_reason": "tool_calls"
				}]
			}`)
			return
		}
		_, _ = io.WriteString(w, completionJSON("It is sunny in Tokyo."))
	}))
	defer srv.Close()

	weather, err := tool.FromDefinition(tool.Definition{Name: "get_weather"})
	require.NoError(t, err)

	ag := testAgent(t, srv, func(o *agent.Options) { o.Tools = []tool.Tool{weather} })

	rt := NewOpenAIRuntime()
	result, err := rt.Run(context.Background(), ag, "Weather in Tokyo?")
	require.NoError(t, err)
	assert.Equal(t, "It is sunny in Tokyo.", result.FinalOutput)

	// Second request must carry the tool result back to the model.
	require.Len(t, requests, 2)
	msgs := requests[1]["messages"].([]any)
	var toolMsg map[string]any
	for _, m := range msgs {
		mm := m.(map[string]any)
		if mm["role"] == "tool" {
			toolMsg = mm
		}
	}
	require.NotNil(t, toolMsg, "expected a tool role message in the follow-up request")
	assert.Equal(t, "call_1", toolMsg["tool_call_id"])
	assert.Contains(t, mustJSON(toolMsg["content"]), "Tokyo")

	// The first request advertises the tool definition.
	tools := requests[0]["tools"].([]any)
	require.Len(t, tools, 1)
}

func TestOpenAIRuntime_UnknownToolReportedToModel(t *testing.T) {
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var parsed map[string]any
		_ = json.Unmarshal(body, &parsed)
		requests = append(requests, parsed)

		w.Header().Set("Content-Type", "application/json")
		if len(requests) == 1 {
			_, _ = io.WriteString(w, `{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"model": "gpt-4o-mini",
				"choices": [{
					"index": 0,
					"message": {
						"role": "assistant",
						"content": "",
						"tool_calls": [{
							"id": "call_1",
							"type": "function",
							"function": {"name": "no_such_tool", "arguments": "{}"}
						}]
					},
					"finish_reason": "tool_calls"
				}]
			}`)
			return
		}
		_, _ = io.WriteString(w, completionJSON("done"))
	}))
	defer srv.Close()

	rt := NewOpenAIRuntime()
	result, err := rt.Run(context.Background(), testAgent(t, srv), "hi")
	require.NoError(t, err)
	assert.Equal(t, "done", result.FinalOutput)

	msgs := requests[1]["messages"].([]any)
	var toolContent string
	for _, m := range msgs {
		mm := m.(map[string]any)
		if mm["role"] == "tool" {
			toolContent = mustJSON(mm["content"])
		}
	}
	assert.Contains(t, toolContent, "not registered")
}

func TestOpenAIRuntime_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	rt := NewOpenAIRuntime()
	_, err := rt.Run(context.Background(), testAgent(t, srv), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion failed")
}

func TestOpenAIRuntime_ResponsesVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/responses"), "unexpected path %s", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "resp_1",
			"object": "response",
			"status": "completed",
			"model": "gpt-4o-mini",
			"output": [{
				"type": "message",
				"id": "msg_1",
				"role": "assistant",
				"status": "completed",
				"content": [{"type": "output_text", "text": "Hi there", "annotations": []}]
			}]
		}`)
	}))
	defer srv.Close()

	ag := testAgent(t, srv, func(o *agent.Options) { o.UseResponsesAPI = true })

	rt := NewOpenAIRuntime()
	result, err := rt.Run(context.Background(), ag, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", result.FinalOutput)
}
