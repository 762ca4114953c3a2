package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelmux/modelmux/provider"
	"github.com/modelmux/modelmux/tool"
)

func mustTool(t *testing.T, name string) tool.Tool {
	t.Helper()
	dt, err := tool.FromDefinition(tool.Definition{Name: name})
	require.NoError(t, err)
	return dt
}

func TestNew_Defaults(t *testing.T) {
	a, err := New("openai", "gpt-4o-mini", "You are a helpful assistant.",
		func(o *Options) { o.APIKey = "sk-test" })
	require.NoError(t, err)

	assert.Equal(t, "Assistant", a.Name())
	assert.Equal(t, "You are a helpful assistant.", a.Instructions())
	assert.Empty(t, a.Tools())
	assert.Empty(t, a.Handoffs())

	b := a.Binding()
	assert.Equal(t, provider.OpenAI, b.Provider)
	assert.NotNil(t, b.Client)
	assert.Equal(t, "gpt-4o-mini", b.Model)
	assert.Equal(t, 0.7, b.Temperature)
	assert.Equal(t, ChatCompletionsAPI, b.Variant)
}

func TestNew_Options(t *testing.T) {
	handoff, err := New("deepseek", "deepseek-chat", "Handles math.",
		func(o *Options) { o.APIKey = "sk-test"; o.Name = "MathAgent" })
	require.NoError(t, err)

	a, err := New("claude", "claude-3-5-sonnet-20241022", "Route questions.", func(o *Options) {
		o.APIKey = "sk-test"
		o.Name = "Router"
		o.Temperature = 0.2
		o.Tools = []tool.Tool{mustTool(t, "get_weather")}
		o.Handoffs = []*Agent{handoff}
		o.UseResponsesAPI = true
	})
	require.NoError(t, err)

	assert.Equal(t, "Router", a.Name())
	require.Len(t, a.Tools(), 1)
	require.Len(t, a.Handoffs(), 1)
	assert.Equal(t, "MathAgent", a.Handoffs()[0].Name())

	b := a.Binding()
	assert.Equal(t, provider.Claude, b.Provider)
	assert.Equal(t, 0.2, b.Temperature)
	assert.Equal(t, ResponsesAPI, b.Variant)
}

func TestNew_DuplicateToolNamesReplaceInPlace(t *testing.T) {
	first := mustTool(t, "lookup")
	second := mustTool(t, "other")
	replacement := mustTool(t, "lookup")

	a, err := New("openai", "gpt-4o-mini", "", func(o *Options) {
		o.APIKey = "sk-test"
		o.Tools = []tool.Tool{first, second, replacement}
	})
	require.NoError(t, err)

	tools := a.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "lookup", tools[0].Name())
	assert.Equal(t, "other", tools[1].Name())
	assert.Same(t, replacement, tools[0])

	got, ok := a.Tool("lookup")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("mistral", "mistral-large", "", func(o *Options) { o.APIKey = "sk-test" })
	require.Error(t, err)

	var upErr *provider.UnsupportedProviderError
	assert.ErrorAs(t, err, &upErr)
}

func TestNew_MissingCredentialPropagated(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New("gemini", "gemini-2.0-flash", "")
	require.Error(t, err)

	var mcErr *provider.MissingCredentialError
	require.ErrorAs(t, err, &mcErr)
	assert.Equal(t, "GEMINI_API_KEY", mcErr.EnvVar)
}

func TestAPIVariant_String(t *testing.T) {
	assert.Equal(t, "chat_completions", ChatCompletionsAPI.String())
	assert.Equal(t, "responses", ResponsesAPI.String())
}
