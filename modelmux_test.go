package modelmux

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelmux/modelmux/provider"
	"github.com/modelmux/modelmux/runtime"
)

func TestRunWithProviders(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	mock := runtime.NewMock("OK").FailWith(provider.Claude, errors.New("overloaded"))

	results := RunWithProviders(
		context.Background(),
		"You are helpful.",
		[]Message{{Role: "user", Content: "hello"}},
		[]string{"openai", "claude"},
		map[string]string{"openai": "gpt-4o-mini", "claude": "claude-3-5-sonnet-20241022"},
		func(o *Options) { o.Runtime = mock },
	)

	require.Len(t, results, 2)
	assert.Equal(t, "OK", results["openai"])
	assert.Equal(t, "Error: overloaded", results["claude"])
}

func TestRunWithProvidersSync(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	results := RunWithProvidersSync(
		"",
		[]Message{{Role: "user", Content: "hello"}},
		[]string{"openai"},
		map[string]string{"openai": "gpt-4o-mini"},
		func(o *Options) { o.Runtime = runtime.NewMock("OK") },
	)

	assert.Equal(t, map[string]string{"openai": "OK"}, results)
}
