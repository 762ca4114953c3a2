// Package modelmux provides a high-level façade over the provider registry,
// agent builder and fan-out runner, enabling one-call comparison of a prompt
// across multiple LLM vendors. Most applications interact with this package
// by:
//  1. Optionally turning JSON tool definitions into callable tools (tool.FromJSON)
//  2. Running a prompt against several providers (RunWithProviders or
//     RunWithProvidersSync)
//  3. Reading the per-provider outcome map, where failures appear as
//     "Error: ..." text instead of aborting the call
//
// The façade delegates execution to runner.Runner while keeping setup
// ergonomics concise. Defaults are safe for local development; production
// deployments typically supply a structured logger and explicit credentials.
package modelmux

import (
	"context"

	"github.com/modelmux/modelmux/logging"
	"github.com/modelmux/modelmux/runner"
	"github.com/modelmux/modelmux/runtime"
	"github.com/modelmux/modelmux/tool"
)

// Message is one role/content entry of a conversation.
type Message = runner.Message

// Options configures a fan-out run issued through the façade.
type Options struct {
	// APIKeys maps provider name to an explicit credential; providers absent
	// from the map fall back to their environment variable.
	APIKeys map[string]string
	// Tools shared by every agent.
	Tools []tool.Tool
	// Temperature for every agent. Zero means the 0.7 default.
	Temperature float64
	// Runtime executes the built agents. Defaults to the OpenAI-compatible
	// runtime.
	Runtime runtime.Runtime
	// Logger receives structured fan-out logs. Defaults to NoOp.
	Logger logging.Logger
}

// RunWithProviders runs the same prompt against multiple LLM providers
// concurrently and returns a map from provider name to its response text.
// The prompt is the first "user" role entry of messages; systemPrompt becomes
// every agent's instructions. Per-provider failures surface as "Error: ..."
// values in the map, never as a failure of the whole call.
func RunWithProviders(
	ctx context.Context,
	systemPrompt string,
	messages []Message,
	providers []string,
	modelNames map[string]string,
	optFns ...func(o *Options),
) map[string]string {
	opts := Options{
		Runtime: runtime.NewOpenAIRuntime(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(func(o *runner.Options) {
		o.Runtime = opts.Runtime
		o.Logger = opts.Logger
	})

	return r.RunAll(ctx, runner.Request{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		Providers:    providers,
		ModelNames:   modelNames,
		APIKeys:      opts.APIKeys,
		Tools:        opts.Tools,
		Temperature:  opts.Temperature,
	})
}

// RunWithProvidersSync is the blocking form of RunWithProviders for callers
// without a context of their own.
func RunWithProvidersSync(
	systemPrompt string,
	messages []Message,
	providers []string,
	modelNames map[string]string,
	optFns ...func(o *Options),
) map[string]string {
	return RunWithProviders(context.Background(), systemPrompt, messages, providers, modelNames, optFns...)
}
