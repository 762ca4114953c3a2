package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modelmux/modelmux/agent"
	"github.com/modelmux/modelmux/logging"
	"github.com/modelmux/modelmux/runtime"
	"github.com/modelmux/modelmux/tool"
)

// defaultTemperature is applied when a request leaves Temperature unset.
const defaultTemperature = 0.7

// Message is one role/content entry of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one fan-out call.
type Request struct {
	// SystemPrompt is the shared instruction string for every agent.
	SystemPrompt string
	// Messages is the conversation; the first "user" entry supplies the
	// prompt forwarded to every provider.
	Messages []Message
	// Providers to dispatch to, e.g. "openai", "claude".
	Providers []string
	// ModelNames maps provider name to the model to use there.
	ModelNames map[string]string
	// APIKeys optionally maps provider name to an explicit credential;
	// providers absent from the map fall back to their environment variable.
	APIKeys map[string]string
	// Tools shared by every agent.
	Tools []tool.Tool
	// Temperature for every agent. Zero means the 0.7 default.
	Temperature float64
}

// MissingModelNameError reports a requested provider without an entry in the
// request's ModelNames map. It surfaces as that provider's failure slot, not
// as an abort of the whole fan-out.
type MissingModelNameError struct {
	Provider string `json:"provider"`
}

func (e *MissingModelNameError) Error() string {
	return fmt.Sprintf("no model name specified for provider: %s", e.Provider)
}

// Options holds dependency overrides passed to New().
type Options struct {
	// Runtime executes the built agents. Defaults to the OpenAI-compatible
	// runtime, which serves every registered provider.
	Runtime runtime.Runtime
	// Logger receives structured fan-out logs. Defaults to NoOp.
	Logger logging.Logger
}

// Runner fans one prompt out to many providers concurrently and joins the
// per-provider outcomes. A Runner is stateless between calls and safe for
// concurrent use.
type Runner struct {
	runtime runtime.Runtime
	logger  logging.Logger
}

// New constructs a Runner with optional overrides.
func New(optFns ...func(o *Options)) *Runner {
	opts := Options{
		Runtime: runtime.NewOpenAIRuntime(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{runtime: opts.Runtime, logger: opts.Logger}
}

// RunAll runs the request's prompt against every requested provider
// concurrently and returns one result slot per provider.
//
// A slot holds either the provider's final output or, for any failure along
// that provider's pipeline (model-name lookup, credential resolution, agent
// construction, execution), a string prefixed "Error: ". Failures never
// propagate out of RunAll and never cancel sibling providers: the whole
// point of the fan-out is that every provider's outcome stays observable.
//
// Model names are validated lazily inside each provider's own task, so a
// missing entry fails only that slot while the siblings proceed.
func (r *Runner) RunAll(ctx context.Context, req Request) map[string]string {
	runID := uuid.NewString()
	input := firstUserMessage(req.Messages)

	r.logger.Debug("runner.fanout.start",
		"run", runID,
		"providers", len(req.Providers),
	)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]string, len(req.Providers))
	)

	for _, providerName := range req.Providers {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()

			start := time.Now()
			output, err := r.runProvider(ctx, p, req, input)
			if err != nil {
				r.logger.Warn("runner.provider.failed",
					"run", runID,
					"provider", p,
					"error", err.Error(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
				output = fmt.Sprintf("Error: %v", err)
			} else {
				r.logger.Debug("runner.provider.done",
					"run", runID,
					"provider", p,
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}

			mu.Lock()
			results[p] = output
			mu.Unlock()
		}(providerName)
	}

	wg.Wait()

	r.logger.Debug("runner.fanout.done", "run", runID)

	return results
}

// RunAllSync is the blocking form of RunAll for callers without a context of
// their own. No additional semantics.
func (r *Runner) RunAllSync(req Request) map[string]string {
	return r.RunAll(context.Background(), req)
}

// runProvider executes one provider's pipeline: model-name lookup, agent
// construction, runtime execution.
func (r *Runner) runProvider(ctx context.Context, providerName string, req Request, input string) (string, error) {
	modelName, ok := req.ModelNames[providerName]
	if !ok {
		return "", &MissingModelNameError{Provider: providerName}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	ag, err := agent.New(providerName, modelName, req.SystemPrompt, func(o *agent.Options) {
		o.APIKey = req.APIKeys[providerName]
		o.Tools = req.Tools
		o.Temperature = temperature
	})
	if err != nil {
		return "", err
	}

	result, err := r.runtime.Run(ctx, ag, input)
	if err != nil {
		return "", err
	}
	return result.FinalOutput, nil
}

// firstUserMessage returns the content of the first "user" role entry, or ""
// when none exists. An absent user message is not an error; providers simply
// receive an empty prompt.
func firstUserMessage(messages []Message) string {
	for _, msg := range messages {
		if msg.Role == "user" {
			return msg.Content
		}
	}
	return ""
}
