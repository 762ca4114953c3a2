// Package agent builds provider-agnostic agent descriptors: the bundle of
// instructions, model binding, tools and handoff targets handed to an
// execution runtime.
//
// Construction is pure — the package resolves a client through the provider
// registry but performs no network I/O. Descriptors are created fresh per
// invocation and never mutated afterwards, so they are safe to hand to
// concurrent fan-out tasks.
package agent

import (
	"github.com/openai/openai-go"

	"github.com/modelmux/modelmux/provider"
	"github.com/modelmux/modelmux/tool"
)

// APIVariant selects how the execution runtime shapes requests for a model
// binding. Both variants carry the same client, model and temperature; only
// the wire protocol used later differs.
type APIVariant int

const (
	// ChatCompletionsAPI issues requests through the chat completions surface.
	ChatCompletionsAPI APIVariant = iota
	// ResponsesAPI issues requests through the responses surface.
	ResponsesAPI
)

// String returns the variant name for logging.
func (v APIVariant) String() string {
	switch v {
	case ResponsesAPI:
		return "responses"
	default:
		return "chat_completions"
	}
}

// ModelBinding ties a provider client to a concrete model and sampling
// temperature.
type ModelBinding struct {
	Provider    provider.ID
	Client      *openai.Client
	Model       string
	Temperature float64
	Variant     APIVariant
}

// Options configures agent construction. Use functional options with New to
// override defaults.
type Options struct {
	// Name identifies the agent. Defaults to "Assistant".
	Name string
	// APIKey overrides the provider's environment credential.
	APIKey string
	// Client bypasses registry resolution and binds the agent to a
	// preconstructed client, mirroring the FromClient constructors of the
	// vendor SDK adapters. Mainly for tests and custom gateways.
	Client *openai.Client
	// Temperature is the sampling temperature. Defaults to 0.7.
	Temperature float64
	// Tools the agent may call. Later tools with a duplicate name replace
	// earlier ones in place.
	Tools []tool.Tool
	// Handoffs are agents this agent may delegate to.
	Handoffs []*Agent
	// UseResponsesAPI selects the responses wire protocol instead of chat
	// completions.
	UseResponsesAPI bool
}

// Agent is a fully resolved agent descriptor.
type Agent struct {
	name         string
	instructions string
	binding      ModelBinding
	tools        []tool.Tool
	toolIndex    map[string]int
	handoffs     []*Agent
}

// New builds an agent descriptor for the named provider and model.
//
// Credential and client resolution is delegated to provider.Resolve; its
// errors (*provider.UnsupportedProviderError, *provider.MissingCredentialError)
// are returned unchanged.
func New(providerName, modelName, instructions string, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Name:        "Assistant",
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg, err := provider.Lookup(providerName)
	if err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		client, err = provider.Resolve(providerName, opts.APIKey)
		if err != nil {
			return nil, err
		}
	}

	variant := ChatCompletionsAPI
	if opts.UseResponsesAPI {
		variant = ResponsesAPI
	}

	a := &Agent{
		name:         opts.Name,
		instructions: instructions,
		binding: ModelBinding{
			Provider:    cfg.ID,
			Client:      client,
			Model:       modelName,
			Temperature: opts.Temperature,
			Variant:     variant,
		},
		toolIndex: make(map[string]int),
		handoffs:  opts.Handoffs,
	}

	for _, t := range opts.Tools {
		a.addTool(t)
	}

	return a, nil
}

// addTool appends t, or replaces an existing tool of the same name keeping
// its position in the ordered list.
func (a *Agent) addTool(t tool.Tool) {
	if idx, exists := a.toolIndex[t.Name()]; exists {
		a.tools[idx] = t
		return
	}
	a.toolIndex[t.Name()] = len(a.tools)
	a.tools = append(a.tools, t)
}

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Instructions returns the system prompt for the agent.
func (a *Agent) Instructions() string { return a.instructions }

// Binding returns the model binding the runtime should drive.
func (a *Agent) Binding() ModelBinding { return a.binding }

// Tools returns the agent's tools in registration order.
func (a *Agent) Tools() []tool.Tool {
	tools := make([]tool.Tool, len(a.tools))
	copy(tools, a.tools)
	return tools
}

// Tool retrieves a registered tool by name.
func (a *Agent) Tool(name string) (tool.Tool, bool) {
	idx, ok := a.toolIndex[name]
	if !ok {
		return nil, false
	}
	return a.tools[idx], true
}

// Handoffs returns the agents this agent may delegate to.
func (a *Agent) Handoffs() []*Agent {
	handoffs := make([]*Agent, len(a.handoffs))
	copy(handoffs, a.handoffs)
	return handoffs
}
