// Package runtime executes agent descriptors against model provider APIs.
//
// Core goals:
//   - Hide the wire protocol (chat completions vs responses, OpenAI-compatible
//     vs native Anthropic) behind a single Runtime interface
//   - Drive the function calling loop: surface tool calls to the agent's
//     registered tools and feed results back to the model
//   - Facilitate lightweight mocking for tests (Mock)
//
// Higher layers (runner, root façade) depend only on the Runtime interface so
// execution strategies stay swappable.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/modelmux/modelmux/agent"
	"github.com/modelmux/modelmux/provider"
)

// Result is the terminal outcome of one agent run.
type Result struct {
	// FinalOutput is the model's final textual answer after any tool rounds.
	FinalOutput string
}

// Runtime runs a fully built agent descriptor against a prompt and returns
// its final output. Implementations own retries, tool dispatch and protocol
// details; callers treat them as opaque.
type Runtime interface {
	Run(ctx context.Context, ag *agent.Agent, input string) (*Result, error)
}

// Mock is a lightweight in-memory Runtime useful for tests and examples.
// Responses and failures are keyed by the agent's provider so multi-provider
// scenarios can be scripted per backend.
type Mock struct {
	defaultOutput string
	responses     map[provider.ID]string
	failures      map[provider.ID]error
	delay         time.Duration
}

// NewMock constructs a Mock that answers every run with defaultOutput.
func NewMock(defaultOutput string) *Mock {
	return &Mock{
		defaultOutput: defaultOutput,
		responses:     make(map[provider.ID]string),
		failures:      make(map[provider.ID]error),
	}
}

// RespondWith registers a canned output for one provider.
func (m *Mock) RespondWith(id provider.ID, output string) *Mock {
	m.responses[id] = output
	return m
}

// FailWith makes runs for one provider return err.
func (m *Mock) FailWith(id provider.ID, err error) *Mock {
	m.failures[id] = err
	return m
}

// WithDelay makes every run sleep for d before answering, for exercising
// concurrent execution paths.
func (m *Mock) WithDelay(d time.Duration) *Mock {
	m.delay = d
	return m
}

// Run implements Runtime.
func (m *Mock) Run(ctx context.Context, ag *agent.Agent, input string) (*Result, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	id := ag.Binding().Provider
	if err, ok := m.failures[id]; ok {
		return nil, err
	}
	if output, ok := m.responses[id]; ok {
		return &Result{FinalOutput: output}, nil
	}
	if m.defaultOutput != "" {
		return &Result{FinalOutput: m.defaultOutput}, nil
	}
	return &Result{FinalOutput: fmt.Sprintf("Mock response to: %s", input)}, nil
}
