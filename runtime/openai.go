package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"

	"github.com/modelmux/modelmux/agent"
	"github.com/modelmux/modelmux/logging"
	"github.com/modelmux/modelmux/tool"
)

// OpenAIOptions configure the OpenAI-compatible runtime.
type OpenAIOptions struct {
	// MaxToolRounds bounds the tool dispatch loop per run.
	MaxToolRounds int
	// Logger receives structured execution logs. Defaults to NoOp.
	Logger logging.Logger
}

// OpenAIRuntime executes agents through the OpenAI-compatible surface of
// their bound client. It honors the agent's API variant: the chat completions
// protocol including the function calling loop, or the responses protocol for
// plain text generation.
//
// Because every registered provider speaks this surface, one runtime instance
// serves agents bound to any of them.
type OpenAIRuntime struct {
	maxToolRounds int
	logger        logging.Logger
}

// NewOpenAIRuntime constructs an OpenAIRuntime with sensible defaults.
func NewOpenAIRuntime(optFns ...func(o *OpenAIOptions)) *OpenAIRuntime {
	opts := OpenAIOptions{
		MaxToolRounds: 8,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenAIRuntime{maxToolRounds: opts.MaxToolRounds, logger: opts.Logger}
}

// Run implements Runtime.
func (r *OpenAIRuntime) Run(ctx context.Context, ag *agent.Agent, input string) (*Result, error) {
	if ag.Binding().Variant == agent.ResponsesAPI {
		return r.runResponses(ctx, ag, input)
	}
	return r.runChatCompletions(ctx, ag, input)
}

// runChatCompletions drives the chat completions protocol, resolving tool
// calls through the agent's registered tools until the model produces a
// final text answer or the round budget is exhausted.
func (r *OpenAIRuntime) runChatCompletions(ctx context.Context, ag *agent.Agent, input string) (*Result, error) {
	b := ag.Binding()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if ag.Instructions() != "" {
		messages = append(messages, openai.SystemMessage(ag.Instructions()))
	}
	messages = append(messages, openai.UserMessage(input))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       b.Model,
		Temperature: openai.Float(b.Temperature),
	}
	if tools := ag.Tools(); len(tools) > 0 {
		params.Tools = buildToolParams(tools)
	}

	for round := 0; round <= r.maxToolRounds; round++ {
		resp, err := b.Client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no choices returned")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return &Result{FinalOutput: msg.Content}, nil
		}

		r.logger.Debug("runtime.tool_calls",
			"agent", ag.Name(),
			"provider", string(b.Provider),
			"count", len(msg.ToolCalls),
			"round", round,
		)

		params.Messages = append(params.Messages, msg.ToParam())
		for _, tc := range msg.ToolCalls {
			output := r.dispatchToolCall(ctx, ag, tc.Function.Name, tc.Function.Arguments)
			params.Messages = append(params.Messages, openai.ToolMessage(output, tc.ID))
		}
	}

	return nil, fmt.Errorf("tool dispatch did not converge within %d rounds", r.maxToolRounds)
}

// runResponses drives the responses protocol. Tool dispatch is a chat
// completions feature; agents targeting this variant get plain text
// generation with their instructions attached.
func (r *OpenAIRuntime) runResponses(ctx context.Context, ag *agent.Agent, input string) (*Result, error) {
	b := ag.Binding()

	params := responses.ResponseNewParams{
		Model:       b.Model,
		Input:       responses.ResponseNewParamsInputUnion{OfString: openai.String(input)},
		Temperature: openai.Float(b.Temperature),
	}
	if ag.Instructions() != "" {
		params.Instructions = openai.String(ag.Instructions())
	}

	resp, err := b.Client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("response creation failed: %w", err)
	}

	return &Result{FinalOutput: resp.OutputText()}, nil
}

// dispatchToolCall routes one model-requested tool call to the agent's
// registered tool. Failures are reported back to the model as text so the
// conversation can continue.
func (r *OpenAIRuntime) dispatchToolCall(ctx context.Context, ag *agent.Agent, name, rawArgs string) string {
	t, ok := ag.Tool(name)
	if !ok {
		return fmt.Sprintf("Error: tool %s is not registered with this agent", name)
	}

	args := tool.NewArguments()
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for tool %s: %v", name, err)
		}
	}

	start := time.Now()
	result, err := t.Call(ctx, args)
	if err != nil {
		r.logger.Warn("runtime.tool_call.failed", "tool", name, "error", err.Error())
		return fmt.Sprintf("Error: %v", err)
	}
	r.logger.Debug("runtime.tool_call.done", "tool", name, "duration_ms", time.Since(start).Milliseconds())

	return toText(result)
}

// buildToolParams converts the agent's tools into chat completion tool
// definitions.
func buildToolParams(tools []tool.Tool) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		params[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name(),
				Description: openai.String(t.Description()),
				Parameters:  t.Parameters(),
			},
		}
	}
	return params
}

// toText renders a tool result for the model.
func toText(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	if b, err := json.Marshal(result); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", result)
}
