package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/modelmux/modelmux/agent"
	"github.com/modelmux/modelmux/logging"
	"github.com/modelmux/modelmux/tool"
)

// AnthropicOptions configure the native Anthropic runtime.
type AnthropicOptions struct {
	// APIKey for the Messages API. Defaults to the SDK's environment lookup.
	APIKey string
	// Client overrides construction entirely, mainly for tests.
	Client *anthropic.Client
	// MaxTokens caps the response length. Defaults to 4096.
	MaxTokens int64
	// MaxToolRounds bounds the tool dispatch loop per run.
	MaxToolRounds int
	// Logger receives structured execution logs. Defaults to NoOp.
	Logger logging.Logger
}

// AnthropicRuntime executes agents through Anthropic's first-party Messages
// API instead of the OpenAI-compatible shim. Useful when a caller wants
// Claude-specific features the compatibility surface does not expose.
//
// The agent's model binding still supplies model name and temperature; the
// binding's OpenAI-compatible client is ignored here.
type AnthropicRuntime struct {
	client        *anthropic.Client
	maxTokens     int64
	maxToolRounds int
	logger        logging.Logger
}

// NewAnthropicRuntime constructs an AnthropicRuntime using the official client.
func NewAnthropicRuntime(optFns ...func(o *AnthropicOptions)) *AnthropicRuntime {
	opts := AnthropicOptions{
		MaxTokens:     4096,
		MaxToolRounds: 8,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		var clientOpts []option.RequestOption
		if opts.APIKey != "" {
			clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
		}
		c := anthropic.NewClient(clientOpts...)
		client = &c
	}

	return &AnthropicRuntime{
		client:        client,
		maxTokens:     opts.MaxTokens,
		maxToolRounds: opts.MaxToolRounds,
		logger:        opts.Logger,
	}
}

// Run implements Runtime.
func (r *AnthropicRuntime) Run(ctx context.Context, ag *agent.Agent, input string) (*Result, error) {
	b := ag.Binding()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.Model),
		MaxTokens:   r.maxTokens,
		Temperature: anthropic.Float(b.Temperature),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(input))},
	}
	if ag.Instructions() != "" {
		params.System = []anthropic.TextBlockParam{{Text: ag.Instructions()}}
	}
	if tools := ag.Tools(); len(tools) > 0 {
		params.Tools = buildAnthropicTools(tools)
	}

	for round := 0; round <= r.maxToolRounds; round++ {
		resp, err := r.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("anthropic api error: %w", err)
		}

		text, toolUses := splitContent(resp)
		if len(toolUses) == 0 {
			return &Result{FinalOutput: text}, nil
		}

		r.logger.Debug("runtime.tool_calls",
			"agent", ag.Name(),
			"provider", string(b.Provider),
			"count", len(toolUses),
			"round", round,
		)

		params.Messages = append(params.Messages, resp.ToParam())
		results := make([]anthropic.ContentBlockParamUnion, 0, len(toolUses))
		for _, tu := range toolUses {
			output := r.dispatchToolUse(ctx, ag, tu)
			results = append(results, anthropic.NewToolResultBlock(tu.ID, output, false))
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(results...))
	}

	return nil, fmt.Errorf("tool dispatch did not converge within %d rounds", r.maxToolRounds)
}

// toolUse is the subset of a tool_use block the dispatcher needs.
type toolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// splitContent separates the response's text from any tool_use blocks.
func splitContent(resp *anthropic.Message) (string, []toolUse) {
	var text string
	var uses []toolUse
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "tool_use":
			tb := block.AsToolUse()
			var input json.RawMessage
			if tb.Input != nil {
				if b, err := json.Marshal(tb.Input); err == nil {
					input = b
				}
			}
			uses = append(uses, toolUse{ID: tb.ID, Name: tb.Name, Input: input})
		}
	}
	return text, uses
}

// dispatchToolUse routes one tool_use block to the agent's registered tool.
// Failures are reported back to the model as text.
func (r *AnthropicRuntime) dispatchToolUse(ctx context.Context, ag *agent.Agent, tu toolUse) string {
	t, ok := ag.Tool(tu.Name)
	if !ok {
		return fmt.Sprintf("Error: tool %s is not registered with this agent", tu.Name)
	}

	args := tool.NewArguments()
	if len(tu.Input) > 0 {
		if err := json.Unmarshal(tu.Input, args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for tool %s: %v", tu.Name, err)
		}
	}

	result, err := t.Call(ctx, args)
	if err != nil {
		r.logger.Warn("runtime.tool_call.failed", "tool", tu.Name, "error", err.Error())
		return fmt.Sprintf("Error: %v", err)
	}
	return toText(result)
}

// buildAnthropicTools converts the agent's tools to the Messages API format.
func buildAnthropicTools(tools []tool.Tool) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		params := t.Parameters()
		if properties, exists := params["properties"]; exists {
			inputSchema.Properties = properties
		}
		if required, exists := params["required"]; exists {
			switch req := required.(type) {
			case []string:
				inputSchema.Required = req
			case []any:
				for _, v := range req {
					if s, ok := v.(string); ok {
						inputSchema.Required = append(inputSchema.Required, s)
					}
				}
			}
		}
		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, t.Name())
	}
	return anthropicTools
}
