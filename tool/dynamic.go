package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Definition is the declarative JSON form of a tool.
//
// Expected shape:
//
//	{
//	  "name": "get_weather",
//	  "description": "Get the current weather for a city",
//	  "parameters": {
//	    "type": "object",
//	    "properties": {
//	      "city": {"type": "string", "description": "City name"}
//	    },
//	    "required": ["city"]
//	  },
//	  "callback_url": "https://api.example.com/tools/get_weather"
//	}
//
// Only name is mandatory. A definition is immutable once turned into a tool.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
}

// DynamicOptions configures tools produced by the dynamic factory.
type DynamicOptions struct {
	// HTTPClient issues callback requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// DynamicTool is a callable tool built from a Definition.
//
// Invocation has two mutually exclusive behaviors:
//   - With a callback URL the arguments are POSTed to the remote endpoint and
//     the response body is returned verbatim. Transport or HTTP-status
//     failures are converted to a descriptive result string; they never
//     surface as errors, so one misbehaving tool endpoint cannot abort an
//     agent run.
//   - Without one the tool returns a deterministic echo of the arguments it
//     received, which is useful for dry runs and schema exploration.
type DynamicTool struct {
	name        string
	description string
	parameters  map[string]any
	callbackURL string
	httpClient  *http.Client
}

// callbackPayload is the wire form POSTed to a tool's callback endpoint.
type callbackPayload struct {
	Name       string     `json:"name"`
	Parameters *Arguments `json:"parameters"`
}

// FromDefinition builds a DynamicTool from a single definition.
//
// The definition must carry a name; description defaults to the empty string
// and parameters to an empty object schema. Argument validation against the
// schema is left to the execution layer.
func FromDefinition(def Definition, optFns ...func(o *DynamicOptions)) (*DynamicTool, error) {
	if def.Name == "" {
		return nil, &InvalidDefinitionError{Reason: "definition must include a 'name' field"}
	}

	opts := DynamicOptions{HTTPClient: http.DefaultClient}
	for _, fn := range optFns {
		fn(&opts)
	}

	parameters := def.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}

	return &DynamicTool{
		name:        def.Name,
		description: def.Description,
		parameters:  parameters,
		callbackURL: def.CallbackURL,
		httpClient:  opts.HTTPClient,
	}, nil
}

// FromDefinitions builds tools from a slice of definitions preserving input
// order. The first invalid definition aborts the whole call; no partial
// results are returned.
func FromDefinitions(defs []Definition, optFns ...func(o *DynamicOptions)) ([]Tool, error) {
	tools := make([]Tool, 0, len(defs))
	for _, def := range defs {
		t, err := FromDefinition(def, optFns...)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// FromJSON builds tools from raw JSON text holding either a list of
// definitions or a single definition object (treated as a one-element list).
// Malformed JSON fails with *InvalidJSONError.
func FromJSON(raw []byte, optFns ...func(o *DynamicOptions)) ([]Tool, error) {
	var defs []Definition
	if err := json.Unmarshal(raw, &defs); err != nil {
		var single Definition
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return nil, &InvalidJSONError{Err: err2}
		}
		defs = []Definition{single}
	}
	return FromDefinitions(defs, optFns...)
}

// Name returns the tool name from the definition.
func (t *DynamicTool) Name() string { return t.name }

// Description returns the tool description from the definition.
func (t *DynamicTool) Description() string { return t.description }

// Parameters returns the JSON schema from the definition.
func (t *DynamicTool) Parameters() map[string]any { return t.parameters }

// CallbackURL returns the remote endpoint this tool forwards to, or "" for
// local echo tools.
func (t *DynamicTool) CallbackURL() string { return t.callbackURL }

// Call executes the tool. It always returns a string result and a nil error:
// callback failures are reported inside the result text so the model can see
// them, matching the containment policy of the fan-out layer.
func (t *DynamicTool) Call(ctx context.Context, args *Arguments) (any, error) {
	if t.callbackURL != "" {
		return t.invokeCallback(ctx, args), nil
	}
	return t.echo(args), nil
}

// invokeCallback POSTs {"name": ..., "parameters": ...} to the callback URL
// and returns the response body text, or a failure description.
func (t *DynamicTool) invokeCallback(ctx context.Context, args *Arguments) string {
	body, err := json.Marshal(callbackPayload{Name: t.name, Parameters: args})
	if err != nil {
		return fmt.Sprintf("Error calling %s: %v", t.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("Error calling %s: %v", t.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Error calling %s: %v", t.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error calling %s: %v", t.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Sprintf("Error calling %s: callback returned status %d: %s", t.name, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return string(respBody)
}

// echo renders the received arguments in insertion order.
func (t *DynamicTool) echo(args *Arguments) string {
	pairs := make([]string, 0, args.Len())
	for _, key := range args.Keys() {
		value, _ := args.Get(key)
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, value))
	}
	return fmt.Sprintf("Tool %s called with parameters: %s", t.name, strings.Join(pairs, ", "))
}
