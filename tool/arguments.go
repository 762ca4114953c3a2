package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Arguments is an ordered set of named tool arguments.
//
// Go maps do not preserve insertion order, but tool invocations need it:
// the local echo result and the callback POST body must list arguments in
// the order they were supplied (for JSON input, document order). Arguments
// therefore keeps a key slice alongside the value map.
//
// The zero value is not usable; construct with NewArguments.
type Arguments struct {
	keys   []string
	values map[string]any
}

// NewArguments returns an empty argument set.
func NewArguments() *Arguments {
	return &Arguments{values: make(map[string]any)}
}

// Set stores a value under key, appending the key on first insertion.
// Re-setting an existing key replaces the value and keeps its position.
// Set returns the receiver to allow chained construction.
func (a *Arguments) Set(key string, value any) *Arguments {
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
	return a
}

// Get returns the value stored under key.
func (a *Arguments) Get(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the argument names in insertion order.
func (a *Arguments) Keys() []string {
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

// Len returns the number of arguments.
func (a *Arguments) Len() int { return len(a.keys) }

// Map returns the arguments as a plain map for schema validation and for
// handing to functions that do not care about ordering.
func (a *Arguments) Map() map[string]any {
	m := make(map[string]any, len(a.values))
	for k, v := range a.values {
		m[k] = v
	}
	return m
}

// UnmarshalJSON decodes a JSON object preserving its document key order.
func (a *Arguments) UnmarshalJSON(data []byte) error {
	a.keys = nil
	a.values = make(map[string]any)

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("arguments must be a JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in arguments object", keyTok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		a.Set(key, value)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the arguments as a JSON object in insertion order.
func (a *Arguments) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(a.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
