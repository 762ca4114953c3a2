// Package config loads fan-out manifests from YAML. A manifest declares
// which providers to target, the model bound to each, optional inline
// credentials, shared tool definitions and the system prompt, so a fan-out
// call can be driven from a file instead of hand-built request structs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/modelmux/modelmux/provider"
	"github.com/modelmux/modelmux/runner"
	"github.com/modelmux/modelmux/tool"
)

// ProviderEntry configures one provider in a manifest.
type ProviderEntry struct {
	Model string `yaml:"model"`
	// APIKey optionally inlines a credential; prefer the provider's
	// environment variable for anything beyond local experiments.
	APIKey string `yaml:"api_key,omitempty"`
	// Enabled defaults to true; set false to keep an entry without
	// dispatching to it.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// ToolEntry is the YAML form of a declarative tool definition.
type ToolEntry struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Parameters  map[string]any `yaml:"parameters,omitempty"`
	CallbackURL string         `yaml:"callback_url,omitempty"`
}

// Config is the top-level fan-out manifest.
type Config struct {
	SystemPrompt string                   `yaml:"system_prompt"`
	Temperature  float64                  `yaml:"temperature,omitempty"`
	Providers    map[string]ProviderEntry `yaml:"providers"`
	// Tools holds declarative tool definitions shared by every agent.
	Tools []ToolEntry `yaml:"tools,omitempty"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks provider names against the registry and requires a model
// for every enabled entry.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("config: providers list is empty")
	}
	for name, entry := range c.Providers {
		if _, err := provider.Lookup(name); err != nil {
			return fmt.Errorf("config: provider %q: %w", name, err)
		}
		if entry.enabled() && entry.Model == "" {
			return fmt.Errorf("config: provider %q: model is required", name)
		}
	}
	return nil
}

func (e ProviderEntry) enabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Request materializes a runner.Request for the given conversation.
// Disabled providers are skipped; declarative tools are instantiated through
// the dynamic tool factory.
func (c *Config) Request(messages []runner.Message) (runner.Request, error) {
	req := runner.Request{
		SystemPrompt: c.SystemPrompt,
		Messages:     messages,
		ModelNames:   make(map[string]string),
		APIKeys:      make(map[string]string),
		Temperature:  c.Temperature,
	}

	for name, entry := range c.Providers {
		if !entry.enabled() {
			continue
		}
		req.Providers = append(req.Providers, name)
		req.ModelNames[name] = entry.Model
		if entry.APIKey != "" {
			req.APIKeys[name] = entry.APIKey
		}
	}

	if len(c.Tools) > 0 {
		defs := make([]tool.Definition, len(c.Tools))
		for i, entry := range c.Tools {
			defs[i] = tool.Definition{
				Name:        entry.Name,
				Description: entry.Description,
				Parameters:  entry.Parameters,
				CallbackURL: entry.CallbackURL,
			}
		}
		tools, err := tool.FromDefinitions(defs)
		if err != nil {
			return runner.Request{}, fmt.Errorf("config: tools: %w", err)
		}
		req.Tools = tools
	}

	return req, nil
}
