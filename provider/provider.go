// Package provider maintains the static registry of supported LLM vendors and
// constructs OpenAI-compatible clients bound to each vendor's REST surface.
//
// Every supported vendor (OpenAI, Claude, Gemini, DeepSeek) exposes an
// OpenAI-compatible chat endpoint, so a single client type from the official
// OpenAI SDK serves all of them; only the base URL and credential differ.
// The registry is built once at package init and never mutated, making it
// safe to share across concurrent fan-out tasks without locking.
package provider

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ID identifies a supported LLM vendor.
type ID string

// Supported provider identifiers.
const (
	OpenAI   ID = "openai"
	Claude   ID = "claude"
	Gemini   ID = "gemini"
	DeepSeek ID = "deepseek"
)

// Config describes how to reach one provider: the fixed base URL of its
// OpenAI-compatible surface and the environment variable consulted when no
// explicit API key is supplied. Configs are immutable.
type Config struct {
	ID            ID
	BaseURL       string
	CredentialEnv string
}

// registry is process-wide static state; built once, read-only afterwards.
var registry = map[ID]Config{
	OpenAI:   {ID: OpenAI, BaseURL: "https://api.openai.com/v1/", CredentialEnv: "OPENAI_API_KEY"},
	Claude:   {ID: Claude, BaseURL: "https://api.anthropic.com/v1/", CredentialEnv: "ANTHROPIC_API_KEY"},
	Gemini:   {ID: Gemini, BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai/", CredentialEnv: "GEMINI_API_KEY"},
	DeepSeek: {ID: DeepSeek, BaseURL: "https://api.deepseek.com/v1/", CredentialEnv: "DEEPSEEK_API_KEY"},
}

// UnsupportedProviderError reports a provider identifier outside the
// registered set. It is returned to the caller unwrapped: an unknown provider
// is a usage mistake, not a transient condition.
type UnsupportedProviderError struct {
	Provider  string   `json:"provider"`
	Supported []string `json:"supported"`
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %s. Supported providers are: %s", e.Provider, strings.Join(e.Supported, ", "))
}

// MissingCredentialError reports that neither an explicit API key nor the
// provider's environment variable yielded a usable credential.
type MissingCredentialError struct {
	Provider ID     `json:"provider"`
	EnvVar   string `json:"env_var"`
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("API key not provided and %s environment variable not set", e.EnvVar)
}

// Supported returns the registered provider names in sorted order.
func Supported() []string {
	names := make([]string, 0, len(registry))
	for id := range registry {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a provider name (case-insensitive) to its Config.
func Lookup(name string) (Config, error) {
	cfg, ok := registry[ID(strings.ToLower(name))]
	if !ok {
		return Config{}, &UnsupportedProviderError{Provider: name, Supported: Supported()}
	}
	return cfg, nil
}

// Resolve constructs a client for the named provider.
//
// Credential resolution order: the explicit apiKey argument if non-empty,
// else the provider's environment variable. If neither yields a value the
// call fails with *MissingCredentialError.
//
// The returned client is stateless and bound to the provider's fixed base
// URL; no network call happens here.
func Resolve(name, apiKey string) (*openai.Client, error) {
	cfg, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	key := apiKey
	if key == "" {
		key = os.Getenv(cfg.CredentialEnv)
	}
	if key == "" {
		return nil, &MissingCredentialError{Provider: cfg.ID, EnvVar: cfg.CredentialEnv}
	}

	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(key),
	)

	return &client, nil
}
