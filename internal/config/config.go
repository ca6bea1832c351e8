// Package config loads the optional YAML config file and validates it
// against an embedded CUE schema before use.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config holds application settings.
type Config struct {
	// Database is the path to the SQLite slot store.
	Database string `yaml:"database"`

	// Currency is the default currency code for new orders.
	Currency string `yaml:"currency"`

	// Extract configures the AI extraction collaborator.
	Extract Extract `yaml:"extract"`
}

// Extract configures the text-extraction endpoint.
type Extract struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `yaml:"api_key_env"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: "seguido.db",
		Currency: "EUR",
		Extract: Extract{
			Endpoint:  "https://generativelanguage.googleapis.com/v1beta",
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
	}
}

// Load reads and validates the config file at path, layering its values
// over the defaults. An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := validate(data); err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// validate checks the raw YAML against the embedded CUE schema.
// Validation happens on the untyped document so unknown fields and
// wrong-typed values are reported with their config-file names.
func validate(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if doc == nil {
		return nil
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config for validation: %w", err)
	}

	if err := schema.Unify(value).Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
