// Package cliconfig loads the CLI's YAML configuration file.
package cliconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Guardrails configures the optional evaluator wrapper.
type Guardrails struct {
	// BaseURL of the hosted evaluator API. Empty disables evaluation.
	BaseURL string `yaml:"base_url"`

	// InputChecks run on user input before the agent runs.
	InputChecks []string `yaml:"input_checks"`

	// OutputChecks run on the agent's final answer.
	OutputChecks []string `yaml:"output_checks"`

	// Assertions are policy statements the answer must satisfy.
	Assertions []string `yaml:"assertions"`
}

// Config is the CLI configuration.
type Config struct {
	Model         string     `yaml:"model"`
	SystemPrompt  string     `yaml:"system_prompt"`
	MaxIterations int        `yaml:"max_iterations"`
	ParallelTools bool       `yaml:"parallel_tools"`
	Guardrails    Guardrails `yaml:"guardrails"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Model:         "gpt-4o-mini",
		SystemPrompt:  "You are a helpful assistant. Use the available tools when they help.",
		MaxIterations: 10,
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Model == "" {
		return Config{}, fmt.Errorf("config %s: model must not be empty", path)
	}
	if cfg.MaxIterations <= 0 {
		return Config{}, fmt.Errorf("config %s: max_iterations must be positive", path)
	}
	return cfg, nil
}

// LoadOrDefault loads the configuration at path, falling back to Default
// when the file does not exist. Other errors are returned.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}
