// Package config loads the engine configuration from a YAML file with
// environment-variable overrides for provider credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Providers Providers `yaml:"providers"`
	Timeouts  Timeouts  `yaml:"timeouts"`
	API       API       `yaml:"api"`
}

type Providers struct {
	LMStudio LMStudio `yaml:"lm_studio"`
	OpenAI   OpenAI   `yaml:"openai"`
	Gemini   Gemini   `yaml:"gemini"`
}

type LMStudio struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type OpenAI struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	RateLimit int    `yaml:"rate_limit"` // Requests per minute, 0 = unlimited
}

type Gemini struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	RateLimit int    `yaml:"rate_limit"` // Requests per minute, 0 = unlimited
}

type Timeouts struct {
	AnalysisSeconds       int `yaml:"analysis_seconds"`
	EnhancementSeconds    int `yaml:"enhancement_seconds"`
	PrioritizationSeconds int `yaml:"prioritization_seconds"`
}

type API struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	AuthKey string `yaml:"auth_key"`
}

// Default returns a configuration with no providers: the engine runs
// rules-only. Environment overrides still apply.
func Default() *Config {
	cfg := &Config{}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from path. A missing file is not an error, since
// the engine is fully functional without providers: defaults are returned
// after an example config is written for next time.
func Load(path string) (*Config, error) {
	// Expand home directory
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeExampleConfig(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&config)
	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// applyEnv overlays provider credentials from the environment. The variable
// names match the original deployment convention.
func applyEnv(cfg *Config) {
	if v := os.Getenv("LM_STUDIO_BASE_URL"); v != "" {
		cfg.Providers.LMStudio.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Providers.Gemini.APIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Providers.LMStudio.Model == "" {
		cfg.Providers.LMStudio.Model = "local-model"
	}
	if cfg.Providers.OpenAI.Model == "" {
		cfg.Providers.OpenAI.Model = "gpt-3.5-turbo"
	}
	if cfg.Providers.OpenAI.RateLimit == 0 {
		cfg.Providers.OpenAI.RateLimit = 20
	}
	if cfg.Providers.Gemini.Model == "" {
		cfg.Providers.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.Providers.Gemini.RateLimit == 0 {
		cfg.Providers.Gemini.RateLimit = 10 // Free tier: 10 RPM
	}

	if cfg.Timeouts.AnalysisSeconds == 0 {
		cfg.Timeouts.AnalysisSeconds = 30
	}
	if cfg.Timeouts.EnhancementSeconds == 0 {
		cfg.Timeouts.EnhancementSeconds = 20
	}
	if cfg.Timeouts.PrioritizationSeconds == 0 {
		cfg.Timeouts.PrioritizationSeconds = 25
	}

	if cfg.API.Port == 0 {
		cfg.API.Port = 8081
	}
}

func validate(cfg *Config) error {
	if cfg.Timeouts.AnalysisSeconds < 0 || cfg.Timeouts.EnhancementSeconds < 0 || cfg.Timeouts.PrioritizationSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if cfg.API.Port < 0 || cfg.API.Port > 65535 {
		return fmt.Errorf("api.port must be a valid port number")
	}
	return nil
}

func writeExampleConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	exampleConfig := `# Context Engine Configuration
#
# All providers are optional. With none configured the engine falls back to
# its built-in rule-based analyzer.

providers:
  # Local LM Studio (or any OpenAI-compatible) model server
  lm_studio:
    base_url: ""          # e.g. http://localhost:1234
    model: local-model

  openai:
    api_key: ""           # or set OPENAI_API_KEY
    model: gpt-3.5-turbo
    rate_limit: 20        # requests per minute

  gemini:
    api_key: ""           # or set GEMINI_API_KEY
    model: gemini-2.5-flash
    rate_limit: 10

# Per-operation provider timeout budgets
timeouts:
  analysis_seconds: 30
  enhancement_seconds: 20
  prioritization_seconds: 25

api:
  enabled: false
  port: 8081
  auth_key: ""            # empty disables Bearer auth
`

	if err := os.WriteFile(path, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
