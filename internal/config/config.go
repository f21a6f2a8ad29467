package config

// Config represents the full application configuration.
type Config struct {
	GitHub        GitHubConfig        `yaml:"github"`
	Anthropic     AnthropicConfig     `yaml:"anthropic"`
	Store         StoreConfig         `yaml:"store"`
	Output        OutputConfig        `yaml:"output"`
	Redaction     RedactionConfig     `yaml:"redaction"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GitHubConfig configures the GitHub REST API client.
type GitHubConfig struct {
	// Token is the API token used for authenticated requests. Optional;
	// unauthenticated requests work for public repositories at a lower
	// rate limit. Supports ${VAR} expansion.
	Token string `yaml:"token"`

	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string `yaml:"baseURL"`

	// Timeout is the per-request HTTP timeout (Go duration string).
	Timeout string `yaml:"timeout"`
}

// AnthropicConfig configures the answering model.
type AnthropicConfig struct {
	// APIKey authenticates against the Anthropic API. Supports ${VAR}
	// expansion; falls back to the ANTHROPIC_API_KEY environment variable.
	APIKey string `yaml:"apiKey"`

	// Model is the model identifier sent with every request.
	Model string `yaml:"model"`

	// MaxTokens caps the length of generated answers.
	MaxTokens int `yaml:"maxTokens"`

	// Temperature adjusts sampling; zero is omitted from requests.
	Temperature float64 `yaml:"temperature"`

	// BaseURL overrides the API endpoint, e.g. for a proxy.
	BaseURL string `yaml:"baseURL"`

	// Timeout is the per-request HTTP timeout (Go duration string).
	Timeout string `yaml:"timeout"`
}

// StoreConfig configures the session history persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig configures where and how reports are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Format    string `yaml:"format"` // markdown, json
}

// RedactionConfig configures secret scrubbing of repository-sourced text.
type RedactionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ObservabilityConfig configures logging, metrics, and cost tracking.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`         // debug, info, error
	Format        string `yaml:"format"`        // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"` // Redact API keys in logs
}

// MetricsConfig configures performance and cost metrics tracking.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.GitHub = chooseGitHub(base.GitHub, overlay.GitHub)
	result.Anthropic = chooseAnthropic(base.Anthropic, overlay.Anthropic)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Redaction = chooseRedaction(base.Redaction, overlay.Redaction)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseGitHub(base, overlay GitHubConfig) GitHubConfig {
	result := base
	if overlay.Token != "" {
		result.Token = overlay.Token
	}
	if overlay.BaseURL != "" {
		result.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		result.Timeout = overlay.Timeout
	}
	return result
}

func chooseAnthropic(base, overlay AnthropicConfig) AnthropicConfig {
	result := base
	if overlay.APIKey != "" {
		result.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		result.Model = overlay.Model
	}
	if overlay.MaxTokens != 0 {
		result.MaxTokens = overlay.MaxTokens
	}
	if overlay.Temperature != 0 {
		result.Temperature = overlay.Temperature
	}
	if overlay.BaseURL != "" {
		result.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		result.Timeout = overlay.Timeout
	}
	return result
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	result := base
	if overlay.Directory != "" {
		result.Directory = overlay.Directory
	}
	if overlay.Format != "" {
		result.Format = overlay.Format
	}
	return result
}

func chooseRedaction(base, overlay RedactionConfig) RedactionConfig {
	if overlay.Enabled {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base

	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}

	if overlay.Metrics.Enabled {
		result.Metrics = overlay.Metrics
	}

	return result
}
