package config

// Config is the root configuration structure.
type Config struct {
	OpenAI   OpenAIConfig   `mapstructure:"openai" yaml:"openai"`
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
}

// OpenAIConfig holds settings for the batch provider client.
type OpenAIConfig struct {
	APIKey           string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL          string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Model            string `mapstructure:"model" yaml:"model"`
	CompletionWindow string `mapstructure:"completion_window" yaml:"completion_window"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// DefaultsConfig holds defaults applied to encoding, listings and rendering.
type DefaultsConfig struct {
	MaxBatches int    `mapstructure:"max_batches" yaml:"max_batches"`
	TimeZone   string `mapstructure:"time_zone" yaml:"time_zone"`
	IDPrefix   string `mapstructure:"id_prefix" yaml:"id_prefix,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIKey:           "${OPENAI_API_KEY}",
			Model:            "gpt-4o",
			CompletionWindow: "24h",
			TimeoutSeconds:   300,
			MaxRetries:       3,
		},
		Defaults: DefaultsConfig{
			MaxBatches: 4,
			TimeZone:   "UTC",
		},
	}
}
