// Package config loads rpsduel settings from an HCL file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/lox/rpsduel/internal/commentary"
	"github.com/lox/rpsduel/internal/move"
)

// ErrMissingAPIKey is returned when no credential for the text-generation
// service is present in the environment.
var ErrMissingAPIKey = errors.New("missing API key: set RPSDUEL_API_KEY, GEMINI_API_KEY or API_KEY")

// Config represents the complete configuration
type Config struct {
	Game       *GameSettings       `hcl:"game,block"`
	Commentary *CommentarySettings `hcl:"commentary,block"`
	Server     *ServerSettings     `hcl:"server,block"`
	Log        *LogSettings        `hcl:"log,block"`

	// APIKey never comes from the file.
	APIKey string
}

// GameSettings controls the round engine
type GameSettings struct {
	DecisionDelayMs int    `hcl:"decision_delay_ms,optional"`
	Locale          string `hcl:"locale,optional"`
	Seed            *int64 `hcl:"seed,optional"`
}

// CommentarySettings controls the text-generation client
type CommentarySettings struct {
	BaseURL     string   `hcl:"base_url,optional"`
	Model       string   `hcl:"model,optional"`
	TimeoutMs   int      `hcl:"timeout_ms,optional"`
	Temperature *float64 `hcl:"temperature,optional"`
	MaxTokens   int      `hcl:"max_tokens,optional"`
}

// ServerSettings controls the WebSocket server
type ServerSettings struct {
	Address string `hcl:"address,optional"`
}

// LogSettings controls logging
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// Environment lists the variables read at startup. Later API key variables
// are fallbacks for earlier ones.
type Environment struct {
	APIKey       string `envconfig:"RPSDUEL_API_KEY"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	LegacyAPIKey string `envconfig:"API_KEY"`
	BaseURL      string `envconfig:"RPSDUEL_BASE_URL"`
	Model        string `envconfig:"RPSDUEL_MODEL"`
	Locale       string `envconfig:"RPSDUEL_LOCALE"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Game: &GameSettings{
			DecisionDelayMs: 1500,
			Locale:          string(move.DefaultLocale),
		},
		Commentary: &CommentarySettings{
			BaseURL:     commentary.DefaultBaseURL,
			Model:       commentary.DefaultModel,
			TimeoutMs:   5000,
			Temperature: ptr(1.0),
		},
		Server: &ServerSettings{
			Address: ":8080",
		},
		Log: &LogSettings{
			Level: "info",
			File:  "rpsduel.log",
		},
	}
}

// LoadFile loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadFile(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Game == nil {
		c.Game = defaults.Game
	}
	if c.Game.DecisionDelayMs == 0 {
		c.Game.DecisionDelayMs = defaults.Game.DecisionDelayMs
	}
	if c.Game.Locale == "" {
		c.Game.Locale = defaults.Game.Locale
	}

	if c.Commentary == nil {
		c.Commentary = defaults.Commentary
	}
	if c.Commentary.BaseURL == "" {
		c.Commentary.BaseURL = defaults.Commentary.BaseURL
	}
	if c.Commentary.Model == "" {
		c.Commentary.Model = defaults.Commentary.Model
	}
	if c.Commentary.TimeoutMs == 0 {
		c.Commentary.TimeoutMs = defaults.Commentary.TimeoutMs
	}
	if c.Commentary.Temperature == nil {
		c.Commentary.Temperature = defaults.Commentary.Temperature
	}

	if c.Server == nil {
		c.Server = defaults.Server
	}
	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}

	if c.Log == nil {
		c.Log = defaults.Log
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = defaults.Log.File
	}
}

// LoadDotEnv loads variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func LoadDotEnv(filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(filename); err != nil {
		return fmt.Errorf("failed to load %s: %w", filename, err)
	}
	return nil
}

// ApplyEnv reads the environment into the configuration. Set variables
// override the file.
func (c *Config) ApplyEnv() error {
	var env Environment
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	for _, key := range []string{env.APIKey, env.GeminiAPIKey, env.LegacyAPIKey} {
		if key != "" {
			c.APIKey = key
			break
		}
	}
	if env.BaseURL != "" {
		c.Commentary.BaseURL = env.BaseURL
	}
	if env.Model != "" {
		c.Commentary.Model = env.Model
	}
	if env.Locale != "" {
		c.Game.Locale = env.Locale
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Game.DecisionDelayMs <= 0 {
		return fmt.Errorf("decision delay must be positive")
	}
	if c.Commentary.TimeoutMs <= 0 {
		return fmt.Errorf("commentary timeout must be positive")
	}
	if t := c.Commentary.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("commentary temperature must be between 0 and 2")
	}
	if c.Commentary.MaxTokens < 0 {
		return fmt.Errorf("max tokens cannot be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

// RequireAPIKey fails when no credential was found.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// DecisionDelay returns the configured decision delay
func (c *Config) DecisionDelay() time.Duration {
	return time.Duration(c.Game.DecisionDelayMs) * time.Millisecond
}

// CommentaryTimeout returns the configured commentary request timeout
func (c *Config) CommentaryTimeout() time.Duration {
	return time.Duration(c.Commentary.TimeoutMs) * time.Millisecond
}

// Locale returns the closest supported locale for the configured tag
func (c *Config) Locale() move.Locale {
	return move.MatchLocale(c.Game.Locale)
}

// CommentaryConfig builds the client configuration
func (c *Config) CommentaryConfig() commentary.Config {
	temperature := 1.0
	if c.Commentary.Temperature != nil {
		temperature = *c.Commentary.Temperature
	}
	return commentary.Config{
		APIKey:      c.APIKey,
		BaseURL:     c.Commentary.BaseURL,
		Model:       c.Commentary.Model,
		Locale:      c.Locale(),
		Temperature: float32(temperature),
		MaxTokens:   c.Commentary.MaxTokens,
	}
}

func ptr[T any](v T) *T {
	return &v
}
