package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/ragchat/approach"
	"github.com/randalmurphal/ragchat/provider"
)

// Counter kinds.
const (
	CounterTiktoken = "tiktoken"
	CounterEstimate = "estimate"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the ragchat configuration file.
//
//	[provider]
//	provider = "azure-openai"
//	model = "gpt-35-turbo"
//	endpoint = "https://my-resource.openai.azure.com"
//	api_key_env = "AZURE_OPENAI_API_KEY"
//
//	[approach]
//	max_output_tokens = 32
//
//	[limits]
//	file = "limits.yaml"
//	watch = true
type Config struct {
	Provider provider.Config  `json:"provider" yaml:"provider" toml:"provider"`
	Approach approach.Config  `json:"approach" yaml:"approach" toml:"approach"`
	Prompt   approach.Context `json:"prompt" yaml:"prompt" toml:"prompt"`
	Limits   LimitsConfig     `json:"limits" yaml:"limits" toml:"limits"`
	Counter  CounterConfig    `json:"counter" yaml:"counter" toml:"counter"`
	Log      LogConfig        `json:"log" yaml:"log" toml:"log"`
}

// LimitsConfig selects the model limit table.
type LimitsConfig struct {
	// File is a YAML, TOML or JSON limit table merged over the defaults.
	File string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`

	// Watch reloads File when it changes.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty" toml:"watch,omitempty"`

	// Models are inline limits layered over the defaults. File entries take
	// precedence over them.
	Models map[string]int `json:"models,omitempty" yaml:"models,omitempty" toml:"models,omitempty"`
}

// CounterConfig selects the token counter.
type CounterConfig struct {
	// Kind is "tiktoken" or "estimate". Default: tiktoken.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty" jsonschema:"enum=tiktoken,enum=estimate"`

	// CacheSize bounds the count cache. 0 uses the default; negative disables it.
	CacheSize int `json:"cache_size,omitempty" yaml:"cache_size,omitempty" toml:"cache_size,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty" jsonschema:"enum=text,enum=json"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Provider: provider.DefaultConfig(),
		Counter:  CounterConfig{Kind: CounterTiktoken},
		Log:      LogConfig{Level: "info", Format: LogFormatText},
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Provider.Options != nil {
		clone.Provider.Options = maps.Clone(c.Provider.Options)
	}
	if c.Limits.Models != nil {
		clone.Limits.Models = maps.Clone(c.Limits.Models)
	}
	if c.Approach.Temperature != nil {
		clone.Approach.Temperature = approach.Float(*c.Approach.Temperature)
	}
	if c.Prompt.Temperature != nil {
		clone.Prompt.Temperature = approach.Float(*c.Prompt.Temperature)
	}
	return &clone
}

// Merge returns c with every field set in override applied on top.
// Maps are merged key by key.
func (c *Config) Merge(override *Config) *Config {
	if c == nil {
		return override.Clone()
	}
	result := c.Clone()
	if override == nil {
		return result
	}

	p := override.Provider
	setString(&result.Provider.Provider, p.Provider)
	setString(&result.Provider.Model, p.Model)
	setString(&result.Provider.Deployment, p.Deployment)
	setString(&result.Provider.Endpoint, p.Endpoint)
	setString(&result.Provider.APIKey, p.APIKey)
	setString(&result.Provider.APIKeyEnv, p.APIKeyEnv)
	if p.Timeout != 0 {
		result.Provider.Timeout = p.Timeout
	}
	for k, v := range p.Options {
		result.Provider = result.Provider.WithOption(k, v)
	}

	setString(&result.Approach.Model, override.Approach.Model)
	if override.Approach.MaxOutputTokens != 0 {
		result.Approach.MaxOutputTokens = override.Approach.MaxOutputTokens
	}
	if override.Approach.Temperature != nil {
		result.Approach.Temperature = approach.Float(*override.Approach.Temperature)
	}

	if override.Prompt.Temperature != nil {
		result.Prompt.Temperature = approach.Float(*override.Prompt.Temperature)
	}
	setString(&result.Prompt.PromptTemplate, override.Prompt.PromptTemplate)
	setString(&result.Prompt.PromptTemplatePrefix, override.Prompt.PromptTemplatePrefix)
	setString(&result.Prompt.PromptTemplateSuffix, override.Prompt.PromptTemplateSuffix)

	setString(&result.Limits.File, override.Limits.File)
	result.Limits.Watch = result.Limits.Watch || override.Limits.Watch
	if len(override.Limits.Models) > 0 {
		if result.Limits.Models == nil {
			result.Limits.Models = make(map[string]int, len(override.Limits.Models))
		}
		maps.Copy(result.Limits.Models, override.Limits.Models)
	}

	setString(&result.Counter.Kind, override.Counter.Kind)
	if override.Counter.CacheSize != 0 {
		result.Counter.CacheSize = override.Counter.CacheSize
	}

	setString(&result.Log.Level, override.Log.Level)
	setString(&result.Log.Format, override.Log.Format)
	return result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Load reads a configuration file over the defaults and applies environment
// overrides. The format follows the extension: .toml or .yaml/.yml.
// An empty path loads the first file found by Find, or just the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Find()
	}
	cfg := Default()
	if path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(file)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", displayPath(path), err)
	}
	return cfg, nil
}

func displayPath(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}

// LoadFile decodes a single configuration file without defaults, env
// overrides or validation.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// SearchPaths returns the locations Find checks, in order.
func SearchPaths() []string {
	paths := []string{"ragchat.toml", "ragchat.yaml", "ragchat.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		base := filepath.Join(dir, "ragchat")
		paths = append(paths,
			filepath.Join(base, "config.toml"),
			filepath.Join(base, "config.yaml"),
		)
	}
	return paths
}

// Find returns the first existing file from SearchPaths, or "".
func Find() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// ApplyEnv overrides fields from environment variables. Provider fields use
// provider.Config.LoadFromEnv; the rest are:
//   - RAGCHAT_MAX_OUTPUT_TOKENS
//   - RAGCHAT_TEMPERATURE
//   - RAGCHAT_LIMITS_FILE
//   - RAGCHAT_COUNTER
//   - RAGCHAT_LOG_LEVEL
//   - RAGCHAT_LOG_FORMAT
//
// Unparseable numbers are ignored.
func (c *Config) ApplyEnv() {
	c.Provider.LoadFromEnv()

	if v := os.Getenv("RAGCHAT_MAX_OUTPUT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Approach.MaxOutputTokens = n
		}
	}
	if v := os.Getenv("RAGCHAT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Approach.Temperature = approach.Float(f)
		}
	}
	setString(&c.Limits.File, os.Getenv("RAGCHAT_LIMITS_FILE"))
	setString(&c.Counter.Kind, os.Getenv("RAGCHAT_COUNTER"))
	setString(&c.Log.Level, os.Getenv("RAGCHAT_LOG_LEVEL"))
	setString(&c.Log.Format, os.Getenv("RAGCHAT_LOG_FORMAT"))
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Provider.Timeout < 0 {
		errs = append(errs, fmt.Errorf("provider.timeout must be >= 0, got %v", c.Provider.Timeout))
	}
	if c.Approach.MaxOutputTokens < 0 {
		errs = append(errs, fmt.Errorf("approach.max_output_tokens must be >= 0, got %d", c.Approach.MaxOutputTokens))
	}
	if t := c.Approach.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("approach.temperature must be within [0, 2], got %v", *t))
	}
	if c.Limits.Watch && c.Limits.File == "" {
		errs = append(errs, errors.New("limits.watch requires limits.file"))
	}
	for name, limit := range c.Limits.Models {
		if limit <= 0 {
			errs = append(errs, fmt.Errorf("limits.models[%q] must be positive, got %d", name, limit))
		}
	}
	switch c.Counter.Kind {
	case "", CounterTiktoken, CounterEstimate:
	default:
		errs = append(errs, fmt.Errorf("counter.kind must be %q or %q, got %q", CounterTiktoken, CounterEstimate, c.Counter.Kind))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.Log.Format))
	}
	return errors.Join(errs...)
}

// ModelName returns the approach model, falling back to the provider model.
func (c *Config) ModelName() string {
	if c.Approach.Model != "" {
		return c.Approach.Model
	}
	return c.Provider.Model
}

// ParseLevel maps a level name to a slog.Level. "" means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
