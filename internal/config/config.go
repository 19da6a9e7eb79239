// Package config provides configuration management for ks-email-parser using
// Viper for loading from files, environment variables, and command-line flags.
//
// Values are read from .ks-email-parser.yml (or the file named by
// KS_EMAIL_PARSER_CONFIG_FILE), overridden by KS_EMAIL_PARSER_<SECTION>_<KEY>
// environment variables and finally by flags bound in the cmd package.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/logging"
	"github.com/marykravets/ks-email-parser/internal/validation"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "KS_EMAIL_PARSER"
	// FileName is the default configuration file.
	FileName = ".ks-email-parser.yml"
	// FileEnv names a configuration file outside the working directory.
	FileEnv = EnvPrefix + "_CONFIG_FILE"
)

type Config struct {
	Paths        PathsConfig        `yaml:"paths" mapstructure:"paths"`
	Render       RenderConfig       `yaml:"render" mapstructure:"render"`
	Placeholders PlaceholdersConfig `yaml:"placeholders" mapstructure:"placeholders"`
	Build        BuildConfig        `yaml:"build" mapstructure:"build"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

type PathsConfig struct {
	Source      string `yaml:"source" mapstructure:"source"`
	Destination string `yaml:"destination" mapstructure:"destination"`
	Templates   string `yaml:"templates" mapstructure:"templates"`
	Pattern     string `yaml:"pattern" mapstructure:"pattern"`
}

type RenderConfig struct {
	Images      string   `yaml:"images" mapstructure:"images"`
	RightToLeft []string `yaml:"right_to_left" mapstructure:"right_to_left"`
	Strict      bool     `yaml:"strict" mapstructure:"strict"`
	TextIgnore  []string `yaml:"text_ignore" mapstructure:"text_ignore"`
	Sanitize    bool     `yaml:"sanitize" mapstructure:"sanitize"`
}

type PlaceholdersConfig struct {
	CanonicalLocale string `yaml:"canonical_locale" mapstructure:"canonical_locale"`
	CacheSize       int    `yaml:"cache_size" mapstructure:"cache_size"`
}

type BuildConfig struct {
	Workers      int  `yaml:"workers" mapstructure:"workers"`
	WriteHTML    bool `yaml:"write_html" mapstructure:"write_html"`
	WriteText    bool `yaml:"write_text" mapstructure:"write_text"`
	WriteSubject bool `yaml:"write_subject" mapstructure:"write_subject"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Source:      "src",
			Destination: "target",
			Templates:   "templates_html",
			Pattern:     "{locale}/{name}.xml",
		},
		Render: RenderConfig{
			RightToLeft: []string{"ar", "he"},
			Strict:      true,
			TextIgnore:  []string{},
		},
		Placeholders: PlaceholdersConfig{
			CanonicalLocale: "en",
			CacheSize:       16,
		},
		Build: BuildConfig{
			Workers:      runtime.NumCPU(),
			WriteHTML:    true,
			WriteText:    true,
			WriteSubject: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers the defaults with viper so environment overrides of
// every key are picked up by Unmarshal.
func SetDefaults() {
	d := Default()
	viper.SetDefault("paths.source", d.Paths.Source)
	viper.SetDefault("paths.destination", d.Paths.Destination)
	viper.SetDefault("paths.templates", d.Paths.Templates)
	viper.SetDefault("paths.pattern", d.Paths.Pattern)
	viper.SetDefault("render.images", d.Render.Images)
	viper.SetDefault("render.right_to_left", d.Render.RightToLeft)
	viper.SetDefault("render.strict", d.Render.Strict)
	viper.SetDefault("render.text_ignore", d.Render.TextIgnore)
	viper.SetDefault("render.sanitize", d.Render.Sanitize)
	viper.SetDefault("placeholders.canonical_locale", d.Placeholders.CanonicalLocale)
	viper.SetDefault("placeholders.cache_size", d.Placeholders.CacheSize)
	viper.SetDefault("build.workers", d.Build.Workers)
	viper.SetDefault("build.write_html", d.Build.WriteHTML)
	viper.SetDefault("build.write_text", d.Build.WriteText)
	viper.SetDefault("build.write_subject", d.Build.WriteSubject)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// BindEnv wires KS_EMAIL_PARSER_<SECTION>_<KEY> overrides.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func Load() (*Config, error) {
	SetDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrorTypeConfig, perrors.ErrCodeConfigInvalid, "decode configuration")
	}

	// Comma separated lists arrive as a single element from the environment
	config.Render.RightToLeft = splitList(config.Render.RightToLeft)
	config.Render.TextIgnore = splitList(config.Render.TextIgnore)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func splitList(values []string) []string {
	out := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	paths := map[string]string{
		"paths.source":      config.Paths.Source,
		"paths.destination": config.Paths.Destination,
		"paths.templates":   config.Paths.Templates,
	}
	for _, field := range []string{"paths.source", "paths.destination", "paths.templates"} {
		if err := validation.ValidatePath(paths[field]); err != nil {
			return fieldError(field, err.Error())
		}
	}

	if err := validatePattern(config.Paths.Pattern); err != nil {
		return fieldError("paths.pattern", err.Error())
	}

	if err := validation.ValidateBaseURL(config.Render.Images); err != nil {
		return fieldError("render.images", err.Error())
	}
	for _, locale := range config.Render.RightToLeft {
		if err := validation.ValidateLocale(locale); err != nil {
			return fieldError("render.right_to_left", err.Error())
		}
	}

	if config.Placeholders.CanonicalLocale != "" {
		if err := validation.ValidateLocale(config.Placeholders.CanonicalLocale); err != nil {
			return fieldError("placeholders.canonical_locale", err.Error())
		}
	}
	if config.Placeholders.CacheSize < 1 {
		return fieldError("placeholders.cache_size", fmt.Sprintf("cache size %d must be at least 1", config.Placeholders.CacheSize))
	}

	if config.Build.Workers < 1 {
		return fieldError("build.workers", fmt.Sprintf("worker count %d must be at least 1", config.Build.Workers))
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fieldError("log.level", err.Error())
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fieldError("log.format", fmt.Sprintf("unknown log format %q", config.Log.Format))
	}

	return nil
}

func validatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	for _, param := range []string{"{name}", "{locale}"} {
		if !strings.Contains(pattern, param) {
			return fmt.Errorf("%s is a required parameter in the pattern", param)
		}
	}
	return validation.ValidatePath(pattern)
}

func fieldError(field, message string) error {
	return perrors.NewConfigError(perrors.ErrCodeConfigInvalid, field+": "+message).
		WithContext("field", field)
}

func extractField(err error) (string, bool) {
	field, ok := perrors.ExtractContext(err)["field"].(string)
	return field, ok
}
