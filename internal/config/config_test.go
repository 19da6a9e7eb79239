package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, config *Config)
	}{
		{
			name:  "defaults",
			setup: func() {},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "src", config.Paths.Source)
				assert.Equal(t, "target", config.Paths.Destination)
				assert.Equal(t, "templates_html", config.Paths.Templates)
				assert.Equal(t, "{locale}/{name}.xml", config.Paths.Pattern)
				assert.Equal(t, []string{"ar", "he"}, config.Render.RightToLeft)
				assert.True(t, config.Render.Strict)
				assert.Equal(t, "en", config.Placeholders.CanonicalLocale)
				assert.Equal(t, 16, config.Placeholders.CacheSize)
				assert.Equal(t, runtime.NumCPU(), config.Build.Workers)
				assert.True(t, config.Build.WriteHTML)
				assert.Equal(t, "info", config.Log.Level)
			},
		},
		{
			name: "explicit values",
			setup: func() {
				viper.Set("paths.source", "emails/src")
				viper.Set("render.images", "https://cdn.example.com/img")
				viper.Set("render.right_to_left", []string{"fa"})
				viper.Set("render.strict", false)
				viper.Set("build.workers", 3)
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "emails/src", config.Paths.Source)
				assert.Equal(t, "https://cdn.example.com/img", config.Render.Images)
				assert.Equal(t, []string{"fa"}, config.Render.RightToLeft)
				assert.False(t, config.Render.Strict)
				assert.Equal(t, 3, config.Build.Workers)
			},
		},
		{
			name: "comma separated list",
			setup: func() {
				viper.Set("render.text_ignore", "footer, legal")
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, []string{"footer", "legal"}, config.Render.TextIgnore)
			},
		},
		{
			name: "invalid worker type",
			setup: func() {
				viper.Set("build.workers", "many")
			},
			expectError: true,
		},
		{
			name: "pattern without locale",
			setup: func() {
				viper.Set("paths.pattern", "{name}.xml")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setup()

			config, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			tt.check(t, config)
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	viper.Reset()
	BindEnv()
	t.Setenv("KS_EMAIL_PARSER_PATHS_DESTINATION", "out")
	t.Setenv("KS_EMAIL_PARSER_RENDER_RIGHT_TO_LEFT", "ar,fa")
	t.Setenv("KS_EMAIL_PARSER_PLACEHOLDERS_CANONICAL_LOCALE", "de")

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "out", config.Paths.Destination)
	assert.Equal(t, []string{"ar", "fa"}, config.Render.RightToLeft)
	assert.Equal(t, "de", config.Placeholders.CanonicalLocale)
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  source: mails
render:
  images: /static/img
  right_to_left: [he]
build:
  write_text: false
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mails", config.Paths.Source)
	assert.Equal(t, "target", config.Paths.Destination)
	assert.Equal(t, "/static/img", config.Render.Images)
	assert.Equal(t, []string{"he"}, config.Render.RightToLeft)
	assert.False(t, config.Build.WriteText)
	assert.True(t, config.Build.WriteHTML)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty source", func(c *Config) { c.Paths.Source = "" }, "paths.source"},
		{"destination traversal", func(c *Config) { c.Paths.Destination = "../out" }, "paths.destination"},
		{"templates metacharacter", func(c *Config) { c.Paths.Templates = "tpl;rm" }, "paths.templates"},
		{"pattern without name", func(c *Config) { c.Paths.Pattern = "{locale}/email.xml" }, "paths.pattern"},
		{"bad images scheme", func(c *Config) { c.Render.Images = "ftp://x" }, "render.images"},
		{"bad rtl locale", func(c *Config) { c.Render.RightToLeft = []string{"not a locale"} }, "render.right_to_left"},
		{"bad canonical locale", func(c *Config) { c.Placeholders.CanonicalLocale = "??" }, "placeholders.canonical_locale"},
		{"zero cache", func(c *Config) { c.Placeholders.CacheSize = 0 }, "placeholders.cache_size"},
		{"zero workers", func(c *Config) { c.Build.Workers = 0 }, "build.workers"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)

			err := validateConfig(config)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var pe *perrors.ParserError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, perrors.ErrorTypeConfig, pe.Type)
			field, ok := extractField(err)
			assert.True(t, ok)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestValidateConfigWithDetails(t *testing.T) {
	dir := t.TempDir()
	config := Default()
	config.Paths.Source = filepath.Join(dir, "missing")
	config.Paths.Templates = dir
	config.Render.Strict = false

	result := ValidateConfigWithDetails(config)
	assert.True(t, result.Valid)
	assert.False(t, result.HasErrors())
	assert.True(t, result.HasWarnings())

	fields := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		fields = append(fields, w.Field)
	}
	assert.ElementsMatch(t, []string{"paths.source", "render.images", "render.strict"}, fields)
	assert.Contains(t, result.String(), "Warnings:")

	config.Build.Workers = 0
	result = ValidateConfigWithDetails(config)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "build.workers", result.Errors[0].Field)
	assert.Contains(t, result.String(), "Errors:")
}
