package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBinding ties a command-line flag to a configuration key.
type flagBinding struct {
	flag string
	key  string
}

var globalBindings = []flagBinding{
	{"source", "paths.source"},
	{"destination", "paths.destination"},
	{"templates", "paths.templates"},
	{"pattern", "paths.pattern"},
	{"images", "render.images"},
	{"strict", "render.strict"},
	{"log-level", "log.level"},
	{"log-format", "log.format"},
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringP("source", "s", "", "directory holding the email sources")
	flags.StringP("destination", "d", "", "directory receiving rendered emails")
	flags.StringP("templates", "t", "", "directory holding HTML templates and stylesheets")
	flags.String("pattern", "", "source document pattern with {name} and {locale}")
	flags.StringP("images", "i", "", "base URL substituted for {{base_url}}")
	flags.Bool("strict", true, "fail on template placeholders without a value")
	flags.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
}

// bindFlags binds every listed flag present in flags to its viper key. Only
// flags set on the command line override other sources.
func bindFlags(flags *pflag.FlagSet, bindings []flagBinding) {
	for _, b := range bindings {
		if f := flags.Lookup(b.flag); f != nil {
			_ = viper.BindPFlag(b.key, f)
		}
	}
}

// validateFormat checks an output format against the supported ones.
func validateFormat(format string, supported ...string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	for _, s := range supported {
		if normalized == s {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(supported, ", "))
}

// emailLabel formats an (email, locale) pair.
func emailLabel(name, locale string) string {
	return name + "/" + locale
}
