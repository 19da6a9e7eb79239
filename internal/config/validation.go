package config

import (
	"fmt"
	"os"
	"strings"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", issue.Field, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("      hint: %s\n", suggestion))
			}
		}
	}

	write("Errors", vr.Errors)
	write("Warnings", vr.Warnings)
	return builder.String()
}

// ValidateConfigWithDetails reports configuration errors together with
// warnings about settings that are valid but probably unintended.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	if err := validateConfig(config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   errorField(err),
			Message: err.Error(),
		})
	}

	validatePathsDetails(&config.Paths, result)
	validateRenderDetails(&config.Render, result)
	validateBuildDetails(&config.Build, result)

	result.Valid = !result.HasErrors()
	return result
}

func errorField(err error) string {
	if field, ok := extractField(err); ok {
		return field
	}
	return "config"
}

func validatePathsDetails(config *PathsConfig, result *ValidationResult) {
	if config.Source != "" && !pathExists(config.Source) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "paths.source",
			Value:   config.Source,
			Message: "source directory does not exist",
			Suggestions: []string{
				"Create it with one sub-directory per locale, e.g. src/en/welcome.xml",
				"Point paths.source at the directory holding your email documents",
			},
		})
	}
	if config.Templates != "" && !pathExists(config.Templates) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "paths.templates",
			Value:   config.Templates,
			Message: "templates directory does not exist",
			Suggestions: []string{
				"HTML rendering fails until the templates referenced by documents exist",
			},
		})
	}
	if config.Source != "" && config.Source == config.Destination {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "paths.destination",
			Value:   config.Destination,
			Message: "rendered artifacts are written into the source directory",
		})
	}
}

func validateRenderDetails(config *RenderConfig, result *ValidationResult) {
	if config.Images == "" {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "render.images",
			Value:   config.Images,
			Message: "{{base_url}} tokens render as an empty string",
			Suggestions: []string{
				"Set render.images to the public URL of your email images",
			},
		})
	}
	if !config.Strict {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "render.strict",
			Value:   config.Strict,
			Message: "template tokens without a value are silently dropped",
		})
	}
}

func validateBuildDetails(config *BuildConfig, result *ValidationResult) {
	if !config.WriteHTML && !config.WriteText && !config.WriteSubject {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "build",
			Message: "every artifact is disabled, parse only validates",
			Suggestions: []string{
				"Enable at least one of build.write_html, build.write_text, build.write_subject",
			},
		})
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
