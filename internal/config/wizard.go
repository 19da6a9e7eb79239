package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Prompter asks one question. survey.AskOne satisfies it; tests substitute
// scripted answers.
type Prompter interface {
	AskOne(prompt survey.Prompt, response interface{}, opts ...survey.AskOpt) error
}

type surveyPrompter struct{}

func (surveyPrompter) AskOne(prompt survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(prompt, response, opts...)
}

// commonRightToLeft lists right-to-left locales offered by the wizard.
var commonRightToLeft = []string{"ar", "he", "fa", "ur"}

// ConfigWizard provides an interactive setup experience for new projects
type ConfigWizard struct {
	prompter Prompter
	config   *Config
}

// NewConfigWizard creates a wizard prompting on the terminal.
func NewConfigWizard() *ConfigWizard {
	return NewConfigWizardWithPrompter(surveyPrompter{})
}

// NewConfigWizardWithPrompter creates a wizard asking through prompter.
func NewConfigWizardWithPrompter(prompter Prompter) *ConfigWizard {
	return &ConfigWizard{
		prompter: prompter,
		config:   Default(),
	}
}

// Config returns the configuration collected so far.
func (w *ConfigWizard) Config() *Config {
	return w.config
}

// Run executes the interactive configuration wizard
func (w *ConfigWizard) Run() (*Config, error) {
	if err := w.configurePaths(); err != nil {
		return nil, fmt.Errorf("paths configuration failed: %w", err)
	}
	if err := w.configureRender(); err != nil {
		return nil, fmt.Errorf("render configuration failed: %w", err)
	}
	if err := w.configurePlaceholders(); err != nil {
		return nil, fmt.Errorf("placeholders configuration failed: %w", err)
	}

	if err := validateConfig(w.config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return w.config, nil
}

func (w *ConfigWizard) configurePaths() error {
	questions := []struct {
		message string
		target  *string
	}{
		{"Source directory", &w.config.Paths.Source},
		{"Destination directory", &w.config.Paths.Destination},
		{"Templates directory", &w.config.Paths.Templates},
		{"Document pattern", &w.config.Paths.Pattern},
	}
	for _, q := range questions {
		if err := w.askString(q.message, q.target); err != nil {
			return err
		}
	}
	return nil
}

func (w *ConfigWizard) configureRender() error {
	if err := w.askString("Images base URL", &w.config.Render.Images); err != nil {
		return err
	}

	options := append([]string{}, commonRightToLeft...)
	for _, locale := range w.config.Render.RightToLeft {
		if !contains(options, locale) {
			options = append(options, locale)
		}
	}
	selected := []string{}
	prompt := &survey.MultiSelect{
		Message: "Right-to-left locales",
		Options: options,
		Default: w.config.Render.RightToLeft,
	}
	if err := w.prompter.AskOne(prompt, &selected); err != nil {
		return err
	}
	w.config.Render.RightToLeft = selected

	return w.askBool("Fail on template placeholders without a value", &w.config.Render.Strict)
}

func (w *ConfigWizard) configurePlaceholders() error {
	if err := w.askString("Canonical locale for placeholder shapes", &w.config.Placeholders.CanonicalLocale); err != nil {
		return err
	}

	workers := strconv.Itoa(w.config.Build.Workers)
	prompt := &survey.Input{Message: "Parallel render workers", Default: workers}
	err := w.prompter.AskOne(prompt, &workers, survey.WithValidator(func(ans interface{}) error {
		n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(ans)))
		if err != nil || n < 1 {
			return fmt.Errorf("enter a number of at least 1")
		}
		return nil
	}))
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(workers))
	if err != nil {
		return fmt.Errorf("invalid worker count %q", workers)
	}
	w.config.Build.Workers = n
	return nil
}

func (w *ConfigWizard) askString(message string, target *string) error {
	answer := *target
	if err := w.prompter.AskOne(&survey.Input{Message: message, Default: *target}, &answer); err != nil {
		return err
	}
	*target = strings.TrimSpace(answer)
	return nil
}

func (w *ConfigWizard) askBool(message string, target *bool) error {
	answer := *target
	if err := w.prompter.AskOne(&survey.Confirm{Message: message, Default: *target}, &answer); err != nil {
		return err
	}
	*target = answer
	return nil
}

// Marshal renders a configuration as the YAML written to the config file.
func Marshal(config *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# ks-email-parser configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteConfigFile writes the configuration to a YAML file. An existing file
// is only replaced when overwrite is set.
func (w *ConfigWizard) WriteConfigFile(filename string, overwrite bool) error {
	if _, err := os.Stat(filename); err == nil && !overwrite {
		return fmt.Errorf("configuration file %s already exists", filename)
	}

	content, err := Marshal(w.config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	if err := atomic.WriteFile(filename, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
