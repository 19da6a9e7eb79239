// Package cmd provides the command-line interface for ks-email-parser.
//
// Configuration is resolved from several sources, highest priority first:
//
//  1. Command-line flags (--source, --templates, --strict, ...)
//  2. Environment variables following KS_EMAIL_PARSER_<SECTION>_<KEY>,
//     including values loaded from a .env file in the working directory
//  3. The configuration file given by --config or KS_EMAIL_PARSER_CONFIG_FILE
//  4. .ks-email-parser.yml in the working directory
//  5. Built-in defaults
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marykravets/ks-email-parser/internal/config"
	"github.com/marykravets/ks-email-parser/internal/logging"
	"github.com/marykravets/ks-email-parser/internal/placeholder"
	"github.com/marykravets/ks-email-parser/internal/scanner"
)

// NewRootCommand builds the command tree. Flags are bound to the global viper
// instance, so each call rebinds them.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "ks-email-parser",
		Short: "Render localized emails from XML sources and HTML templates",
		Long: `ks-email-parser renders transactional emails. Every email is an XML
document per locale holding named placeholders; each one is rendered to a
subject line, a plain text body and an HTML body built from a shared template
and stylesheets.

Before rendering, the placeholders of every locale are checked against the
shapes stored in placeholders_config.json so that translations never drop or
add a {{placeholder}}.

Quick Start:
  ks-email-parser init                    Write a configuration file
  ks-email-parser placeholders generate   Record placeholder shapes
  ks-email-parser parse                   Render every email
  ks-email-parser watch                   Re-render on changes`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is "+config.FileName+", can also use "+config.FileEnv+")")
	addGlobalFlags(root.PersistentFlags())
	bindFlags(root.PersistentFlags(), globalBindings)

	root.AddCommand(
		newParseCommand(),
		newPlaceholdersCommand(),
		newValidateCommand(),
		newListCommand(),
		newWatchCommand(),
		newInitCommand(),
		newConfigCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCommand().Execute()
}

// initConfig loads .env, then the configuration file, then enables
// environment overrides.
func initConfig(cmd *cobra.Command, cfgFile string) error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	explicit := true
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case os.Getenv(config.FileEnv) != "":
		viper.SetConfigFile(os.Getenv(config.FileEnv))
	default:
		explicit = false
		viper.SetConfigFile(config.FileName)
	}
	viper.SetConfigType("yaml")
	config.BindEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return fmt.Errorf("failed to read configuration: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	return nil
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger logging.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})

	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) scanner() (*scanner.EmailScanner, error) {
	return scanner.New(a.cfg.Paths.Source, a.cfg.Paths.Pattern, a.logger)
}

func (a *app) store() (*placeholder.Store, error) {
	return placeholder.NewStore(a.cfg.Placeholders.CacheSize, a.logger)
}
