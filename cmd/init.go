package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marykravets/ks-email-parser/internal/config"
)

type initOptions struct {
	yes       bool
	overwrite bool
	output    string
}

func newInitCommand() *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Write a configuration file and the source layout",
		Long: `Ask for the project layout and write ` + config.FileName + `. The
source directory of the canonical locale and the templates directory are
created when missing.

Examples:
  ks-email-parser init           # Interactive wizard
  ks-email-parser init --yes     # Accept every default`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "accept defaults without prompting")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "replace an existing configuration file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", config.FileName, "configuration file to write")
	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	wizard := config.NewConfigWizard()

	var cfg *config.Config
	if opts.yes {
		cfg = wizard.Config()
	} else {
		var err error
		if cfg, err = wizard.Run(); err != nil {
			return fmt.Errorf("configuration wizard failed: %w", err)
		}
	}

	if err := wizard.WriteConfigFile(opts.output, opts.overwrite); err != nil {
		return err
	}

	dirs := []string{
		filepath.Join(cfg.Paths.Source, cfg.Placeholders.CanonicalLocale),
		cfg.Paths.Templates,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Wrote %s\n", opts.output)
	for _, dir := range dirs {
		fmt.Fprintf(out, "   - %s/\n", dir)
	}
	fmt.Fprintln(out, "\nNext: add documents and run \"ks-email-parser placeholders generate\"")
	return nil
}
