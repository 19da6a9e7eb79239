package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marykravets/ks-email-parser/internal/config"
)

func newConfigCommand() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after files, environment variables and flags
are applied, as YAML.

Examples:
  ks-email-parser config
  KS_EMAIL_PARSER_RENDER_STRICT=false ks-email-parser config
  ks-email-parser config --check   # Also report warnings`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, check)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "report configuration warnings")
	return cmd
}

func runConfig(cmd *cobra.Command, check bool) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	data, err := config.Marshal(a.cfg)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if !check {
		return nil
	}
	result := config.ValidateConfigWithDetails(a.cfg)
	if result.HasErrors() || result.HasWarnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), result.String())
	}
	if result.HasErrors() {
		return fmt.Errorf("configuration has errors")
	}
	return nil
}
