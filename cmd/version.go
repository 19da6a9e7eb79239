package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marykravets/ks-email-parser/internal/version"
)

func newVersionCommand() *cobra.Command {
	var (
		format string
		short  bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the version, commit, build time, Go version and platform.

Examples:
  ks-email-parser version
  ks-email-parser version --short
  ks-email-parser version --format json`,
		Args: cobra.NoArgs,
		// Version never needs configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, format, short)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&short, "short", false, "show the short version only")
	return cmd
}

func runVersion(cmd *cobra.Command, format string, short bool) error {
	format, err := validateFormat(format, "text", "json", "yaml")
	if err != nil {
		return err
	}
	info := version.Get()
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return writeJSON(out, info)
	case "yaml":
		return writeYAML(out, info)
	}
	if short {
		fmt.Fprintln(out, info.Short())
		return nil
	}
	fmt.Fprintf(out, "ks-email-parser %s\n\n%s\n", info.Short(), info)
	return nil
}
