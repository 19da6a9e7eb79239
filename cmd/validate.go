package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marykravets/ks-email-parser/internal/placeholder"
	"github.com/marykravets/ks-email-parser/internal/scanner"
)

type validateOptions struct {
	crossLocale bool
	locales     []string
	format      string
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:     "validate [email...]",
		Aliases: []string{"v", "check"},
		Short:   "Check placeholders of every locale",
		Long: `Check that every locale of every email, or of the named ones, uses the
same placeholders as often as the stored shapes say. With --cross-locale the
locales are checked against each other instead, without the stored file.

The command exits with a non-zero status when any finding is reported.

Examples:
  ks-email-parser validate
  ks-email-parser validate welcome --locale fr
  ks-email-parser validate --cross-locale --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.crossLocale, "cross-locale", "x", false, "compare locales with each other")
	cmd.Flags().StringSliceVar(&opts.locales, "locale", nil, "only validate these locales")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json)")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *validateOptions) error {
	format, err := validateFormat(opts.format, "text", "json")
	if err != nil {
		return err
	}
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	sc, err := a.scanner()
	if err != nil {
		return err
	}
	emails, err := sc.Scan(scanner.Filter{Names: args})
	if err != nil {
		return err
	}

	var results []placeholder.Result
	if opts.crossLocale {
		// Every locale takes part in the reduction even when only some are shown
		counts, err := placeholder.Collect(emails)
		if err != nil {
			return err
		}
		for _, result := range placeholder.CrossCheck(counts) {
			if len(opts.locales) == 0 || containsString(opts.locales, result.Locale) {
				results = append(results, result)
			}
		}
	} else {
		store, err := a.store()
		if err != nil {
			return err
		}
		if _, err := os.Stat(store.Path(a.cfg.Paths.Source)); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no placeholders file found, nothing to compare against (try --cross-locale)")
		}
		for _, email := range emails {
			if len(opts.locales) > 0 && !containsString(opts.locales, email.Locale) {
				continue
			}
			result, err := store.ValidateEmail(a.cfg.Paths.Source, email)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
	}

	invalid := 0
	for _, result := range results {
		if !result.Valid() {
			invalid++
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if results == nil {
			results = []placeholder.Result{}
		}
		if err := writeJSON(out, results); err != nil {
			return err
		}
	default:
		printValidation(out, results, invalid)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d documents have inconsistent placeholders", invalid, len(results))
	}
	return nil
}

func printValidation(out io.Writer, results []placeholder.Result, invalid int) {
	for _, result := range results {
		if result.Valid() {
			continue
		}
		fmt.Fprintf(out, "❌ %s\n", emailLabel(result.Email, result.Locale))
		for _, finding := range result.Findings {
			fmt.Fprintf(out, "   - %s\n", finding)
		}
	}
	fmt.Fprintf(out, "%d of %d documents valid\n", len(results)-invalid, len(results))
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
