package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marykravets/ks-email-parser/internal/placeholder"
)

func newPlaceholdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "placeholders",
		Aliases: []string{"ph"},
		Short:   "Manage the stored placeholder shapes",
		Long: `The placeholders file records, per email, how often every placeholder
occurs. Every locale of an email must match it before the email is rendered.`,
	}
	cmd.AddCommand(newPlaceholdersGenerateCommand(), newPlaceholdersShowCommand())
	return cmd
}

func newPlaceholdersGenerateCommand() *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Rebuild the placeholders file from the canonical locale",
		Long: `Rebuild the placeholders file from the documents of the canonical locale.
Running it twice without source changes produces an identical file.

Examples:
  ks-email-parser placeholders generate
  ks-email-parser placeholders generate --locale de`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaceholdersGenerate(cmd)
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "canonical locale (overrides placeholders.canonical_locale)")
	bindFlags(cmd.Flags(), []flagBinding{{"locale", "placeholders.canonical_locale"}})
	return cmd
}

func runPlaceholdersGenerate(cmd *cobra.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	sc, err := a.scanner()
	if err != nil {
		return err
	}
	emails, err := sc.ScanAll()
	if err != nil {
		return err
	}
	store, err := a.store()
	if err != nil {
		return err
	}

	shapes, err := store.Regenerate(a.cfg.Paths.Source, emails, a.cfg.Placeholders.CanonicalLocale)
	if err != nil {
		return fmt.Errorf("failed to generate placeholders: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(shapes) == 0 {
		fmt.Fprintf(out, "No emails found for locale %s, placeholders file left unchanged.\n",
			a.cfg.Placeholders.CanonicalLocale)
		return nil
	}
	fmt.Fprintf(out, "Wrote placeholders for %d emails to %s\n", len(shapes), store.Path(a.cfg.Paths.Source))
	return nil
}

func newPlaceholdersShowCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show [email...]",
		Short: "Print the stored placeholder shapes",
		Long: `Print the stored placeholder shapes of every email, or of the named ones.

Examples:
  ks-email-parser placeholders show
  ks-email-parser placeholders show welcome --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaceholdersShow(cmd, args, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml)")
	return cmd
}

func runPlaceholdersShow(cmd *cobra.Command, args []string, format string) error {
	format, err := validateFormat(format, "json", "yaml")
	if err != nil {
		return err
	}
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	store, err := a.store()
	if err != nil {
		return err
	}
	shapes, err := store.Load(a.cfg.Paths.Source)
	if err != nil {
		return fmt.Errorf("failed to load placeholders (run \"placeholders generate\" first): %w", err)
	}

	if len(args) > 0 {
		selected := make(placeholder.Shapes, len(args))
		var missing []string
		for _, name := range args {
			shape, ok := shapes[name]
			if !ok {
				missing = append(missing, name)
				continue
			}
			selected[name] = shape
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("no placeholders stored for %v", missing)
		}
		shapes = selected
	}

	var data []byte
	switch format {
	case "yaml":
		data, err = yaml.Marshal(shapes)
	default:
		data, err = placeholder.Encode(shapes)
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
