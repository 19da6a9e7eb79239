package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marykravets/ks-email-parser/internal/build"
	"github.com/marykravets/ks-email-parser/internal/scanner"
	"github.com/marykravets/ks-email-parser/internal/types"
)

type parseOptions struct {
	output  string
	locales []string
	force   bool
	dryRun  bool
	workers int
}

func newParseCommand() *cobra.Command {
	opts := &parseOptions{}
	cmd := &cobra.Command{
		Use:     "parse [email...]",
		Aliases: []string{"p", "render"},
		Short:   "Render emails to subject, text and HTML artifacts",
		Long: `Render every discovered email, or only the named ones, for every locale.
Placeholders are validated against the stored shapes first; an email whose
placeholders are inconsistent is skipped unless --force is given.

Artifacts are written to <destination>/<locale>/<name>.{subject,text,html}.

Examples:
  ks-email-parser parse                       # Render everything
  ks-email-parser parse welcome --locale fr   # One email in one locale
  ks-email-parser parse --force               # Render inconsistent emails too
  ks-email-parser parse --dry-run             # Render without writing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.locales, "locale", nil, "only render these locales")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "render emails with inconsistent placeholders")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "render without writing artifacts")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "number of emails rendered concurrently")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (overrides --destination)")
	bindFlags(cmd.Flags(), []flagBinding{{"workers", "build.workers"}})

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *parseOptions) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	sc, err := a.scanner()
	if err != nil {
		return err
	}
	emails, err := sc.Scan(scanner.Filter{Names: args, Locales: opts.locales})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(emails) == 0 {
		fmt.Fprintln(out, "No emails found.")
		return nil
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	pipelineOpts := build.OptionsFromConfig(a.cfg)
	if opts.output != "" {
		pipelineOpts.Destination = opts.output
	}
	pipelineOpts.Force = opts.force
	pipelineOpts.DryRun = opts.dryRun

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := build.NewPipeline(pipelineOpts, store, a.logger).Run(ctx, emails)
	if err != nil {
		return fmt.Errorf("rendering interrupted: %w", err)
	}

	printReport(out, report, opts.dryRun)
	if report.HasFailures() {
		return fmt.Errorf("%d render failures", len(report.Failures))
	}
	return nil
}

func printReport(out io.Writer, report *build.Report, dryRun bool) {
	for _, result := range report.Results {
		label := emailLabel(result.Email.Name, result.Email.Locale)
		switch {
		case result.Skipped:
			fmt.Fprintf(out, "⏭️  %s skipped\n", label)
		case !result.OK():
			fmt.Fprintf(out, "❌ %s (%d failures)\n", label, len(result.Failures))
		case dryRun:
			fmt.Fprintf(out, "✅ %s rendered %d targets\n", label, len(result.Rendered))
		default:
			fmt.Fprintf(out, "✅ %s wrote %d artifacts\n", label, len(result.Artifacts))
		}
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(out, "\nFailures:")
		for _, failure := range report.Failures {
			fmt.Fprintf(out, "  %s [%s]: %v\n", emailLabel(failure.Email, failure.Locale), failure.Target, failure.Err)
		}
	}

	fmt.Fprintf(out, "\n%s\n", report.Summary())
}

// targetNames lists the enabled targets for display.
func targetNames(targets []types.Target) []string {
	names := make([]string, len(targets))
	for i, target := range targets {
		names[i] = target.String()
	}
	return names
}
