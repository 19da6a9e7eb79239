package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marykravets/ks-email-parser/internal/build"
	"github.com/marykravets/ks-email-parser/internal/placeholder"
	"github.com/marykravets/ks-email-parser/internal/reader"
	"github.com/marykravets/ks-email-parser/internal/scanner"
	"github.com/marykravets/ks-email-parser/internal/types"
	"github.com/marykravets/ks-email-parser/internal/watcher"
)

type watchOptions struct {
	regenerate bool
	force      bool
	skipFirst  bool
	debounce   time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Re-render emails when sources or templates change",
		Long: `Watch the source and template directories and re-render on change.
A changed email document only re-renders that document; a changed template,
stylesheet, globals document or placeholders file re-renders everything.

Examples:
  ks-email-parser watch
  ks-email-parser watch --regenerate   # Keep the placeholders file in sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.regenerate, "regenerate", "r", false, "rebuild the placeholders file on source changes")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "render emails with inconsistent placeholders")
	cmd.Flags().BoolVar(&opts.skipFirst, "skip-initial", false, "do not render everything on start")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 300*time.Millisecond, "delay grouping file events")
	return cmd
}

// watchSession reacts to batches of file events.
type watchSession struct {
	srcDir       string
	templatesDir string
	shapesPath   string
	canonical    string
	regenerate   bool
	scanner      *scanner.EmailScanner
	store        *placeholder.Store
	pipeline     *build.Pipeline
	out          io.Writer
}

func newWatchSession(a *app, opts *watchOptions, out io.Writer) (*watchSession, error) {
	sc, err := a.scanner()
	if err != nil {
		return nil, err
	}
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	templatesDir, err := filepath.Abs(a.cfg.Paths.Templates)
	if err != nil {
		return nil, err
	}
	shapesPath, err := filepath.Abs(store.Path(a.cfg.Paths.Source))
	if err != nil {
		return nil, err
	}

	pipelineOpts := build.OptionsFromConfig(a.cfg)
	pipelineOpts.Force = opts.force

	return &watchSession{
		srcDir:       a.cfg.Paths.Source,
		templatesDir: templatesDir,
		shapesPath:   shapesPath,
		canonical:    a.cfg.Placeholders.CanonicalLocale,
		regenerate:   opts.regenerate,
		scanner:      sc,
		store:        store,
		pipeline:     build.NewPipeline(pipelineOpts, store, a.logger),
		out:          out,
	}, nil
}

// handle re-renders what a batch of events affects.
func (s *watchSession) handle(ctx context.Context, events []watcher.ChangeEvent) error {
	events = watcher.Coalesce(events)

	var changed []types.Email
	all, sourcesChanged := false, false
	for _, event := range events {
		switch {
		case event.Path == s.shapesPath:
			s.store.Invalidate(s.srcDir)
			all = true
		case isWithin(s.templatesDir, event.Path):
			all = true
		case filepath.Base(event.Path) == types.GlobalsName+reader.Extension:
			s.pipeline.InvalidateGlobals()
			all = true
		default:
			email, ok := s.scanner.Match(event.Path)
			if !ok {
				continue
			}
			sourcesChanged = true
			if event.Type != watcher.EventTypeDeleted && event.Type != watcher.EventTypeRenamed {
				changed = append(changed, email)
			}
		}
	}

	if sourcesChanged && s.regenerate {
		if err := s.regenerateShapes(); err != nil {
			return err
		}
		all = true
	}

	emails := changed
	if all {
		var err error
		if emails, err = s.scanner.ScanAll(); err != nil {
			return err
		}
	}
	return s.render(ctx, emails)
}

func (s *watchSession) regenerateShapes() error {
	emails, err := s.scanner.ScanAll()
	if err != nil {
		return err
	}
	if _, err := s.store.Regenerate(s.srcDir, emails, s.canonical); err != nil {
		return fmt.Errorf("failed to regenerate placeholders: %w", err)
	}
	return nil
}

func (s *watchSession) render(ctx context.Context, emails []types.Email) error {
	if len(emails) == 0 {
		return nil
	}
	report, err := s.pipeline.Run(ctx, emails)
	if err != nil {
		return err
	}
	printReport(s.out, report, false)
	return nil
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	session, err := newWatchSession(a, opts, out)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !opts.skipFirst {
		emails, err := session.scanner.ScanAll()
		if err != nil {
			return err
		}
		if err := session.render(ctx, emails); err != nil {
			return err
		}
	}

	fileWatcher, err := watcher.NewFileWatcher(opts.debounce, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.SourceFilter)
	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)
	fileWatcher.AddHandler(session.handle)

	for _, dir := range []string{a.cfg.Paths.Source, a.cfg.Paths.Templates} {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		if err := fileWatcher.AddRecursive(abs); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fmt.Fprintf(out, "   - Watching: %s\n", dir)
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	fmt.Fprintf(out, "👀 Watching for changes, rendering %s... (Press Ctrl+C to stop)\n",
		strings.Join(targetNames(build.OptionsFromConfig(a.cfg).Targets), ", "))

	<-ctx.Done()
	fmt.Fprintln(out, "\n🛑 Stopping file watcher...")
	return nil
}
