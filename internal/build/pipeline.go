// Package build renders batches of emails: every discovered document is
// checked against the stored placeholder shapes, parsed, rendered to each
// enabled target and written to the destination tree. Emails are processed
// concurrently with a bounded number of workers; one failing email never
// stops the others.
package build

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/logging"
	"github.com/marykravets/ks-email-parser/internal/placeholder"
	"github.com/marykravets/ks-email-parser/internal/reader"
	"github.com/marykravets/ks-email-parser/internal/renderer"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// ValidationTarget labels failures raised by placeholder validation.
const ValidationTarget = "validation"

// Options configures a pipeline.
type Options struct {
	SourceDir   string
	Destination string
	Render      renderer.Options
	Workers     int
	// Targets lists the artifacts to render, in order
	Targets []types.Target
	// Force renders emails whose placeholders are inconsistent
	Force bool
	// DryRun renders without writing artifacts
	DryRun bool
}

// EmailResult is the outcome of processing one email.
type EmailResult struct {
	Email      types.Email
	Validation placeholder.Result
	// Rendered holds the output per target
	Rendered map[types.Target]string
	// Artifacts holds the written file per target
	Artifacts map[types.Target]string
	Failures  []perrors.RenderFailure
	Skipped   bool
	Duration  time.Duration
}

// OK reports whether the email rendered every target.
func (r EmailResult) OK() bool {
	return !r.Skipped && len(r.Failures) == 0
}

// Report summarises a batch run.
type Report struct {
	Results  []EmailResult
	Failures []perrors.RenderFailure
	Metrics  BuildMetrics
	Duration time.Duration
}

// HasFailures reports whether any email failed or was skipped.
func (r *Report) HasFailures() bool {
	return len(r.Failures) > 0
}

// Pipeline renders emails.
type Pipeline struct {
	opts     Options
	store    *placeholder.Store
	writer   *ArtifactWriter
	metrics  *BuildMetrics
	handler  *perrors.ErrorHandler
	logger   logging.Logger
	globalMu sync.Mutex
	globals  map[string]types.Placeholders
}

// NewPipeline creates a pipeline validating against store.
func NewPipeline(opts Options, store *placeholder.Store, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Targets == nil {
		opts.Targets = types.Targets()
	}
	logger = logger.WithComponent("build")
	if opts.Render.Logger == nil {
		opts.Render.Logger = logger
	}

	return &Pipeline{
		opts:    opts,
		store:   store,
		writer:  NewArtifactWriter(opts.Destination),
		metrics: NewBuildMetrics(),
		handler: perrors.NewErrorHandler(logger),
		logger:  logger,
		globals: make(map[string]types.Placeholders),
	}
}

// Metrics returns the metrics accumulated over every run and every Process
// call.
func (p *Pipeline) Metrics() BuildMetrics {
	return p.metrics.GetSnapshot()
}

// Run processes emails with at most Workers in flight. Results keep the input
// order. The returned error is only set when ctx is cancelled; per-email
// problems are reported through the Report.
func (p *Pipeline) Run(ctx context.Context, emails []types.Email) (*Report, error) {
	perf := logging.StartOperation(p.logger, "render_emails")
	start := time.Now()

	collector := perrors.NewErrorCollector()
	runMetrics := NewBuildMetrics()
	results := make([]EmailResult, len(emails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, email := range emails {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := p.Process(gctx, email)
			for _, failure := range result.Failures {
				collector.Add(failure)
			}
			runMetrics.RecordEmail(result)
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		perf.EndWithError(ctx, err, "emails", len(emails))
		return nil, err
	}

	report := &Report{
		Results:  results,
		Failures: collector.GetFailures(),
		Metrics:  runMetrics.GetSnapshot(),
		Duration: time.Since(start),
	}
	perf.End(ctx,
		"emails", len(emails),
		"failures", len(report.Failures),
		"artifacts", report.Metrics.ArtifactsWritten)
	return report, nil
}

// Process validates, renders and writes one email.
func (p *Pipeline) Process(ctx context.Context, email types.Email) EmailResult {
	start := time.Now()
	result := EmailResult{
		Email:     email,
		Rendered:  make(map[types.Target]string),
		Artifacts: make(map[types.Target]string),
	}
	defer func() {
		result.Duration = time.Since(start)
		p.metrics.RecordEmail(result)
	}()

	fail := func(target string, err error) {
		p.handler.Handle(ctx, err)
		result.Failures = append(result.Failures, perrors.RenderFailure{
			Email:  email.Name,
			Locale: email.Locale,
			Target: target,
			Err:    err,
		})
	}

	if p.store != nil {
		validation, err := p.store.ValidateEmail(p.opts.SourceDir, email)
		if err != nil {
			fail(ValidationTarget, err)
			result.Skipped = true
			return result
		}
		result.Validation = validation
		if !validation.Valid() {
			err := perrors.Wrap(perrors.ErrPlaceholdersInvalid, perrors.ErrorTypeValidation,
				perrors.ErrCodePlaceholdersInvalid, validation.Summary()).WithEmail(email.Name, email.Locale)
			if !p.opts.Force {
				fail(ValidationTarget, err)
				result.Skipped = true
				return result
			}
			p.logger.Warn(ctx, err, "Rendering email with inconsistent placeholders",
				"email", email.Name, "locale", email.Locale)
		}
	}

	doc, err := reader.Read(email)
	if err != nil {
		fail("read", err)
		return result
	}

	globals, err := p.localeGlobals(email.Locale)
	if err != nil {
		p.logger.Warn(ctx, err, "Ignoring unreadable globals", "locale", email.Locale)
		globals = types.NewPlaceholders()
	}

	rendered, failures := p.Render(doc, globals)
	for _, failure := range failures {
		fail(failure.Target, failure.Err)
	}
	result.Rendered = rendered

	if p.opts.DryRun {
		return result
	}
	for _, target := range p.opts.Targets {
		content, ok := rendered[target]
		if !ok {
			continue
		}
		path, err := p.writer.Write(email, target, content)
		if err != nil {
			fail(target.String(), err)
			continue
		}
		result.Artifacts[target] = path
	}

	p.logger.Debug(ctx, "Processed email", "email", email.Name, "locale", email.Locale,
		"artifacts", len(result.Artifacts), "failures", len(result.Failures))
	return result
}

// Render renders doc to every configured target. Globals are only visible to
// the HTML template. A failing target does not prevent the others.
func (p *Pipeline) Render(doc types.Document, globals types.Placeholders) (map[types.Target]string, []perrors.RenderFailure) {
	rendered := make(map[types.Target]string, len(p.opts.Targets))
	var failures []perrors.RenderFailure

	for _, target := range p.opts.Targets {
		values := doc.Content
		if target == types.TargetHTML {
			values = doc.Content.Merge(globals)
		}

		r, err := renderer.New(target, p.opts.Render, doc.Template, doc.Locale)
		if err == nil {
			var out string
			out, err = r.Render(values)
			if err == nil {
				rendered[target] = out
				continue
			}
		}

		var pe *perrors.ParserError
		if errors.As(err, &pe) && pe.Email == "" {
			pe.WithEmail(doc.Name, doc.Locale)
		}
		failures = append(failures, perrors.RenderFailure{
			Email:  doc.Name,
			Locale: doc.Locale,
			Target: target.String(),
			Err:    err,
		})
	}
	return rendered, failures
}

func (p *Pipeline) localeGlobals(locale string) (types.Placeholders, error) {
	p.globalMu.Lock()
	defer p.globalMu.Unlock()

	if globals, ok := p.globals[locale]; ok {
		return globals, nil
	}
	globals, err := reader.ReadGlobals(p.opts.SourceDir, locale)
	if err != nil {
		return types.Placeholders{}, err
	}
	p.globals[locale] = globals
	return globals, nil
}

// InvalidateGlobals drops the cached globals so the next run reads them again.
func (p *Pipeline) InvalidateGlobals() {
	p.globalMu.Lock()
	defer p.globalMu.Unlock()
	p.globals = make(map[string]types.Placeholders)
}

// Summary renders a one line description of a report.
func (r *Report) Summary() string {
	emails := make(map[string]struct{})
	for _, result := range r.Results {
		emails[result.Email.Name] = struct{}{}
	}
	return fmt.Sprintf("%d documents (%d emails), %d rendered, %d skipped, %d failed, %d artifacts in %s",
		r.Metrics.TotalEmails, len(emails), r.Metrics.RenderedEmails, r.Metrics.SkippedEmails,
		r.Metrics.FailedEmails, r.Metrics.ArtifactsWritten, r.Duration.Round(time.Millisecond))
}
