package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marykravets/ks-email-parser/internal/config"
	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/placeholder"
	"github.com/marykravets/ks-email-parser/internal/renderer"
	"github.com/marykravets/ks-email-parser/internal/types"
)

type fixture struct {
	root      string
	src       string
	templates string
	target    string
	emails    map[string]types.Email
	store     *placeholder.Store
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func document(strings ...string) string {
	out := `<resources template="basic.html" style="basic.css">`
	for i := 0; i+1 < len(strings); i += 2 {
		out += `<string name="` + strings[i] + `">` + strings[i+1] + `</string>`
	}
	return out + `</resources>`
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:      root,
		src:       filepath.Join(root, "src"),
		templates: filepath.Join(root, "templates_html"),
		target:    filepath.Join(root, "target"),
		emails:    make(map[string]types.Email),
	}

	write(t, filepath.Join(f.templates, "basic.html"), "<body>{{content}}{{footer}}</body>")
	write(t, filepath.Join(f.templates, "basic.css"), "p {color: red}")
	write(t, filepath.Join(f.src, "en", "global.xml"), `<resources><string name="footer">Bye</string></resources>`)

	docs := map[string]string{
		"en": document("subject", "Hi", "content", "Hello {{user}} [you](http://x)"),
		"ar": document("subject", "Marhaba", "content", "Ahlan {{user}}"),
		"fr": document("subject", "Salut", "content", "Salut {{user}} {{extra}}"),
	}
	for locale, doc := range docs {
		path := filepath.Join(f.src, locale, "welcome.xml")
		write(t, path, doc)
		f.emails[locale] = types.Email{Name: "welcome", Locale: locale, Path: path}
	}

	store, err := placeholder.NewStore(4, nil)
	require.NoError(t, err)
	_, err = store.Regenerate(f.src, []types.Email{f.emails["en"]}, "en")
	require.NoError(t, err)
	f.store = store
	return f
}

func (f *fixture) options() Options {
	return Options{
		SourceDir:   f.src,
		Destination: f.target,
		Render: renderer.Options{
			Templates:   f.templates,
			Images:      "https://img",
			RightToLeft: []string{"ar"},
			Strict:      false,
		},
		Workers: 2,
	}
}

func readArtifact(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPipelineRun(t *testing.T) {
	f := newFixture(t)
	p := NewPipeline(f.options(), f.store, nil)

	report, err := p.Run(context.Background(), []types.Email{f.emails["ar"], f.emails["en"], f.emails["fr"]})
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	en := report.Results[1]
	assert.Equal(t, "en", en.Email.Locale)
	assert.True(t, en.OK())
	assert.Len(t, en.Artifacts, 3)

	assert.Equal(t, "Hi", readArtifact(t, filepath.Join(f.target, "en", "welcome.subject")))
	assert.Equal(t, "Hello {{user}} you (http://x)", readArtifact(t, filepath.Join(f.target, "en", "welcome.text")))
	assert.Equal(t,
		`<body><p style="color: red">Hello {{user}} <a href="http://x">you</a></p><p style="color: red">Bye</p></body>`,
		readArtifact(t, filepath.Join(f.target, "en", "welcome.html")))

	ar := report.Results[0]
	assert.True(t, ar.OK())
	assert.Equal(t,
		"<body><div dir=\"rtl\">\n<p style=\"color: red\">Ahlan {{user}}</p>\n</div></body>",
		ar.Rendered[types.TargetHTML], "globals of another locale are not visible")

	fr := report.Results[2]
	assert.True(t, fr.Skipped)
	assert.False(t, fr.Validation.Valid())
	require.Len(t, fr.Failures, 1)
	assert.Equal(t, ValidationTarget, fr.Failures[0].Target)
	assert.True(t, errors.Is(fr.Failures[0].Err, perrors.ErrPlaceholdersInvalid))
	_, err = os.Stat(filepath.Join(f.target, "fr", "welcome.html"))
	assert.True(t, os.IsNotExist(err))

	assert.True(t, report.HasFailures())
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, int64(3), report.Metrics.TotalEmails)
	assert.Equal(t, int64(2), report.Metrics.RenderedEmails)
	assert.Equal(t, int64(1), report.Metrics.SkippedEmails)
	assert.Equal(t, int64(6), report.Metrics.ArtifactsWritten)
	assert.Contains(t, report.Summary(), "3 documents (1 emails)")
}

func TestPipelineForceRendersInconsistentEmails(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.Force = true

	result := NewPipeline(opts, f.store, nil).Process(context.Background(), f.emails["fr"])
	assert.True(t, result.OK())
	assert.False(t, result.Validation.Valid())
	assert.Equal(t, "Salut", readArtifact(t, filepath.Join(f.target, "fr", "welcome.subject")))
}

func TestPipelineContinuesAfterTargetFailure(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.src, "en", "nosubject.xml")
	write(t, path, document("content", "Body"))
	email := types.Email{Name: "nosubject", Locale: "en", Path: path}

	result := NewPipeline(f.options(), f.store, nil).Process(context.Background(), email)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "subject", result.Failures[0].Target)
	assert.True(t, errors.Is(result.Failures[0].Err, perrors.ErrMissingSubject))

	var pe *perrors.ParserError
	require.True(t, errors.As(result.Failures[0].Err, &pe))
	assert.Equal(t, "nosubject", pe.Email)

	assert.Contains(t, result.Artifacts, types.TargetText)
	assert.Contains(t, result.Artifacts, types.TargetHTML)
	assert.NotContains(t, result.Artifacts, types.TargetSubject)
}

func TestPipelineStrictMissingTemplatePlaceholder(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.Render.Strict = true
	write(t, filepath.Join(f.templates, "basic.html"), "<body>{{content}}{{unknown}}</body>")

	result := NewPipeline(opts, f.store, nil).Process(context.Background(), f.emails["en"])
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "html", result.Failures[0].Target)
	assert.True(t, errors.Is(result.Failures[0].Err, perrors.ErrMissingTemplatePlaceholder))
}

func TestPipelineDryRun(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.DryRun = true

	result := NewPipeline(opts, f.store, nil).Process(context.Background(), f.emails["en"])
	assert.True(t, result.OK())
	assert.Equal(t, "Hi", result.Rendered[types.TargetSubject])
	assert.Empty(t, result.Artifacts)

	_, err := os.Stat(f.target)
	assert.True(t, os.IsNotExist(err))
}

func TestPipelineWithoutShapesFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.store.Path(f.src)))
	f.store.Purge()

	result := NewPipeline(f.options(), f.store, nil).Process(context.Background(), f.emails["fr"])
	assert.True(t, result.OK(), "validation is vacuous without shapes")
}

func TestPipelineSelectedTargets(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.Targets = []types.Target{types.TargetText}

	result := NewPipeline(opts, f.store, nil).Process(context.Background(), f.emails["en"])
	assert.True(t, result.OK())
	assert.Len(t, result.Artifacts, 1)
	assert.Contains(t, result.Artifacts, types.TargetText)
}

func TestPipelineCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(f.options(), f.store, nil).Run(ctx, []types.Email{f.emails["en"]})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArtifactWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(dir)

	path, err := w.Write(types.Email{Name: "welcome"}, types.TargetHTML, "<p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultLocale, "welcome.html"), path)
	assert.Equal(t, "<p>x</p>", readArtifact(t, path))

	_, err = w.Write(types.Email{Name: "welcome"}, types.TargetHTML, "<p>y</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>y</p>", readArtifact(t, path))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Build.WriteText = false
	cfg.Render.Images = "https://img"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, []types.Target{types.TargetSubject, types.TargetHTML}, opts.Targets)
	assert.Equal(t, "src", opts.SourceDir)
	assert.Equal(t, "templates_html", opts.Render.Templates)
	assert.Equal(t, "https://img", opts.Render.Images)
	assert.True(t, opts.Render.Strict)
}

func TestBuildMetrics(t *testing.T) {
	m := NewBuildMetrics()
	assert.Equal(t, 0.0, m.GetSuccessRate())

	m.RecordEmail(EmailResult{Artifacts: map[types.Target]string{types.TargetText: "a"}})
	m.RecordEmail(EmailResult{Skipped: true})
	m.RecordEmail(EmailResult{Failures: []perrors.RenderFailure{{Target: "html"}}})
	m.RecordEmail(EmailResult{})

	snapshot := m.GetSnapshot()
	assert.Equal(t, int64(4), snapshot.TotalEmails)
	assert.Equal(t, int64(2), snapshot.RenderedEmails)
	assert.Equal(t, int64(1), snapshot.SkippedEmails)
	assert.Equal(t, int64(1), snapshot.FailedEmails)
	assert.Equal(t, int64(1), snapshot.ArtifactsWritten)
	assert.Equal(t, 50.0, m.GetSuccessRate())

	m.Reset()
	assert.Equal(t, int64(0), m.GetSnapshot().TotalEmails)
}
