// Package renderer turns the placeholders of a parsed email into its three
// artifacts: the subject line, the plain-text body and the HTML body.
//
// The subject and text renderers work on placeholder values only. The HTML
// renderer loads a template and its stylesheets, converts every placeholder
// from markdown, inlines the stylesheet rules onto the generated elements and
// wraps right-to-left locales in a dir="rtl" container. Renderers hold no
// mutable state and are safe for concurrent use.
package renderer

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/marykravets/ks-email-parser/internal/logging"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// Renderer produces one artifact from an email's placeholders.
type Renderer interface {
	Render(placeholders types.Placeholders) (string, error)
}

// Options configures rendering.
type Options struct {
	// Templates is the directory holding HTML templates and stylesheets
	Templates string
	// FS overrides Templates when set
	FS fs.FS
	// Images is the base URL substituted for {{base_url}}
	Images string
	// RightToLeft lists the locales rendered right to left
	RightToLeft []string
	// Strict fails on template tokens without a placeholder value
	Strict bool
	// Sanitize runs converted markdown through an HTML sanitiser
	Sanitize bool
	// TextIgnore lists placeholders left out of the text body
	TextIgnore []string
	Logger     logging.Logger
}

// DefaultOptions returns strict options with the usual right-to-left locales.
func DefaultOptions() Options {
	return Options{
		Templates:   "templates_html",
		RightToLeft: []string{"ar", "he"},
		Strict:      true,
	}
}

func (o Options) resources() *Resources {
	if o.FS != nil {
		return NewResources(o.FS, o.Logger)
	}
	return NewResources(os.DirFS(o.Templates), o.Logger)
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return logging.NewNopLogger()
	}
	return o.Logger
}

// New returns the renderer for target. The template and locale are only used
// by the HTML renderer.
func New(target types.Target, opts Options, tmpl types.Template, locale string) (Renderer, error) {
	switch target {
	case types.TargetSubject:
		return NewSubjectRenderer(), nil
	case types.TargetText:
		return NewTextRenderer(opts.TextIgnore), nil
	case types.TargetHTML:
		return NewHTMLRenderer(tmpl, opts, locale), nil
	default:
		return nil, fmt.Errorf("unknown render target %d", int(target))
	}
}
