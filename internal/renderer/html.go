package renderer

import (
	"context"
	"strings"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/logging"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// HTMLRenderer renders the HTML body of one email in one locale.
type HTMLRenderer struct {
	template  types.Template
	opts      Options
	locale    string
	resources *Resources
	logger    logging.Logger
}

// NewHTMLRenderer creates an HTML renderer for tmpl in locale.
func NewHTMLRenderer(tmpl types.Template, opts Options, locale string) *HTMLRenderer {
	logger := opts.logger().WithComponent("html_renderer")
	opts.Logger = logger
	return &HTMLRenderer{
		template:  tmpl,
		opts:      opts,
		locale:    locale,
		resources: opts.resources(),
		logger:    logger,
	}
}

// Render substitutes every {{name}} token of the template. The subject is
// inserted raw and base_url resolves to the images URL; every other value is
// converted from markdown and styled with the template's stylesheets.
func (r *HTMLRenderer) Render(placeholders types.Placeholders) (string, error) {
	styles := r.resources.Styles(r.template.Styles)
	body, err := r.resources.Template(r.template.Name)
	if err != nil {
		return "", err
	}

	sheet, err := ParseStylesheet(styles)
	if err != nil {
		return "", perrors.Wrap(err, perrors.ErrorTypeRender, perrors.ErrCodeInvalidDocument, "parse stylesheets").
			WithContext("template", r.template.Name)
	}

	var b strings.Builder
	last := 0
	for _, loc := range tokenPattern.FindAllStringSubmatchIndex(body, -1) {
		b.WriteString(body[last:loc[0]])
		last = loc[1]

		name := body[loc[2]:loc[3]]
		value, err := r.resolve(name, placeholders, sheet)
		if err != nil {
			return "", err
		}
		b.WriteString(value)
	}
	b.WriteString(body[last:])

	out := b.String()
	if IsRightToLeft(r.locale, r.opts.RightToLeft) {
		out = wrapRightToLeft(out)
	}
	return out, nil
}

func (r *HTMLRenderer) resolve(name string, placeholders types.Placeholders, sheet *Stylesheet) (string, error) {
	if name == types.BaseURLName {
		return r.opts.Images, nil
	}

	value, ok := placeholders.Get(name)
	if !ok {
		if r.opts.Strict {
			return "", perrors.MissingTemplatePlaceholder(name).WithContext("template", r.template.Name)
		}
		r.logger.Debug(context.Background(), "Dropping template token without value",
			"placeholder", name, "template", r.template.Name, "locale", r.locale)
		return "", nil
	}

	if name == types.SubjectName {
		return value, nil
	}

	fragment, err := InlineFragment(markdownToHTML(value, r.opts.Sanitize), sheet)
	if err != nil {
		return "", perrors.Wrap(err, perrors.ErrorTypeRender, perrors.ErrCodeInvalidDocument, "inline styles").
			WithContext("placeholder", name)
	}
	return fragment, nil
}
