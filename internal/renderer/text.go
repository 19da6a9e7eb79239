package renderer

import (
	"strings"

	"github.com/marykravets/ks-email-parser/internal/types"
)

// TextSeparator joins placeholder values in the text body.
const TextSeparator = "\n\n"

// TextRenderer renders the plain-text body.
type TextRenderer struct {
	ignore map[string]struct{}
}

// NewTextRenderer creates a text renderer leaving out the ignored names. The
// subject is always left out.
func NewTextRenderer(ignore []string) *TextRenderer {
	set := make(map[string]struct{}, len(ignore)+1)
	for _, name := range ignore {
		set[name] = struct{}{}
	}
	set[types.SubjectName] = struct{}{}
	return &TextRenderer{ignore: set}
}

// Render joins the non-empty placeholder values in document order with links
// rewritten to plain text. It never fails.
func (r *TextRenderer) Render(placeholders types.Placeholders) (string, error) {
	parts := make([]string, 0, placeholders.Len())
	for _, entry := range placeholders.Entries() {
		if _, skip := r.ignore[entry.Name]; skip {
			continue
		}
		value := strings.TrimSpace(entry.Content)
		if value == "" {
			continue
		}
		parts = append(parts, RewriteLinks(value))
	}
	return strings.Join(parts, TextSeparator), nil
}
