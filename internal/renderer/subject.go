package renderer

import (
	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// SubjectRenderer renders the subject line.
type SubjectRenderer struct{}

// NewSubjectRenderer creates a subject renderer.
func NewSubjectRenderer() *SubjectRenderer {
	return &SubjectRenderer{}
}

// Render returns the subject placeholder verbatim.
func (r *SubjectRenderer) Render(placeholders types.Placeholders) (string, error) {
	subject, ok := placeholders.Get(types.SubjectName)
	if !ok || subject == "" {
		return "", perrors.MissingSubject()
	}
	return subject, nil
}
