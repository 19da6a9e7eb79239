package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// DefaultLocale names the output folder of emails without a locale.
const DefaultLocale = "en"

// ArtifactWriter stores rendered artifacts under
// <destination>/<locale>/<name><extension>.
type ArtifactWriter struct {
	destination string
}

// NewArtifactWriter creates a writer rooted at destination.
func NewArtifactWriter(destination string) *ArtifactWriter {
	return &ArtifactWriter{destination: destination}
}

// Path returns the artifact location of email for target.
func (w *ArtifactWriter) Path(email types.Email, target types.Target) string {
	locale := email.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	return filepath.Join(w.destination, locale, email.Name+target.Extension())
}

// Write atomically replaces the artifact of email for target, creating the
// locale folder on demand.
func (w *ArtifactWriter) Write(email types.Email, target types.Target, content string) (string, error) {
	path := w.Path(email, target)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", perrors.WrapIO(err, "create output folder", filepath.Dir(path))
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return "", perrors.WrapIO(err, "write artifact", path)
	}
	return path, nil
}
