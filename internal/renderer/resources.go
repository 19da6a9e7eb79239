package renderer

import (
	"context"
	"io/fs"
	"path"
	"strings"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/logging"
)

const (
	htmlExtension = ".html"
	cssExtension  = ".css"
)

// Resources reads templates and stylesheets from a file system rooted at the
// templates directory.
type Resources struct {
	fsys   fs.FS
	logger logging.Logger
}

// NewResources creates a loader over fsys.
func NewResources(fsys fs.FS, logger logging.Logger) *Resources {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resources{fsys: fsys, logger: logger.WithComponent("resources")}
}

func resourcePath(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if !fs.ValidPath(clean) || clean == "." {
		return "", perrors.NewValidationError(perrors.ErrCodePathTraversal, "invalid resource path").
			WithContext("resource", name)
	}
	return clean, nil
}

// Template returns the body of the named template.
func (r *Resources) Template(name string) (string, error) {
	p, err := resourcePath(name)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return "", perrors.Wrap(err, perrors.ErrorTypeRender, perrors.ErrCodeTemplateNotFound, "load template").
			WithContext("template", name)
	}
	return string(data), nil
}

// Styles concatenates the named stylesheets in order. Stylesheets that cannot
// be read contribute nothing.
func (r *Resources) Styles(names []string) string {
	var b strings.Builder
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, err := resourcePath(name)
		if err != nil {
			r.logger.Warn(context.Background(), err, "Skipping stylesheet", "style", name)
			continue
		}
		data, err := fs.ReadFile(r.fsys, p)
		if err != nil {
			r.logger.Debug(context.Background(), "Stylesheet not found", "style", name)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.Write(data)
	}
	return b.String()
}

// Listing groups the available templates by sub-directory and lists the
// stylesheets. Top-level templates are grouped under the empty key.
type Listing struct {
	Templates map[string][]string `json:"templates" yaml:"templates"`
	Styles    []string            `json:"styles" yaml:"styles"`
}

// List walks the resource tree in lexical order.
func (r *Resources) List() (Listing, error) {
	listing := Listing{Templates: make(map[string][]string), Styles: []string{}}
	err := fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch path.Ext(p) {
		case cssExtension:
			listing.Styles = append(listing.Styles, d.Name())
		case htmlExtension:
			dir := path.Dir(p)
			if dir == "." {
				dir = ""
			}
			listing.Templates[dir] = append(listing.Templates[dir], d.Name())
		}
		return nil
	})
	if err != nil {
		return Listing{}, perrors.WrapIO(err, "list resources", ".")
	}
	return listing, nil
}
