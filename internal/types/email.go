// Package types provides common type definitions used throughout ks-email-parser.
// This package contains shared types to avoid circular dependencies between the
// scanner, reader, placeholder, renderer and build packages.
package types

import (
	"path/filepath"
	"sort"
)

// SubjectName is the placeholder holding the email subject line.
const SubjectName = "subject"

// BaseURLName is the builtin template token resolved to the images base URL.
const BaseURLName = "base_url"

// GlobalsName is the per-locale document whose placeholders every HTML
// template of that locale can use. It is not an email.
const GlobalsName = "global"

// Email identifies one source document discovered on disk: an email name in a
// given locale and the file that holds it.
type Email struct {
	// Name is the email identifier shared by all locales (e.g. "welcome")
	Name string `json:"name" yaml:"name"`
	// Locale is the locale code taken from the path (e.g. "en", "ar")
	Locale string `json:"locale" yaml:"locale"`
	// Path is the absolute path to the source document
	Path string `json:"path" yaml:"path"`
}

// FileName returns the base name of the source document.
func (e Email) FileName() string {
	return filepath.Base(e.Path)
}

// Template describes the HTML template an email is rendered into and the
// stylesheets, in order, whose rules are inlined into the rendered content.
type Template struct {
	Name   string   `json:"name" yaml:"name"`
	Styles []string `json:"styles" yaml:"styles"`
}

// Entry is one named placeholder value in document order.
type Entry struct {
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

// Placeholders is an ordered placeholder name to content mapping. Names are
// unique; iteration follows the order entries were added, which mirrors the
// layout of the source document.
type Placeholders struct {
	entries []Entry
	index   map[string]int
}

// NewPlaceholders builds Placeholders from entries in order. A repeated name
// replaces the earlier value but keeps its original position.
func NewPlaceholders(entries ...Entry) Placeholders {
	p := Placeholders{index: make(map[string]int, len(entries))}
	for _, entry := range entries {
		p.Set(entry.Name, entry.Content)
	}
	return p
}

// PlaceholdersFromMap builds Placeholders from a plain map. Maps carry no
// order, so entries are sorted by name.
func PlaceholdersFromMap(values map[string]string) Placeholders {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	p := Placeholders{index: make(map[string]int, len(values))}
	for _, name := range names {
		p.Set(name, values[name])
	}
	return p
}

// Set adds or replaces a placeholder value.
func (p *Placeholders) Set(name, content string) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[name]; ok {
		p.entries[i].Content = content
		return
	}
	p.index[name] = len(p.entries)
	p.entries = append(p.entries, Entry{Name: name, Content: content})
}

// Get returns the content for name and whether it is present.
func (p Placeholders) Get(name string) (string, bool) {
	i, ok := p.index[name]
	if !ok {
		return "", false
	}
	return p.entries[i].Content, true
}

// Has reports whether name is present.
func (p Placeholders) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Len returns the number of placeholders.
func (p Placeholders) Len() int {
	return len(p.entries)
}

// Entries returns a copy of the entries in document order.
func (p Placeholders) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Names returns placeholder names in document order.
func (p Placeholders) Names() []string {
	names := make([]string, len(p.entries))
	for i, entry := range p.entries {
		names[i] = entry.Name
	}
	return names
}

// Merge returns a copy of p with every entry of other whose name p does not
// already define appended at the end.
func (p Placeholders) Merge(other Placeholders) Placeholders {
	merged := NewPlaceholders(p.entries...)
	for _, entry := range other.entries {
		if !merged.Has(entry.Name) {
			merged.Set(entry.Name, entry.Content)
		}
	}
	return merged
}

// Document is a parsed source document ready for rendering.
type Document struct {
	Email
	Template Template
	Content  Placeholders
}

// Order returns the document's placeholders in layout order.
func (d Document) Order() []Entry {
	return d.Content.Entries()
}

// Target enumerates the rendered artifacts produced per email and locale.
type Target int

const (
	TargetSubject Target = iota
	TargetText
	TargetHTML
)

// String returns the string representation of the Target
func (t Target) String() string {
	switch t {
	case TargetSubject:
		return "subject"
	case TargetText:
		return "text"
	case TargetHTML:
		return "html"
	default:
		return "unknown"
	}
}

// Extension returns the artifact file extension for the target.
func (t Target) Extension() string {
	switch t {
	case TargetSubject:
		return ".subject"
	case TargetText:
		return ".text"
	case TargetHTML:
		return ".html"
	default:
		return ""
	}
}

// Targets lists every render target in output order.
func Targets() []Target {
	return []Target{TargetSubject, TargetText, TargetHTML}
}
