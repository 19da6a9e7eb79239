// Package scanner discovers email source documents on disk.
//
// Documents are located through a path pattern relative to the source
// directory, such as "{locale}/{name}.xml". The {name} and {locale}
// parameters are required; other {param} segments match any single path
// element, and glob wildcards (including **) are allowed in the literal parts.
// The per-locale globals document is never reported as an email.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/logging"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// DefaultPattern is the default location of source documents.
const DefaultPattern = "{locale}/{name}.xml"

const (
	paramName   = "name"
	paramLocale = "locale"
)

var paramPattern = regexp.MustCompile(`\{(\w+)\}`)

// Filter narrows a scan. Empty fields match everything.
type Filter struct {
	Names   []string
	Locales []string
}

func (f Filter) match(email types.Email) bool {
	return matchAny(f.Names, email.Name) && matchAny(f.Locales, email.Locale)
}

func matchAny(values []string, value string) bool {
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// EmailScanner resolves the document pattern against a source directory.
type EmailScanner struct {
	srcDir  string
	pattern string
	glob    string
	matcher *regexp.Regexp
	logger  logging.Logger
}

// ParsePattern returns the parameters of pattern in order of appearance and
// fails with ErrMissingPatternParam when {name} or {locale} is absent.
func ParsePattern(pattern string) ([]string, error) {
	var params []string
	for _, match := range paramPattern.FindAllStringSubmatch(pattern, -1) {
		params = append(params, match[1])
	}
	for _, required := range []string{paramName, paramLocale} {
		if !matchAny(params, required) {
			return nil, perrors.NewConfigError(perrors.ErrCodeMissingPatternParam,
				fmt.Sprintf("{%s} is a required parameter in the pattern but it is not present in %s", required, pattern)).
				WithContext("pattern", pattern)
		}
	}
	return params, nil
}

// New creates a scanner for srcDir. The pattern must be relative and stay
// inside the source directory.
func New(srcDir, pattern string, logger logging.Logger) (*EmailScanner, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := ParsePattern(pattern); err != nil {
		return nil, err
	}
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	abs, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, perrors.NewConfigError(perrors.ErrCodeInvalidPath, "resolve source directory").
			WithFile(srcDir)
	}

	return &EmailScanner{
		srcDir:  abs,
		pattern: filepath.ToSlash(pattern),
		glob:    paramPattern.ReplaceAllString(filepath.ToSlash(pattern), "*"),
		matcher: compileMatcher(filepath.ToSlash(pattern)),
		logger:  logger.WithComponent("scanner"),
	}, nil
}

func validatePattern(pattern string) error {
	slashed := filepath.ToSlash(pattern)
	if filepath.IsAbs(pattern) || strings.HasPrefix(slashed, "/") {
		return perrors.NewConfigError(perrors.ErrCodeInvalidPath, "pattern must be relative to the source directory").
			WithContext("pattern", pattern)
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return perrors.NewConfigError(perrors.ErrCodePathTraversal, "pattern must not leave the source directory").
				WithContext("pattern", pattern)
		}
	}
	return nil
}

// compileMatcher turns the pattern into a regular expression over slash
// separated relative paths with one capture group per parameter.
func compileMatcher(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	last := 0
	seen := make(map[string]bool)
	for _, loc := range paramPattern.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(globToRegexp(pattern[last:loc[0]]))
		param := pattern[loc[2]:loc[3]]
		if (param == paramName || param == paramLocale) && !seen[param] {
			seen[param] = true
			b.WriteString("(?P<" + param + ">[^/]+)")
		} else {
			b.WriteString("[^/]+")
		}
		last = loc[1]
	}
	b.WriteString(globToRegexp(pattern[last:]))
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func globToRegexp(literal string) string {
	var b strings.Builder
	for i := 0; i < len(literal); i++ {
		switch c := literal[i]; c {
		case '*':
			if i+1 < len(literal) && literal[i+1] == '*' {
				i++
				if i+1 < len(literal) && literal[i+1] == '/' {
					i++
					b.WriteString("(?:.*/)?")
				} else {
					b.WriteString(".*")
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// SourceDir returns the absolute source directory.
func (s *EmailScanner) SourceDir() string {
	return s.srcDir
}

// Pattern returns the document pattern.
func (s *EmailScanner) Pattern() string {
	return s.pattern
}

// Match maps a path to the email it holds. ok is false for paths outside the
// pattern, files with another extension and the globals document.
func (s *EmailScanner) Match(path string) (email types.Email, ok bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.Email{}, false
	}
	rel, err := filepath.Rel(s.srcDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return types.Email{}, false
	}
	rel = filepath.ToSlash(rel)
	if filepath.Ext(rel) != filepath.Ext(s.pattern) {
		return types.Email{}, false
	}

	match := s.matcher.FindStringSubmatch(rel)
	if match == nil {
		return types.Email{}, false
	}
	email = types.Email{Path: abs}
	for i, name := range s.matcher.SubexpNames() {
		switch name {
		case paramName:
			email.Name = match[i]
		case paramLocale:
			email.Locale = match[i]
		}
	}
	if email.Name == "" || email.Locale == "" || isGlobals(email.Name, s.pattern) {
		return types.Email{}, false
	}
	return email, true
}

func isGlobals(name, pattern string) bool {
	return name == types.GlobalsName || name == types.GlobalsName+filepath.Ext(pattern)
}

// Scan returns every email matching filter, sorted by path.
func (s *EmailScanner) Scan(filter Filter) ([]types.Email, error) {
	paths, err := doublestar.Glob(filepath.Join(s.srcDir, filepath.FromSlash(s.glob)))
	if err != nil {
		return nil, perrors.NewConfigError(perrors.ErrCodeInvalidPath, "invalid document pattern").
			WithContext("pattern", s.pattern)
	}
	sort.Strings(paths)

	emails := make([]types.Email, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		email, ok := s.Match(path)
		if !ok || !filter.match(email) {
			continue
		}
		s.logger.Debug(context.Background(), "Found email", "name", email.Name, "locale", email.Locale, "path", email.Path)
		emails = append(emails, email)
	}
	return emails, nil
}

// ScanAll returns every email.
func (s *EmailScanner) ScanAll() ([]types.Email, error) {
	return s.Scan(Filter{})
}

// Find returns the email called name in locale.
func (s *EmailScanner) Find(name, locale string) (types.Email, bool, error) {
	emails, err := s.Scan(Filter{Names: []string{name}, Locales: []string{locale}})
	if err != nil || len(emails) == 0 {
		return types.Email{}, false, err
	}
	return emails[0], true, nil
}

// Locales returns the sorted locales that hold at least one email.
func (s *EmailScanner) Locales() ([]string, error) {
	emails, err := s.ScanAll()
	if err != nil {
		return nil, err
	}
	return distinct(emails, func(e types.Email) string { return e.Locale }), nil
}

// Names returns the sorted email names.
func (s *EmailScanner) Names() ([]string, error) {
	emails, err := s.ScanAll()
	if err != nil {
		return nil, err
	}
	return distinct(emails, func(e types.Email) string { return e.Name }), nil
}

// Path returns where the document of name in locale lives, whether or not it
// exists yet. Parameters other than {name} and {locale} are left as is.
func (s *EmailScanner) Path(name, locale string) string {
	rel := strings.ReplaceAll(s.pattern, "{"+paramName+"}", name)
	rel = strings.ReplaceAll(rel, "{"+paramLocale+"}", locale)
	return filepath.Join(s.srcDir, filepath.FromSlash(rel))
}

func distinct(emails []types.Email, key func(types.Email) string) []string {
	seen := make(map[string]struct{})
	values := []string{}
	for _, email := range emails {
		k := key(email)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, k)
	}
	sort.Strings(values)
	return values
}
