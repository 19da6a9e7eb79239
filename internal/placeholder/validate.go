package placeholder

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FindingKind classifies a consistency problem.
type FindingKind int

const (
	MissingPlaceholder FindingKind = iota
	ExtraPlaceholder
	CountMismatch
)

// String returns the string representation of the FindingKind
func (k FindingKind) String() string {
	switch k {
	case MissingPlaceholder:
		return "missing"
	case ExtraPlaceholder:
		return "extra"
	case CountMismatch:
		return "count_mismatch"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k FindingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *FindingKind) UnmarshalText(text []byte) error {
	for _, kind := range []FindingKind{MissingPlaceholder, ExtraPlaceholder, CountMismatch} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown finding kind %q", text)
}

// Finding is one consistency problem of a locale. Expected and Actual are
// only meaningful for CountMismatch.
type Finding struct {
	Kind     FindingKind `json:"kind" yaml:"kind"`
	Name     string      `json:"name" yaml:"name"`
	Expected int         `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   int         `json:"actual,omitempty" yaml:"actual,omitempty"`
}

// MarshalJSON always writes both counts of a CountMismatch, zero included,
// and leaves them out for the other kinds.
func (f Finding) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind     FindingKind `json:"kind"`
		Name     string      `json:"name"`
		Expected *int        `json:"expected,omitempty"`
		Actual   *int        `json:"actual,omitempty"`
	}{Kind: f.Kind, Name: f.Name}
	if f.Kind == CountMismatch {
		out.Expected, out.Actual = &f.Expected, &f.Actual
	}
	return json.Marshal(out)
}

// String describes the finding in one line.
func (f Finding) String() string {
	switch f.Kind {
	case MissingPlaceholder:
		return fmt.Sprintf("missing placeholder %q", f.Name)
	case ExtraPlaceholder:
		return fmt.Sprintf("extra placeholder %q", f.Name)
	case CountMismatch:
		return fmt.Sprintf("placeholder %q should occur %d times but occurs %d", f.Name, f.Expected, f.Actual)
	default:
		return fmt.Sprintf("unknown finding for %q", f.Name)
	}
}

// Result is the outcome of validating one locale of one email.
type Result struct {
	Email    string    `json:"email" yaml:"email"`
	Locale   string    `json:"locale" yaml:"locale"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// Valid reports whether the locale has no findings.
func (r Result) Valid() bool {
	return len(r.Findings) == 0
}

// Summary joins the findings into one line, or returns "" when valid.
func (r Result) Summary() string {
	parts := make([]string, len(r.Findings))
	for i, finding := range r.Findings {
		parts[i] = finding.String()
	}
	return strings.Join(parts, "; ")
}

// Validate compares the counts of one locale against the expected shape.
// Every check runs, so one call reports all problems: expected names absent
// from actual, names in actual the shape does not know, and names whose
// counts differ. An expected count of zero is never reported missing.
func Validate(email, locale string, actual Counts, expected Shape) Result {
	result := Result{Email: email, Locale: locale, Findings: []Finding{}}

	for _, name := range sortedNames(expected) {
		if _, ok := actual[name]; !ok && expected[name] > 0 {
			result.Findings = append(result.Findings, Finding{Kind: MissingPlaceholder, Name: name})
		}
	}

	for _, name := range sortedNames(actual) {
		if _, ok := expected[name]; !ok {
			result.Findings = append(result.Findings, Finding{Kind: ExtraPlaceholder, Name: name})
		}
	}

	for _, name := range sortedNames(expected) {
		count, ok := actual[name]
		if !ok || count == expected[name] {
			continue
		}
		result.Findings = append(result.Findings, Finding{
			Kind:     CountMismatch,
			Name:     name,
			Expected: expected[name],
			Actual:   count,
		})
	}

	return result
}

// CrossCheck validates every locale of every email against the shape reduced
// from all of that email's locales, without consulting a stored config.
// Results are sorted by email then locale.
func CrossCheck(emailCounts map[string]map[string]Counts) []Result {
	var results []Result
	for _, email := range sortedNames(emailCounts) {
		localeCounts := emailCounts[email]
		shape := Reduce(localeCounts)
		for _, locale := range sortedNames(localeCounts) {
			results = append(results, Validate(email, locale, localeCounts[locale], shape))
		}
	}
	return results
}

func sortedNames[V any, M ~map[string]V](m M) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
