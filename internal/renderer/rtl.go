package renderer

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	rtlOpen  = "<div dir=\"rtl\">\n"
	rtlClose = "\n</div>"
)

// IsRightToLeft reports whether locale is one of the right-to-left locales.
// A regional variant matches its base language, so "ar-EG" matches "ar".
func IsRightToLeft(locale string, rightToLeft []string) bool {
	if locale == "" {
		return false
	}
	tag, err := language.Parse(locale)
	for _, candidate := range rightToLeft {
		if strings.EqualFold(candidate, locale) {
			return true
		}
		if err != nil {
			continue
		}
		other, perr := language.Parse(candidate)
		if perr != nil {
			continue
		}
		base, _ := tag.Base()
		otherBase, _ := other.Base()
		if base == otherBase {
			return true
		}
	}
	return false
}

// wrapRightToLeft wraps the content of the body element once. Without a body
// element the whole document is wrapped.
func wrapRightToLeft(document string) string {
	lower := strings.ToLower(document)
	start := strings.Index(lower, "<body")
	end := strings.LastIndex(lower, "</body>")
	if start < 0 || end < 0 {
		return rtlOpen + document + rtlClose
	}
	open := strings.IndexByte(document[start:], '>')
	if open < 0 || start+open+1 > end {
		return rtlOpen + document + rtlClose
	}
	contentStart := start + open + 1
	return document[:contentStart] + rtlOpen + document[contentStart:end] + rtlClose + document[end:]
}
