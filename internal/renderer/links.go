package renderer

import "regexp"

var (
	linkPattern  = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	tokenPattern = regexp.MustCompile(`\{\{([\p{L}\p{N}_]+)\}\}`)
)

// RewriteLinks replaces every markdown link with a plain-text form: the
// display text alone when the URL is empty or equal to it, otherwise
// "display (url)".
func RewriteLinks(text string) string {
	return linkPattern.ReplaceAllStringFunc(text, func(span string) string {
		match := linkPattern.FindStringSubmatch(span)
		display, url := match[1], match[2]
		if url == "" || display == url {
			return display
		}
		return display + " (" + url + ")"
	})
}
