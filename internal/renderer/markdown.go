package renderer

import (
	"sync"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

const markdownExtensions = parser.NoIntraEmphasis |
	parser.Tables |
	parser.FencedCode |
	parser.Autolink |
	parser.Strikethrough

var (
	ugcPolicy     *bluemonday.Policy
	ugcPolicyOnce sync.Once
)

// sanitizePolicy returns the UGC policy shared by every render.
func sanitizePolicy() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

// markdownToHTML converts one placeholder value. The gomarkdown parser keeps
// state between documents, so a new one is built per call.
func markdownToHTML(source string, sanitize bool) string {
	p := parser.NewWithExtensions(markdownExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.FlagsNone})
	out := markdown.ToHTML([]byte(source), p, r)
	if sanitize {
		out = sanitizePolicy().SanitizeBytes(out)
	}
	return string(out)
}
