package renderer

import (
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	cssparser "github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// styleRule is one selector of a parsed rule with the rule's declarations.
type styleRule struct {
	selector     cascadia.Sel
	declarations []*css.Declaration
	order        int
}

// Stylesheet holds the rules that can be inlined onto elements.
type Stylesheet struct {
	rules []styleRule
}

// ParseStylesheet parses CSS text. At-rules, pseudo-element selectors and
// selectors cascadia cannot parse are dropped since they never apply to an
// element's style attribute.
func ParseStylesheet(text string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	if strings.TrimSpace(text) == "" {
		return sheet, nil
	}

	parsed, err := cssparser.Parse(text)
	if err != nil {
		return nil, err
	}

	order := 0
	for _, rule := range parsed.Rules {
		if rule.Kind != css.QualifiedRule || len(rule.Declarations) == 0 {
			continue
		}
		for _, selector := range rule.Selectors {
			sel, err := cascadia.Parse(selector)
			if err != nil || sel.PseudoElement() != "" {
				continue
			}
			sheet.rules = append(sheet.rules, styleRule{
				selector:     sel,
				declarations: rule.Declarations,
				order:        order,
			})
			order++
		}
	}
	return sheet, nil
}

// Empty reports whether the stylesheet has no applicable rule.
func (s *Stylesheet) Empty() bool {
	return s == nil || len(s.rules) == 0
}

// cascade ranks, lowest first.
const (
	rankRule = iota
	rankInline
	rankRuleImportant
	rankInlineImportant
)

type candidate struct {
	declaration *css.Declaration
	rank        int
	specificity cascadia.Specificity
	order       int
}

// InlineFragment parses an HTML fragment, writes every matching rule onto the
// style attribute of the elements it applies to and serialises the fragment
// again. Top-level nodes are joined with a newline; whitespace-only top-level
// text is dropped.
func InlineFragment(fragment string, sheet *Stylesheet) (string, error) {
	doc := &html.Node{Type: html.DocumentNode}
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Html, Data: "html"}
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	doc.AppendChild(root)
	root.AppendChild(body)

	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}
	for _, node := range nodes {
		body.AppendChild(node)
	}

	if !sheet.Empty() {
		for node := body.FirstChild; node != nil; node = node.NextSibling {
			applyRules(node, sheet)
		}
	}

	parts := make([]string, 0, len(nodes))
	for node := body.FirstChild; node != nil; node = node.NextSibling {
		if node.Type == html.TextNode && strings.TrimSpace(node.Data) == "" {
			continue
		}
		var b strings.Builder
		if err := html.Render(&b, node); err != nil {
			return "", err
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n"), nil
}

func applyRules(node *html.Node, sheet *Stylesheet) {
	if node.Type == html.ElementNode {
		inlineStyle(node, sheet)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		applyRules(child, sheet)
	}
}

func inlineStyle(node *html.Node, sheet *Stylesheet) {
	var candidates []candidate
	for _, rule := range sheet.rules {
		if !rule.selector.Match(node) {
			continue
		}
		for _, decl := range rule.declarations {
			rank := rankRule
			if decl.Important {
				rank = rankRuleImportant
			}
			candidates = append(candidates, candidate{
				declaration: decl,
				rank:        rank,
				specificity: rule.selector.Specificity(),
				order:       rule.order,
			})
		}
	}
	if len(candidates) == 0 {
		return
	}

	styleIndex := -1
	for i, attr := range node.Attr {
		if attr.Key == "style" {
			styleIndex = i
			if existing, err := cssparser.ParseDeclarations(terminateDeclarations(attr.Val)); err == nil {
				for _, decl := range existing {
					rank := rankInline
					if decl.Important {
						rank = rankInlineImportant
					}
					candidates = append(candidates, candidate{declaration: decl, rank: rank})
				}
			}
			break
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.specificity != b.specificity {
			return a.specificity.Less(b.specificity)
		}
		return a.order < b.order
	})

	var properties []string
	values := make(map[string]string)
	for _, c := range candidates {
		property := strings.ToLower(strings.TrimSpace(c.declaration.Property))
		if _, seen := values[property]; !seen {
			properties = append(properties, property)
		}
		value := strings.TrimSpace(c.declaration.Value)
		if c.declaration.Important {
			value += " !important"
		}
		values[property] = value
	}

	declarations := make([]string, len(properties))
	for i, property := range properties {
		declarations[i] = property + ": " + values[property]
	}
	style := strings.Join(declarations, "; ")

	if styleIndex >= 0 {
		node.Attr[styleIndex].Val = style
		return
	}
	node.Attr = append(node.Attr, html.Attribute{Key: "style", Val: style})
}

// terminateDeclarations ends a style attribute with a semicolon; the parser
// drops a final declaration that has none.
func terminateDeclarations(style string) string {
	return strings.TrimRight(strings.TrimSpace(style), ";") + ";"
}
