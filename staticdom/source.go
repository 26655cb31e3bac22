// Package staticdom materializes snip source trees from plain HTML
// without a browser. The cascade is an approximation: embedded <style>
// sheets and inline styles are applied with specificity and source
// order, a small user-agent default table stands in for real browser
// defaults, and relative units are left unresolved. External stylesheets
// and media queries are not fetched or evaluated. For full fidelity use
// the browser backend; this one exists for files, tests, and pipelines
// where launching Chrome is not an option.
package staticdom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/domsnip/snip"
)

// ErrNoMatch is returned by Select when the selector is valid but
// matches nothing in the document.
var ErrNoMatch = errors.New("staticdom: no element matches selector")

// Source is a parsed HTML document with approximated computed styles.
// It implements snip.StyleProvider and snip.VariableSource, so a single
// Source serves one extraction session end to end.
type Source struct {
	doc   *html.Node
	rules []compiledRule
	nodes map[*html.Node]*snip.Node
	comps map[*html.Node]*orderedStyle
	body  *html.Node
	title string
}

// New parses a document and computes styles for every element.
func New(r io.Reader) (*Source, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("staticdom: parse: %w", err)
	}

	s := &Source{
		doc:   doc,
		rules: collectRules(doc),
		nodes: make(map[*html.Node]*snip.Node),
		comps: make(map[*html.Node]*orderedStyle),
	}
	s.build(doc, nil, nil)
	return s, nil
}

// FromString parses an HTML string.
func FromString(markup string) (*Source, error) {
	return New(strings.NewReader(markup))
}

// build walks the parse tree, computing styles top-down and mirroring
// the structure into snip nodes.
func (s *Source) build(n *html.Node, parent *snip.Node, parentStyle *orderedStyle) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			s.build(c, parent, parentStyle)
		}
		return

	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if n.DataAtom == atom.Body && s.body == nil {
			s.body = n
		}
		if n.DataAtom == atom.Title && n.FirstChild != nil && s.title == "" {
			s.title = strings.TrimSpace(n.FirstChild.Data)
		}

		comp := computeStyle(n, parentStyle, s.rules)
		s.comps[n] = comp

		node := &snip.Node{
			Kind:   snip.KindElement,
			Tag:    tag,
			Style:  comp.style(),
			Parent: parent,
		}
		for _, a := range n.Attr {
			node.Attrs = append(node.Attrs, snip.Attr{Key: a.Key, Val: a.Val})
		}
		for _, pos := range []snip.PseudoPos{snip.PseudoBefore, snip.PseudoAfter} {
			if ps := computePseudoStyle(n, comp, s.rules, string(pos)); ps != nil {
				if node.Pseudo == nil {
					node.Pseudo = make(map[snip.PseudoPos]snip.Style, 2)
				}
				node.Pseudo[pos] = ps.style()
			}
		}
		s.nodes[n] = node
		if parent != nil {
			parent.Children = append(parent.Children, node)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			s.build(c, node, comp)
		}
		return

	case html.TextNode:
		if parent == nil {
			return
		}
		parent.Children = append(parent.Children, &snip.Node{
			Kind:   snip.KindText,
			Text:   n.Data,
			Parent: parent,
		})
		return

	default:
		// Comments, doctypes: kept as KindOther so the cloner can
		// drop them explicitly.
		if parent == nil {
			return
		}
		parent.Children = append(parent.Children, &snip.Node{
			Kind:   snip.KindOther,
			Parent: parent,
		})
		return
	}
}

// Select resolves a CSS selector to the first matching element.
func (s *Source) Select(selector string) (*snip.Node, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("staticdom: selector %q: %w", selector, err)
	}
	match := cascadia.Query(s.doc, sel)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, selector)
	}
	node, ok := s.nodes[match]
	if !ok {
		return nil, fmt.Errorf("staticdom: matched node has no computed style")
	}
	return node, nil
}

// Title returns the document title, if any.
func (s *Source) Title() string { return s.title }

// DefaultStyle implements snip.StyleProvider from the UA default table.
// The static backend has no rendering sandbox to lose, so there is no
// fatal path here.
func (s *Source) DefaultStyle(_ context.Context, tag string) (snip.Style, error) {
	decls := []snip.Decl{{Name: "display", Value: defaultDisplay(tag)}}
	for _, kv := range tagDefaults[tag] {
		decls = append(decls, snip.Decl{Name: kv[0], Value: kv[1]})
	}
	return snip.NewStyle(decls), nil
}

// BodyValue implements snip.VariableSource against the body's computed
// custom properties.
func (s *Source) BodyValue(_ context.Context, name string) (string, error) {
	if s.body == nil {
		return "", nil
	}
	if comp, ok := s.comps[s.body]; ok {
		if v, ok := comp.get(name); ok {
			return v, nil
		}
	}
	return "", nil
}

// InlineValue implements snip.VariableSource: the first element whose
// inline style textually mentions the name supplies its computed value.
func (s *Source) InlineValue(_ context.Context, name string) (string, error) {
	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && strings.Contains(attrVal(n, "style"), name) {
			if comp, ok := s.comps[n]; ok {
				if v, ok := comp.get(name); ok && v != "" {
					found = v
					return true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(s.doc)
	return found, nil
}
