package snip

import "context"

// fixtureProvider serves canned default styles keyed by tag and counts
// lookups so tests can assert session-level caching.
type fixtureProvider struct {
	styles map[string]Style
	calls  map[string]int
	err    error
}

func newFixtureProvider() *fixtureProvider {
	return &fixtureProvider{
		styles: map[string]Style{},
		calls:  map[string]int{},
	}
}

func (p *fixtureProvider) DefaultStyle(_ context.Context, tag string) (Style, error) {
	p.calls[tag]++
	if p.err != nil {
		return Style{}, p.err
	}
	return p.styles[tag], nil
}

// fixtureVars serves canned variable resolutions.
type fixtureVars struct {
	body   map[string]string
	inline map[string]string
}

func (v *fixtureVars) BodyValue(_ context.Context, name string) (string, error) {
	return v.body[name], nil
}

func (v *fixtureVars) InlineValue(_ context.Context, name string) (string, error) {
	return v.inline[name], nil
}

func newTestSession(p StyleProvider) *Session {
	if p == nil {
		p = newFixtureProvider()
	}
	return NewSession(p, &fixtureVars{}, nil)
}

// style is shorthand for building a Style from name/value pairs.
func style(pairs ...string) Style {
	var decls []Decl
	for i := 0; i+1 < len(pairs); i += 2 {
		decls = append(decls, Decl{Name: pairs[i], Value: pairs[i+1]})
	}
	return NewStyle(decls)
}

// el builds an element node and wires parent links on its children.
func el(tag string, st Style, children ...*Node) *Node {
	n := &Node{Kind: KindElement, Tag: tag, Style: st}
	for _, c := range children {
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

func text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

func comment() *Node {
	return &Node{Kind: KindOther}
}

// find returns the first output element with the given tag, depth-first.
func find(n *OutputNode, tag string) *OutputNode {
	if n == nil {
		return nil
	}
	if n.Kind == KindElement && n.Tag == tag {
		return n
	}
	for _, c := range n.Children {
		if m := find(c, tag); m != nil {
			return m
		}
	}
	return nil
}
