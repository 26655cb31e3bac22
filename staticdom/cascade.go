package staticdom

import (
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/domsnip/snip"
)

// compiledRule is one selector of one stylesheet rule, ready to match.
type compiledRule struct {
	sel    cascadia.Sel
	pseudo string // "", "before", or "after"
	decls  []*css.Declaration
	spec   cascadia.Specificity
	order  int
}

// collectRules parses every <style> element in the document into
// compiled rules (the douceur extraction follows the shape used by the
// fp styled-tree adapter). At-rules, including media queries, are
// skipped: the static cascade approximates a single unconditional
// rendering context.
func collectRules(doc *html.Node) []compiledRule {
	var rules []compiledRule
	order := 0

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			if n.FirstChild != nil {
				sheet, err := parser.Parse(n.FirstChild.Data)
				if err == nil {
					rules = appendSheet(rules, sheet, &order)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rules
}

func appendSheet(rules []compiledRule, sheet *css.Stylesheet, order *int) []compiledRule {
	for _, rule := range sheet.Rules {
		if rule.Kind != css.QualifiedRule {
			continue
		}
		for _, selText := range rule.Selectors {
			selText = strings.TrimSpace(selText)
			base, pseudo := splitPseudoElement(selText)
			sel, err := cascadia.ParseWithPseudoElement(base + pseudoSuffix(pseudo))
			if err != nil {
				continue
			}
			rules = append(rules, compiledRule{
				sel:    sel,
				pseudo: pseudo,
				decls:  rule.Declarations,
				spec:   sel.Specificity(),
				order:  *order,
			})
			*order++
		}
	}
	return rules
}

// splitPseudoElement peels a trailing ::before/::after (or the legacy
// one-colon spelling) off a selector.
func splitPseudoElement(sel string) (base, pseudo string) {
	for _, suffix := range []string{"::before", ":before"} {
		if s, ok := strings.CutSuffix(sel, suffix); ok {
			return s, "before"
		}
	}
	for _, suffix := range []string{"::after", ":after"} {
		if s, ok := strings.CutSuffix(sel, suffix); ok {
			return s, "after"
		}
	}
	return sel, ""
}

func pseudoSuffix(pseudo string) string {
	if pseudo == "" {
		return ""
	}
	return "::" + pseudo
}

// orderedStyle accumulates declarations for one element, preserving the
// order in which property names first appear while letting higher-
// precedence sources overwrite values in place.
type orderedStyle struct {
	names []string
	vals  map[string]snip.Decl
}

func newOrderedStyle() *orderedStyle {
	return &orderedStyle{vals: make(map[string]snip.Decl)}
}

func (o *orderedStyle) set(d snip.Decl) {
	if _, ok := o.vals[d.Name]; !ok {
		o.names = append(o.names, d.Name)
	}
	o.vals[d.Name] = d
}

func (o *orderedStyle) setIfUnset(d snip.Decl) {
	if _, ok := o.vals[d.Name]; !ok {
		o.set(d)
	}
}

func (o *orderedStyle) get(name string) (string, bool) {
	d, ok := o.vals[name]
	return d.Value, ok
}

func (o *orderedStyle) style() snip.Style {
	decls := make([]snip.Decl, 0, len(o.names))
	for _, name := range o.names {
		decls = append(decls, o.vals[name])
	}
	return snip.NewStyle(decls)
}

// computeStyle builds the approximated computed style for an element:
// UA defaults, inherited values from the parent (allow-listed standard
// properties plus all custom properties, never overriding tag-intrinsic
// defaults), matched rules in cascade order, inline declarations, and
// finally var() substitution.
func computeStyle(n *html.Node, parent *orderedStyle, rules []compiledRule) *orderedStyle {
	o := newOrderedStyle()
	tag := strings.ToLower(n.Data)

	o.set(snip.Decl{Name: "display", Value: defaultDisplay(tag)})
	for _, kv := range tagDefaults[tag] {
		o.set(snip.Decl{Name: kv[0], Value: kv[1]})
	}

	if parent != nil {
		for _, name := range parent.names {
			if !inheritedProps[name] && !strings.HasPrefix(name, "--") {
				continue
			}
			o.setIfUnset(parent.vals[name])
		}
	}

	applyMatchedRules(o, n, rules, "")
	substituteAll(o)
	return o
}

// computePseudoStyle collects declarations from ::before/::after rules
// matching an element, or nil when none match. Custom properties resolve
// against the element's own computed style.
func computePseudoStyle(n *html.Node, owner *orderedStyle, rules []compiledRule, pseudo string) *orderedStyle {
	o := newOrderedStyle()
	applyMatchedRules(o, n, rules, pseudo)
	if len(o.names) == 0 {
		return nil
	}
	for _, name := range o.names {
		d := o.vals[name]
		d.Value = substituteVars(d.Value, owner, 0)
		o.vals[name] = d
	}
	return o
}

// applyMatchedRules overwrites o with matching rule declarations in
// ascending precedence: normal declarations by specificity then source
// order, inline style, then !important declarations. Inline styles never
// apply to pseudo positions.
func applyMatchedRules(o *orderedStyle, n *html.Node, rules []compiledRule, pseudo string) {
	var matched []compiledRule
	for _, r := range rules {
		if r.pseudo != pseudo {
			continue
		}
		if r.sel.Match(n) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].spec != matched[j].spec {
			return matched[i].spec.Less(matched[j].spec)
		}
		return matched[i].order < matched[j].order
	})

	for _, r := range matched {
		for _, d := range r.decls {
			if d.Important {
				continue
			}
			o.set(snip.Decl{Name: strings.TrimSpace(d.Property), Value: strings.TrimSpace(d.Value)})
		}
	}

	var inline []*css.Declaration
	if pseudo == "" {
		if raw := attrVal(n, "style"); raw != "" {
			if decls, err := parser.ParseDeclarations(raw); err == nil {
				inline = decls
			}
		}
	}
	for _, d := range inline {
		if !d.Important {
			o.set(snip.Decl{Name: strings.TrimSpace(d.Property), Value: strings.TrimSpace(d.Value)})
		}
	}

	for _, r := range matched {
		for _, d := range r.decls {
			if !d.Important {
				continue
			}
			o.set(snip.Decl{
				Name:      strings.TrimSpace(d.Property),
				Value:     strings.TrimSpace(d.Value),
				Important: true,
			})
		}
	}

	for _, d := range inline {
		if d.Important {
			o.set(snip.Decl{
				Name:      strings.TrimSpace(d.Property),
				Value:     strings.TrimSpace(d.Value),
				Important: true,
			})
		}
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func substituteAll(o *orderedStyle) {
	for _, name := range o.names {
		d := o.vals[name]
		if strings.Contains(d.Value, "var(") {
			d.Value = substituteVars(d.Value, o, 0)
			o.vals[name] = d
		}
	}
}

const maxVarDepth = 8

// substituteVars resolves var() usages against the element's computed
// custom properties, falling back to the usage's fallback expression.
// A reference that resolves nowhere is left textually intact so the
// engine can track it and close over it later.
func substituteVars(value string, o *orderedStyle, depth int) string {
	if depth > maxVarDepth {
		return value
	}
	var b strings.Builder
	for {
		i := strings.Index(value, "var(")
		if i < 0 {
			b.WriteString(value)
			break
		}
		b.WriteString(value[:i])
		inner, consumed := balancedPrefix(value[i+len("var("):])
		rest := value[i+len("var(")+consumed:]
		rest = strings.TrimPrefix(rest, ")")

		name, fallback := splitVarArgs(inner)
		if v, ok := o.get(name); ok && v != "" {
			b.WriteString(substituteVars(v, o, depth+1))
		} else if fallback != "" {
			b.WriteString(substituteVars(fallback, o, depth+1))
		} else {
			// Unresolvable here; keep the reference.
			b.WriteString("var(")
			b.WriteString(inner)
			b.WriteString(")")
		}
		value = rest
	}
	return b.String()
}

// balancedPrefix returns the prefix of s up to the paren that closes the
// enclosing var(, honoring nesting.
func balancedPrefix(s string) (string, int) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return s[:i], i
			}
			depth--
		}
	}
	return s, len(s)
}

func splitVarArgs(inner string) (name, fallback string) {
	if i := strings.IndexByte(inner, ','); i >= 0 {
		return strings.TrimSpace(inner[:i]), strings.TrimSpace(inner[i+1:])
	}
	return strings.TrimSpace(inner), ""
}
