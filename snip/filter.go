package snip

import "context"

// inheritedProps is the fixed allow-list of properties the filter treats
// as CSS-inheritable: typography, text layout, and a handful of list and
// table properties. It is a conservative, hand-maintained approximation
// of true CSS inheritance — newer typographic and layout properties are
// deliberately absent, so their values are emitted explicitly rather
// than trusted to the cascade.
var inheritedProps = map[string]bool{
	"border-collapse":     true,
	"border-spacing":      true,
	"caption-side":        true,
	"color":               true,
	"cursor":              true,
	"direction":           true,
	"empty-cells":         true,
	"font":                true,
	"font-family":         true,
	"font-size":           true,
	"font-style":          true,
	"font-variant":        true,
	"font-weight":         true,
	"letter-spacing":      true,
	"line-height":         true,
	"list-style":          true,
	"list-style-image":    true,
	"list-style-position": true,
	"list-style-type":     true,
	"overflow-wrap":       true,
	"quotes":              true,
	"tab-size":            true,
	"text-align":          true,
	"text-indent":         true,
	"text-transform":      true,
	"visibility":          true,
	"white-space":         true,
	"word-break":          true,
	"word-spacing":        true,
}

// filterStyle computes the minimal declaration list that reproduces a
// node's rendered appearance: custom properties not already supplied
// identically by the parent, followed by standard properties that differ
// from both the tag's default style and (for inheritable properties) the
// parent's computed value. Standard values that textually equal one of
// the node's own custom properties are rewritten as var() references.
// Every var() usage encountered along the way is recorded in the
// session ledger.
//
// The result is a pure function of the node's style, the parent's style,
// and the tag's default style; ledger recording is idempotent.
//
// parentOrNil is the nearest ancestor that survives into the output, not
// the node's document parent: the outermost chain shell has none, since
// the original body and root do not follow the element into the clone.
// With a nil parent every inheritable value is kept, so body-inherited
// styles land on the shell instead of silently vanishing.
func (s *Session) filterStyle(ctx context.Context, node, parentOrNil *Node) ([]Decl, error) {
	defaults, err := s.defaultStyleFor(ctx, node.Tag)
	if err != nil {
		return nil, err
	}

	var parent Style
	if parentOrNil != nil && parentOrNil.Kind == KindElement {
		parent = parentOrNil.Style
	}

	var custom, standard []Decl

	// Pass one: custom properties. Collected in full (emitted or not)
	// so pass two can rewrite matching standard values as references.
	varByValue := make(map[string]string)
	for _, d := range node.Style.Decls() {
		if !isCustomProperty(d.Name) || d.Value == "" {
			continue
		}
		if _, taken := varByValue[d.Value]; !taken {
			varByValue[d.Value] = d.Name
		}
		s.recordVarRefs(d.Value)
		if parent.Get(d.Name) == d.Value {
			// An ancestor already supplies this value; the cascade
			// delivers it to the clone.
			continue
		}
		custom = append(custom, d)
	}

	// Pass two: standard properties.
	for _, d := range node.Style.Decls() {
		if isCustomProperty(d.Name) || d.Value == "" {
			continue
		}
		if defaults.Get(d.Name) == d.Value {
			continue
		}
		if inheritedProps[d.Name] && parent.Get(d.Name) == d.Value {
			continue
		}
		s.recordVarRefs(d.Value)
		if varName, ok := varByValue[d.Value]; ok {
			// The rewrite introduces a reference of its own. The
			// custom property may have been omitted above as
			// parent-supplied, and that parent may not survive
			// into the clone, so the closure pass must know the
			// name is in use.
			s.ledger.Record(VarRef{Name: varName, Fallback: d.Value})
			standard = append(standard, Decl{
				Name:      d.Name,
				Value:     "var(" + varName + ")",
				Important: d.Important,
			})
			continue
		}
		standard = append(standard, d)
	}

	return append(custom, standard...), nil
}

func (s *Session) recordVarRefs(value string) {
	for _, ref := range scanVarRefs(value) {
		s.ledger.Record(ref)
	}
}
