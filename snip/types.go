// Package snip is the style-aware tree serialization engine. It takes a
// materialized snapshot of a selected element (plus its ancestor chain)
// from a styled document and produces a self-contained output tree whose
// explicit style declarations are the minimal set needed to approximate
// the original rendering: values implied by tag defaults or CSS
// inheritance are omitted, custom-property usage is tracked and closed
// over, and generated content is replaced by placeholder nodes.
//
// The engine is pure: it never talks to a browser or parses HTML itself.
// Source backends (see the browser and staticdom packages) materialize
// Node trees and implement the StyleProvider and VariableSource
// capability interfaces.
package snip

import "strings"

// NodeKind discriminates source and output node variants.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindText
	KindOther // comments, processing instructions; dropped by the cloner
)

// PseudoPos identifies a generated-content position.
type PseudoPos string

const (
	PseudoBefore PseudoPos = "before"
	PseudoAfter  PseudoPos = "after"
)

// Attr is a single element attribute.
type Attr struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// Decl is one style declaration as observed in a computed style.
type Decl struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Important bool   `json:"important,omitempty"`
}

// Style is a read-only computed-style snapshot for one element in one
// rendering context. Declarations keep their enumeration order; lookups
// by property name are indexed.
type Style struct {
	decls []Decl
	index map[string]int
}

// NewStyle builds a Style from declarations in enumeration order. When a
// property appears twice the first occurrence wins, matching the
// first-write-wins discipline used throughout a session.
func NewStyle(decls []Decl) Style {
	idx := make(map[string]int, len(decls))
	kept := make([]Decl, 0, len(decls))
	for _, d := range decls {
		if _, dup := idx[d.Name]; dup {
			continue
		}
		idx[d.Name] = len(kept)
		kept = append(kept, d)
	}
	return Style{decls: kept, index: idx}
}

// Len reports the number of declarations.
func (s Style) Len() int { return len(s.decls) }

// Decls returns the declarations in enumeration order. Callers must not
// mutate the returned slice.
func (s Style) Decls() []Decl { return s.decls }

// Get returns the value for a property, or "" if unset.
func (s Style) Get(name string) string {
	if i, ok := s.index[name]; ok {
		return s.decls[i].Value
	}
	return ""
}

// GetDecl returns the full declaration for a property.
func (s Style) GetDecl(name string) (Decl, bool) {
	if i, ok := s.index[name]; ok {
		return s.decls[i], true
	}
	return Decl{}, false
}

// Node is a materialized source-document node. Element nodes carry their
// full computed style and, when the backend could query them, the
// computed styles of their generated-content positions.
type Node struct {
	Kind     NodeKind
	Tag      string // lowercased; elements only
	Text     string // text nodes only
	Attrs    []Attr
	Style    Style
	Pseudo   map[PseudoPos]Style
	Parent   *Node
	Children []*Node
}

// Attr returns the value of an attribute, or "".
func (n *Node) Attr(key string) string {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// PseudoStyle returns the computed style for a generated-content
// position, if the backend captured one. A missing entry means the
// position could not be queried or had no styling; both are treated as
// "no pseudo content".
func (n *Node) PseudoStyle(pos PseudoPos) (Style, bool) {
	s, ok := n.Pseudo[pos]
	return s, ok
}

// varSigil prefixes custom-property declarations.
const varSigil = "--"

func isCustomProperty(name string) bool {
	return strings.HasPrefix(name, varSigil)
}
