package snip

import (
	"context"
	"sort"
	"strings"

	"github.com/aymerick/douceur/parser"
)

// VarRef is one var(--name, fallback) usage found inside a value.
type VarRef struct {
	Name     string
	Fallback string // "" when the usage carries no fallback
}

// Ledger tracks every custom property referenced via var() anywhere in
// the filtered styles of one extraction session, together with the
// first-seen fallback expression for each name. First write wins.
type Ledger struct {
	fallbacks map[string]string
}

// NewLedger returns an empty ledger for one session.
func NewLedger() *Ledger {
	return &Ledger{fallbacks: make(map[string]string)}
}

// Record notes a var() usage. The fallback is only kept if the name has
// never been recorded before; later sightings never overwrite.
func (l *Ledger) Record(ref VarRef) {
	if _, seen := l.fallbacks[ref.Name]; seen {
		return
	}
	l.fallbacks[ref.Name] = ref.Fallback
}

// Names returns all recorded custom-property names, unordered.
func (l *Ledger) Names() []string {
	names := make([]string, 0, len(l.fallbacks))
	for n := range l.fallbacks {
		names = append(names, n)
	}
	return names
}

// Fallback returns the recorded fallback expression for a name.
func (l *Ledger) Fallback(name string) string {
	return l.fallbacks[name]
}

// Len reports the number of tracked names.
func (l *Ledger) Len() int { return len(l.fallbacks) }

// scanVarRefs finds every var(--name) and var(--name, fallback) usage in
// a value. Fallback expressions may themselves contain parentheses
// (var(--a, rgb(0, 0, 0))), so a regexp will not do; this walks the
// string counting paren depth.
func scanVarRefs(value string) []VarRef {
	var refs []VarRef
	for i := 0; i+4 <= len(value); {
		j := strings.Index(value[i:], "var(")
		if j < 0 {
			break
		}
		start := i + j + len("var(")
		name, rest, ok := readVarName(value[start:])
		if !ok {
			i = start
			continue
		}
		ref := VarRef{Name: name}
		if strings.HasPrefix(rest, ",") {
			fallback, consumed := readBalanced(rest[1:])
			ref.Fallback = strings.TrimSpace(fallback)
			rest = rest[1+consumed:]
		}
		refs = append(refs, ref)
		// Continue after the name; nested references inside the
		// fallback are picked up by the outer loop.
		i = start + len(name)
		_ = rest
	}
	return refs
}

// readVarName consumes leading space and a --name token, returning the
// name and the remainder starting at the first character after it.
func readVarName(s string) (name, rest string, ok bool) {
	s = strings.TrimLeft(s, " \t")
	if !strings.HasPrefix(s, varSigil) {
		return "", "", false
	}
	end := len(s)
	for i := len(varSigil); i < len(s); i++ {
		c := s[i]
		if c == ',' || c == ')' || c == ' ' || c == '\t' {
			end = i
			break
		}
	}
	name = s[:end]
	if name == varSigil {
		return "", "", false
	}
	return name, strings.TrimLeft(s[end:], " \t"), true
}

// readBalanced consumes up to the closing paren of the enclosing var(),
// honoring nested parentheses, and returns the consumed prefix.
func readBalanced(s string) (string, int) {
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

// closeVariables guarantees that every custom property referenced in the
// output tree is declared on some ancestor of every referencing node. It
// scans the output for names already declared, then resolves each
// missing ledger name against the source document — body computed value
// first, then any element whose inline style mentions the name, then the
// recorded fallback expression — and declares the result on the output
// root, where cascade resolution reaches the whole tree.
//
// Resolution failures are never fatal: a name that resolves nowhere is
// declared with its (possibly empty) fallback.
func (s *Session) closeVariables(ctx context.Context, root *OutputNode) {
	declared := make(map[string]bool)
	collectDeclaredVars(root, declared)

	// Sorted so identical inputs produce byte-identical documents.
	names := s.ledger.Names()
	sort.Strings(names)

	for _, name := range names {
		if declared[name] {
			continue
		}
		value := s.resolveVariable(ctx, name)
		root.AppendDecl(Decl{Name: name, Value: value})
	}
}

func (s *Session) resolveVariable(ctx context.Context, name string) string {
	if v, err := s.vars.BodyValue(ctx, name); err == nil && v != "" {
		return v
	} else if err != nil {
		s.logger.Debug("snip: body variable lookup failed", "name", name, "error", err)
	}
	if v, err := s.vars.InlineValue(ctx, name); err == nil && v != "" {
		return v
	} else if err != nil {
		s.logger.Debug("snip: inline variable lookup failed", "name", name, "error", err)
	}
	return s.ledger.Fallback(name)
}

// collectDeclaredVars records every custom-property name declared in a
// style text anywhere in the output tree.
func collectDeclaredVars(n *OutputNode, names map[string]bool) {
	if n == nil {
		return
	}
	for _, d := range parseDeclBlock(n.StyleText) {
		if isCustomProperty(d.Name) {
			names[d.Name] = true
		}
	}
	for _, c := range n.Children {
		collectDeclaredVars(c, names)
	}
}

// parseDeclBlock splits a declaration-block string back into
// declarations. Only used to inspect output the engine itself produced;
// a block douceur cannot parse yields nothing.
func parseDeclBlock(block string) []Decl {
	parsed, err := parser.ParseDeclarations(block)
	if err != nil {
		return nil
	}
	var decls []Decl
	for _, d := range parsed {
		decls = append(decls, Decl{
			Name:      strings.TrimSpace(d.Property),
			Value:     strings.TrimSpace(d.Value),
			Important: d.Important,
		})
	}
	return decls
}
