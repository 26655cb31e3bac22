package snip

import (
	"context"
	"fmt"
)

// buildChain walks upward from the selected element and returns its
// ancestor elements outer to inner, stopping before the document's body
// and root containers. Selecting body or the root itself yields an empty
// chain.
func buildChain(selected *Node) []*Node {
	var chain []*Node
	for n := selected.Parent; n != nil; n = n.Parent {
		if n.Kind != KindElement || n.Tag == "body" || n.Tag == "html" {
			break
		}
		chain = append([]*Node{n}, chain...)
	}
	if selected.Tag == "body" || selected.Tag == "html" {
		return nil
	}
	return chain
}

// deferredAfter remembers an ancestor shell whose after-placeholder must
// be attached once the whole subtree is in place. Ancestor "after"
// content renders after all descendant content, so attaching it during
// the top-down shell pass would put it in the wrong position. The
// deferral is an explicit accumulator rather than a property of call
// unwinding order.
type deferredAfter struct {
	shell *OutputNode
	src   *Node
}

// clone builds the output tree for a selected element: thin ancestor
// shells (attributes, filtered style, before-placeholder — no unrelated
// children) wrapping a full depth-first clone of the selected subtree.
func (s *Session) clone(ctx context.Context, selected *Node, chain []*Node) (*OutputNode, error) {
	var top, inner *OutputNode
	var afters []deferredAfter

	// The outermost shell has no surviving parent: the document's body
	// and root stay behind, so their inheritable values must be emitted
	// here rather than suppressed as parent-equal.
	var prev *Node
	for _, anc := range chain {
		decls, err := s.filterStyle(ctx, anc, prev)
		if err != nil {
			return nil, fmt.Errorf("snip: ancestor <%s>: %w", anc.Tag, err)
		}
		shell := NewOutputElement(anc.Tag, anc.Attrs, formatDeclBlock(decls))
		if ph := synthesizePseudo(anc, PseudoBefore); ph != nil {
			s.stats.Pseudo++
			shell.Append(ph)
		}
		if inner == nil {
			top = shell
		} else {
			inner.Append(shell)
		}
		inner = shell
		prev = anc
		afters = append(afters, deferredAfter{shell: shell, src: anc})
	}

	subtree, err := s.cloneSubtree(ctx, selected, prev)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		top = subtree
	} else {
		inner.Append(subtree)
	}

	// Bottom-up: the innermost ancestor's after-placeholder lands
	// closest to the subtree.
	for i := len(afters) - 1; i >= 0; i-- {
		if ph := synthesizePseudo(afters[i].src, PseudoAfter); ph != nil {
			s.stats.Pseudo++
			afters[i].shell.Append(ph)
		}
	}

	return top, nil
}

// cloneSubtree copies an element and its descendants depth-first. Text
// nodes become literal payloads; comments and other node kinds are
// dropped. parentOrNil is the nearest ancestor kept in the output: the
// innermost chain shell at the top of the recursion (nil for a chainless
// selection), the node itself for its children.
func (s *Session) cloneSubtree(ctx context.Context, node, parentOrNil *Node) (*OutputNode, error) {
	decls, err := s.filterStyle(ctx, node, parentOrNil)
	if err != nil {
		return nil, fmt.Errorf("snip: <%s>: %w", node.Tag, err)
	}
	s.stats.Declarations += len(decls)
	s.stats.Nodes++

	out := NewOutputElement(node.Tag, node.Attrs, formatDeclBlock(decls))
	if ph := synthesizePseudo(node, PseudoBefore); ph != nil {
		s.stats.Pseudo++
		out.Append(ph)
	}
	for _, child := range node.Children {
		switch child.Kind {
		case KindText:
			out.Append(NewOutputText(child.Text))
		case KindElement:
			sub, err := s.cloneSubtree(ctx, child, node)
			if err != nil {
				return nil, err
			}
			out.Append(sub)
		case KindOther:
			// Comments and the like carry no rendered content.
		}
	}
	if ph := synthesizePseudo(node, PseudoAfter); ph != nil {
		s.stats.Pseudo++
		out.Append(ph)
	}
	return out, nil
}
