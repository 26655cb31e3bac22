package snip

// synthesizePseudo builds a placeholder element standing in for the
// generated content of one position, or nil when the position has none.
// Generated content cannot be cloned from the live tree, so the
// placeholder carries the literal text (one layer of surrounding quotes
// stripped) and a deliberately small set of style hints — display when
// not inline, text color, and the font shorthand. Full visual fidelity
// for generated content is out of scope.
func synthesizePseudo(node *Node, pos PseudoPos) *OutputNode {
	style, ok := node.PseudoStyle(pos)
	if !ok {
		return nil
	}
	text, ok := pseudoText(style.Get("content"))
	if !ok {
		return nil
	}

	out := NewOutputElement("span", nil, "")
	out.Attrs = []Attr{{Key: MarkerAttr, Val: string(pos)}}

	if display := style.Get("display"); display != "" && display != "inline" {
		out.AppendDecl(Decl{Name: "display", Value: display})
	}
	if color := style.Get("color"); color != "" {
		out.AppendDecl(Decl{Name: "color", Value: color})
	}
	if font := style.Get("font"); font != "" {
		out.AppendDecl(Decl{Name: "font", Value: font})
	}

	out.Append(NewOutputText(text))
	return out
}

// pseudoText extracts the literal text from a computed content value.
// "none" and "normal" mean no generated content; anything else has a
// single layer of surrounding quote characters removed.
func pseudoText(content string) (string, bool) {
	switch content {
	case "", "none", "normal":
		return "", false
	}
	if len(content) >= 2 {
		first, last := content[0], content[len(content)-1]
		if first == last && (first == '"' || first == '\'') {
			content = content[1 : len(content)-1]
		}
	}
	return content, true
}
