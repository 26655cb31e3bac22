package snip

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MarkerAttr tags placeholder elements standing in for generated
// content. Its value names the position the placeholder reproduces.
const MarkerAttr = "data-pseudo"

// OutputNode is one node of the synthesized output tree: either a text
// node (Text payload) or an element node with a tag, copied attributes
// (the original inline style attribute is never copied), a synthesized
// declaration-block string, and exclusively-owned children.
type OutputNode struct {
	Kind      NodeKind // KindElement or KindText
	Tag       string
	Text      string
	Attrs     []Attr
	StyleText string
	Children  []*OutputNode
}

// NewOutputText wraps a literal text payload.
func NewOutputText(text string) *OutputNode {
	return &OutputNode{Kind: KindText, Text: text}
}

// NewOutputElement creates an element output node, copying every source
// attribute except the inline style attribute, which is replaced by the
// filtered declaration block.
func NewOutputElement(tag string, attrs []Attr, styleText string) *OutputNode {
	out := &OutputNode{Kind: KindElement, Tag: tag, StyleText: styleText}
	for _, a := range attrs {
		if a.Key == "style" {
			continue
		}
		out.Attrs = append(out.Attrs, a)
	}
	return out
}

// Attr returns the value of a copied attribute, or "".
func (n *OutputNode) Attr(key string) string {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Append adds a child, preserving order.
func (n *OutputNode) Append(child *OutputNode) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

// AppendDecl appends a declaration to the node's style text.
func (n *OutputNode) AppendDecl(d Decl) {
	n.StyleText += formatDecl(d)
}

func formatDecl(d Decl) string {
	if d.Important {
		return fmt.Sprintf("%s: %s !important; ", d.Name, d.Value)
	}
	return fmt.Sprintf("%s: %s; ", d.Name, d.Value)
}

// formatDeclBlock concatenates declarations into one block string.
func formatDeclBlock(decls []Decl) string {
	var b strings.Builder
	for _, d := range decls {
		b.WriteString(formatDecl(d))
	}
	return strings.TrimSuffix(b.String(), " ")
}

// toHTML converts the output tree into x/net/html nodes.
func (n *OutputNode) toHTML() *html.Node {
	switch n.Kind {
	case KindText:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case KindElement:
		el := &html.Node{
			Type:     html.ElementNode,
			Data:     n.Tag,
			DataAtom: atom.Lookup([]byte(n.Tag)),
		}
		for _, a := range n.Attrs {
			el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
		if st := strings.TrimSpace(n.StyleText); st != "" {
			el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: st})
		}
		for _, c := range n.Children {
			el.AppendChild(c.toHTML())
		}
		return el
	default:
		return &html.Node{Type: html.TextNode}
	}
}

// BuildDocument wraps an output tree in a standalone HTML document. The
// head carries a base reference to the original page location so that
// relative resource URLs in copied attributes still resolve.
func BuildDocument(root *OutputNode, baseHref, title string) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlEl := elem(atom.Html, "html")
	doc.AppendChild(htmlEl)

	head := elem(atom.Head, "head")
	htmlEl.AppendChild(head)

	meta := elem(atom.Meta, "meta")
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)

	if baseHref != "" {
		base := elem(atom.Base, "base")
		base.Attr = []html.Attribute{{Key: "href", Val: baseHref}}
		head.AppendChild(base)
	}
	if title != "" {
		tt := elem(atom.Title, "title")
		tt.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		head.AppendChild(tt)
	}

	body := elem(atom.Body, "body")
	htmlEl.AppendChild(body)
	if root != nil {
		body.AppendChild(root.toHTML())
	}
	return doc
}

func elem(a atom.Atom, name string) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: name}
}

// Render serializes a document to w.
func Render(w io.Writer, doc *html.Node) error {
	return html.Render(w, doc)
}

// RenderString serializes a document to markup.
func RenderString(doc *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
