package snip

import (
	"context"
	"strings"
	"testing"
)

func TestBuildChain(t *testing.T) {
	root := el("html", Style{},
		el("body", Style{},
			el("main", Style{},
				el("article", Style{},
					el("p", Style{})))))
	_ = root

	p := root.Children[0].Children[0].Children[0].Children[0]
	chain := buildChain(p)
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0].Tag != "main" || chain[1].Tag != "article" {
		t.Fatalf("chain order = [%s %s], want outer-to-inner [main article]", chain[0].Tag, chain[1].Tag)
	}
}

func TestBuildChainBodySelection(t *testing.T) {
	body := el("body", Style{})
	body.Parent = el("html", Style{})
	if chain := buildChain(body); chain != nil {
		t.Fatalf("selecting body must yield an empty chain, got %v", chain)
	}
}

func TestCloneAncestorShellsAreThin(t *testing.T) {
	s := newTestSession(nil)

	sibling := el("aside", Style{})
	selected := el("p", Style{}, text("hello"))
	wrapper := el("section", Style{}, sibling, selected)
	body := el("body", Style{}, wrapper)
	_ = body

	out, err := s.Extract(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}

	if out.Tag != "section" {
		t.Fatalf("root container = <%s>, want outermost shell <section>", out.Tag)
	}
	if len(out.Children) != 1 {
		t.Fatalf("shell must carry only the cloned path, got %d children", len(out.Children))
	}
	if find(out, "aside") != nil {
		t.Fatal("unrelated sibling leaked into the ancestor shell")
	}
	p := find(out, "p")
	if p == nil || len(p.Children) != 1 || p.Children[0].Text != "hello" {
		t.Fatalf("selected subtree not nested at the innermost shell: %+v", out)
	}
}

func TestCloneAncestorOrdering(t *testing.T) {
	s := newTestSession(nil)

	selected := el("span", Style{})
	inner := el("article", Style{}, selected)
	outer := el("main", Style{}, inner)
	body := el("body", Style{}, outer)
	_ = body

	out, err := s.Extract(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}
	if out.Tag != "main" {
		t.Fatalf("outermost = <%s>", out.Tag)
	}
	if out.Children[0].Tag != "article" {
		t.Fatalf("second shell = <%s>", out.Children[0].Tag)
	}
	if out.Children[0].Children[0].Tag != "span" {
		t.Fatalf("subtree not innermost: <%s>", out.Children[0].Children[0].Tag)
	}
}

func TestCloneDropsCommentsAndStripsStyleAttr(t *testing.T) {
	s := newTestSession(nil)

	selected := el("div", Style{}, comment(), text("x"))
	selected.Attrs = []Attr{
		{Key: "id", Val: "target"},
		{Key: "style", Val: "color: red"},
	}
	body := el("body", Style{}, selected)
	_ = body

	out, err := s.Extract(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Children) != 1 || out.Children[0].Text != "x" {
		t.Fatalf("comment not dropped: %+v", out.Children)
	}
	if out.Attr("id") != "target" {
		t.Fatal("ordinary attributes must be copied")
	}
	if out.Attr("style") != "" {
		t.Fatal("original inline style attribute must not be copied")
	}
}

func TestCloneDefersAncestorAfterPlaceholders(t *testing.T) {
	s := newTestSession(nil)

	selected := el("p", Style{}, text("body text"))
	wrapper := el("section", Style{}, selected)
	wrapper.Pseudo = map[PseudoPos]Style{
		PseudoBefore: style("content", `"<<"`),
		PseudoAfter:  style("content", `">>"`),
	}
	body := el("body", Style{}, wrapper)
	_ = body

	out, err := s.Extract(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}

	// Shell children: before-placeholder, subtree, after-placeholder —
	// the after content must follow the descendant content.
	if len(out.Children) != 3 {
		t.Fatalf("shell children = %d, want 3", len(out.Children))
	}
	if out.Children[0].Attr(MarkerAttr) != "before" {
		t.Fatalf("first child = %+v, want before placeholder", out.Children[0])
	}
	if out.Children[1].Tag != "p" {
		t.Fatalf("middle child = %+v, want subtree", out.Children[1])
	}
	if out.Children[2].Attr(MarkerAttr) != "after" {
		t.Fatalf("last child = %+v, want after placeholder", out.Children[2])
	}
}

func TestCloneShellKeepsBodyInheritedColor(t *testing.T) {
	// The original body does not survive into the clone, so a color
	// inherited from it must be emitted on the outermost shell instead
	// of being suppressed as parent-equal.
	p := newFixtureProvider()
	p.styles["main"] = style("color", "rgb(0, 0, 0)")
	p.styles["p"] = style("color", "rgb(0, 0, 0)")
	s := newTestSession(p)

	selected := el("p", style("color", "rgb(200, 0, 0)"), text("hello"))
	wrapper := el("main", style("color", "rgb(200, 0, 0)"), selected)
	body := el("body", style("color", "rgb(200, 0, 0)"), wrapper)
	body.Parent = el("html", Style{}, body)

	out, err := s.Extract(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}
	if out.Tag != "main" {
		t.Fatalf("outermost = <%s>, want main", out.Tag)
	}
	if !strings.Contains(out.StyleText, "color: rgb(200, 0, 0)") {
		t.Fatalf("shell style = %q, want the body-inherited color", out.StyleText)
	}
	inner := find(out, "p")
	if inner == nil {
		t.Fatal("selected element missing from the clone")
	}
	if strings.Contains(inner.StyleText, "color") {
		t.Fatalf("inner style = %q, want color left to the shell's cascade", inner.StyleText)
	}
}

func TestCloneChainlessSelectionKeepsBodyInheritedColor(t *testing.T) {
	p := newFixtureProvider()
	p.styles["p"] = style("color", "rgb(0, 0, 0)")
	s := newTestSession(p)

	selected := el("p", style("color", "rgb(200, 0, 0)"), text("hello"))
	body := el("body", style("color", "rgb(200, 0, 0)"), selected)
	_ = body

	out, err := s.Extract(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.StyleText, "color: rgb(200, 0, 0)") {
		t.Fatalf("style = %q, want the body-inherited color on the element itself", out.StyleText)
	}
}

func TestCloneCountsAncestorPseudo(t *testing.T) {
	s := newTestSession(nil)

	selected := el("p", Style{}, text("body text"))
	wrapper := el("section", Style{}, selected)
	wrapper.Pseudo = map[PseudoPos]Style{
		PseudoBefore: style("content", `"<<"`),
		PseudoAfter:  style("content", `">>"`),
	}
	body := el("body", Style{}, wrapper)
	_ = body

	if _, err := s.Extract(context.Background(), selected); err != nil {
		t.Fatal(err)
	}
	if got := s.Stats().Pseudo; got != 2 {
		t.Fatalf("Stats.Pseudo = %d, want both ancestor placeholders counted", got)
	}
}

func TestClonePseudoOrderWithinElement(t *testing.T) {
	s := newTestSession(nil)

	selected := el("q", Style{}, text("mid"))
	selected.Pseudo = map[PseudoPos]Style{
		PseudoBefore: style("content", `"«"`),
		PseudoAfter:  style("content", `"»"`),
	}
	body := el("body", Style{}, selected)
	_ = body

	out, err := s.Extract(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, c := range out.Children {
		if c.Kind == KindText {
			order = append(order, c.Text)
		} else {
			order = append(order, c.Attr(MarkerAttr))
		}
	}
	want := "before/mid/after"
	if got := strings.Join(order, "/"); got != want {
		t.Fatalf("child order = %s, want %s", got, want)
	}
}
