package snip

import (
	"context"
	"reflect"
	"testing"
)

func TestFilterDefaultSuppression(t *testing.T) {
	p := newFixtureProvider()
	p.styles["span"] = style("color", "rgb(0, 0, 0)", "display", "inline")
	s := newTestSession(p)

	node := el("span", style("color", "rgb(0, 0, 0)", "display", "inline"))
	decls, err := s.filterStyle(context.Background(), node, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 0 {
		t.Fatalf("expected no declarations for unstyled element, got %v", decls)
	}
}

func TestFilterInheritanceSuppression(t *testing.T) {
	p := newFixtureProvider()
	p.styles["span"] = style("color", "rgb(0, 0, 0)")
	s := newTestSession(p)

	// color differs from the tag default but equals the parent's
	// computed value: the cascade delivers it, so it must be omitted.
	parent := el("div", style("color", "rgb(200, 0, 0)"))
	node := el("span", style("color", "rgb(200, 0, 0)"))

	decls, err := s.filterStyle(context.Background(), node, parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 0 {
		t.Fatalf("expected inherited color to be suppressed, got %v", decls)
	}
}

func TestFilterNoParentKeepsInheritable(t *testing.T) {
	p := newFixtureProvider()
	p.styles["main"] = style("color", "rgb(0, 0, 0)")
	s := newTestSession(p)

	// A document parent may carry the same color, but when nothing
	// above this element survives into the output there is no cascade
	// to deliver it: with no parent the value must be emitted.
	docParent := el("body", style("color", "rgb(200, 0, 0)"))
	node := el("main", style("color", "rgb(200, 0, 0)"))
	node.Parent = docParent

	decls, err := s.filterStyle(context.Background(), node, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []Decl{{Name: "color", Value: "rgb(200, 0, 0)"}}
	if !reflect.DeepEqual(decls, want) {
		t.Fatalf("got %v, want %v", decls, want)
	}
}

func TestFilterOverrideInclusion(t *testing.T) {
	p := newFixtureProvider()
	p.styles["span"] = style("color", "rgb(0, 0, 0)")
	s := newTestSession(p)

	parent := el("div", style("color", "rgb(200, 0, 0)"))
	node := el("span", style("color", "rgb(0, 128, 0)"))

	decls, err := s.filterStyle(context.Background(), node, parent)
	if err != nil {
		t.Fatal(err)
	}
	want := []Decl{{Name: "color", Value: "rgb(0, 128, 0)"}}
	if !reflect.DeepEqual(decls, want) {
		t.Fatalf("got %v, want %v", decls, want)
	}
}

func TestFilterNonInheritableNotSuppressedByParent(t *testing.T) {
	p := newFixtureProvider()
	p.styles["div"] = style("margin-top", "0px")
	s := newTestSession(p)

	// margin-top is not on the inheritance allow-list: matching the
	// parent's value must not suppress it.
	parent := el("div", style("margin-top", "8px"))
	node := el("div", style("margin-top", "8px"))

	decls, err := s.filterStyle(context.Background(), node, parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 1 || decls[0].Name != "margin-top" {
		t.Fatalf("expected margin-top to survive, got %v", decls)
	}
}

func TestFilterSpanFontWeight(t *testing.T) {
	// End-to-end example: default color plus a non-default,
	// non-inherited font-weight yields exactly that one declaration.
	p := newFixtureProvider()
	p.styles["span"] = style("color", "rgb(0,0,0)", "font-weight", "400")
	s := newTestSession(p)

	parent := el("p", style("font-weight", "400"))
	node := el("span", style("color", "rgb(0,0,0)", "font-weight", "700"))

	decls, err := s.filterStyle(context.Background(), node, parent)
	if err != nil {
		t.Fatal(err)
	}
	want := []Decl{{Name: "font-weight", Value: "700"}}
	if !reflect.DeepEqual(decls, want) {
		t.Fatalf("got %v, want %v", decls, want)
	}
	if got := formatDeclBlock(decls); got != "font-weight: 700;" {
		t.Fatalf("declaration block = %q", got)
	}
}

func TestFilterVariableRewrite(t *testing.T) {
	// A standard property whose value equals one of the node's own
	// custom properties is emitted as a reference, custom property
	// first.
	p := newFixtureProvider()
	p.styles["div"] = style("border-color", "rgb(0, 0, 0)")
	s := newTestSession(p)

	node := el("div", style(
		"--accent", "#ff0000",
		"border-color", "#ff0000",
	))

	decls, err := s.filterStyle(context.Background(), node, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []Decl{
		{Name: "--accent", Value: "#ff0000"},
		{Name: "border-color", Value: "var(--accent)"},
	}
	if !reflect.DeepEqual(decls, want) {
		t.Fatalf("got %v, want %v", decls, want)
	}
	if got := formatDeclBlock(decls); got != "--accent: #ff0000; border-color: var(--accent);" {
		t.Fatalf("declaration block = %q", got)
	}
}

func TestFilterCustomPropertySuppliedByParent(t *testing.T) {
	p := newFixtureProvider()
	s := newTestSession(p)

	parent := el("div", style("--accent", "#ff0000"))
	node := el("span", style("--accent", "#ff0000"))

	decls, err := s.filterStyle(context.Background(), node, parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 0 {
		t.Fatalf("parent-supplied custom property must be omitted, got %v", decls)
	}
}

func TestFilterImportantPreserved(t *testing.T) {
	p := newFixtureProvider()
	s := newTestSession(p)

	node := el("div", NewStyle([]Decl{
		{Name: "z-index", Value: "10", Important: true},
	}))

	decls, err := s.filterStyle(context.Background(), node, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 1 || !decls[0].Important {
		t.Fatalf("expected !important to survive, got %v", decls)
	}
	if got := formatDeclBlock(decls); got != "z-index: 10 !important;" {
		t.Fatalf("declaration block = %q", got)
	}
}

func TestFilterRecordsVarReferences(t *testing.T) {
	p := newFixtureProvider()
	s := newTestSession(p)

	node := el("div", style(
		"background-color", "var(--bg, rgb(255, 255, 255))",
	))

	if _, err := s.filterStyle(context.Background(), node, nil); err != nil {
		t.Fatal(err)
	}
	if s.ledger.Len() != 1 {
		t.Fatalf("ledger size = %d, want 1", s.ledger.Len())
	}
	if fb := s.ledger.Fallback("--bg"); fb != "rgb(255, 255, 255)" {
		t.Fatalf("fallback = %q", fb)
	}
}

func TestFilterIsPure(t *testing.T) {
	p := newFixtureProvider()
	p.styles["span"] = style("color", "rgb(0, 0, 0)")
	s := newTestSession(p)

	node := el("span", style("color", "rgb(10, 20, 30)", "--x", "1px"))

	first, err := s.filterStyle(context.Background(), node, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.filterStyle(context.Background(), node, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("filter not stable across runs: %v vs %v", first, second)
	}
}
