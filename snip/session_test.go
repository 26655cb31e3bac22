package snip

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtractEndToEnd(t *testing.T) {
	p := newFixtureProvider()
	p.styles["span"] = style("color", "rgb(0, 0, 0)", "font-weight", "400")
	p.styles["div"] = style("display", "block")

	vars := &fixtureVars{body: map[string]string{"--brand": "#336699"}}
	s := NewSession(p, vars, nil)

	selected := el("span", style(
		"color", "var(--brand, #000)",
		"font-weight", "700",
	), text("bold"))
	wrapper := el("div", style("display", "block"))
	wrapper.Children = append(wrapper.Children, selected)
	selected.Parent = wrapper
	body := el("body", Style{}, wrapper)
	_ = body

	out, err := s.Extract(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}

	// Wrapper shell carries no declarations (all default), the span
	// keeps its two overrides, and the referenced variable is closed
	// over at the root.
	if out.Tag != "div" {
		t.Fatalf("root = <%s>", out.Tag)
	}
	rootDecls := parseDeclBlock(out.StyleText)
	if len(rootDecls) != 1 || rootDecls[0].Name != "--brand" || rootDecls[0].Value != "#336699" {
		t.Fatalf("root decls = %v, want closed-over --brand", rootDecls)
	}

	span := find(out, "span")
	if span == nil {
		t.Fatal("span missing from output")
	}
	if !strings.Contains(span.StyleText, "font-weight: 700") ||
		!strings.Contains(span.StyleText, "color: var(--brand, #000)") {
		t.Fatalf("span style = %q", span.StyleText)
	}

	st := s.Stats()
	if st.Nodes != 1 || st.Variables != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestExtractRejectsNonElement(t *testing.T) {
	s := newTestSession(nil)
	if _, err := s.Extract(context.Background(), text("x")); err == nil {
		t.Fatal("expected error for text-node selection")
	}
	if _, err := s.Extract(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil selection")
	}
}

func TestDefaultStyleCaching(t *testing.T) {
	p := newFixtureProvider()
	s := newTestSession(p)

	selected := el("div", Style{},
		el("span", Style{}), el("span", Style{}), el("span", Style{}))
	body := el("body", Style{}, selected)
	_ = body

	if _, err := s.Extract(context.Background(), selected); err != nil {
		t.Fatal(err)
	}
	if p.calls["span"] != 1 {
		t.Fatalf("provider consulted %d times for span, want 1", p.calls["span"])
	}
}

func TestDefaultStyleFailureIsFatal(t *testing.T) {
	p := newFixtureProvider()
	p.err = errors.New("sandbox gone")
	s := newTestSession(p)

	selected := el("div", Style{})
	body := el("body", Style{}, selected)
	_ = body

	if _, err := s.Extract(context.Background(), selected); err == nil {
		t.Fatal("default-style failure must abort the extraction")
	}
}

func TestBuildDocument(t *testing.T) {
	root := NewOutputElement("div", []Attr{{Key: "id", Val: "x"}}, "color: red;")
	root.Append(NewOutputText("hi"))

	doc := BuildDocument(root, "https://example.com/page", "Example")
	markup, err := RenderString(doc)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<base href="https://example.com/page"/>`,
		"<title>Example</title>",
		`<div id="x" style="color: red;">hi</div>`,
		`<meta charset="utf-8"/>`,
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("markup missing %q:\n%s", want, markup)
		}
	}
}
