package snip

import (
	"context"
	"reflect"
	"testing"
)

func TestScanVarRefs(t *testing.T) {
	tests := []struct {
		value string
		want  []VarRef
	}{
		{"rgb(0, 0, 0)", nil},
		{"var(--a)", []VarRef{{Name: "--a"}}},
		{"var( --a )", []VarRef{{Name: "--a"}}},
		{"var(--a, 12px)", []VarRef{{Name: "--a", Fallback: "12px"}}},
		{
			"var(--a, rgb(0, 0, 0))",
			[]VarRef{{Name: "--a", Fallback: "rgb(0, 0, 0)"}},
		},
		{
			"1px solid var(--edge) inset var(--tint, #fff)",
			[]VarRef{{Name: "--edge"}, {Name: "--tint", Fallback: "#fff"}},
		},
		{
			// Nested reference inside a fallback is recorded too.
			"var(--a, var(--b, 1px))",
			[]VarRef{
				{Name: "--a", Fallback: "var(--b, 1px)"},
				{Name: "--b", Fallback: "1px"},
			},
		},
		{"var()", nil},
		{"var(notavar)", nil},
	}

	for _, tt := range tests {
		got := scanVarRefs(tt.value)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("scanVarRefs(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestLedgerFirstWriteWins(t *testing.T) {
	l := NewLedger()
	l.Record(VarRef{Name: "--a", Fallback: "first"})
	l.Record(VarRef{Name: "--a", Fallback: "second"})
	if fb := l.Fallback("--a"); fb != "first" {
		t.Fatalf("fallback = %q, want first-seen value", fb)
	}
	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1", l.Len())
	}
}

func TestParseDeclBlock(t *testing.T) {
	decls := parseDeclBlock("--a: #fff; color: var(--a); background: url(x;y.png); width: 10px !important;")
	want := []Decl{
		{Name: "--a", Value: "#fff"},
		{Name: "color", Value: "var(--a)"},
		{Name: "background", Value: "url(x;y.png)"},
		{Name: "width", Value: "10px", Important: true},
	}
	if !reflect.DeepEqual(decls, want) {
		t.Fatalf("got %v, want %v", decls, want)
	}
}

func TestCloseVariablesResolutionOrder(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]string
		inline map[string]string
		want   string
	}{
		{
			name: "body value preferred",
			body: map[string]string{"--x": "#111"},
			inline: map[string]string{
				"--x": "#222",
			},
			want: "#111",
		},
		{
			name:   "inline fallback",
			inline: map[string]string{"--x": "#222"},
			want:   "#222",
		},
		{
			name: "recorded fallback expression",
			want: "4px",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(newFixtureProvider(), &fixtureVars{body: tt.body, inline: tt.inline}, nil)
			s.ledger.Record(VarRef{Name: "--x", Fallback: "4px"})

			root := NewOutputElement("div", nil, "")
			s.closeVariables(context.Background(), root)

			decls := parseDeclBlock(root.StyleText)
			if len(decls) != 1 || decls[0].Name != "--x" || decls[0].Value != tt.want {
				t.Fatalf("root decls = %v, want --x: %s", decls, tt.want)
			}
		})
	}
}

func TestCloseVariablesInjectionOrderIsStable(t *testing.T) {
	// Injected root declarations come out sorted by name, so the same
	// input always renders the same document.
	for i := 0; i < 10; i++ {
		s := NewSession(newFixtureProvider(), &fixtureVars{}, nil)
		s.ledger.Record(VarRef{Name: "--zeta", Fallback: "1px"})
		s.ledger.Record(VarRef{Name: "--alpha", Fallback: "2px"})
		s.ledger.Record(VarRef{Name: "--mid", Fallback: "3px"})

		root := NewOutputElement("div", nil, "")
		s.closeVariables(context.Background(), root)

		want := "--alpha: 2px; --mid: 3px; --zeta: 1px; "
		if root.StyleText != want {
			t.Fatalf("injected block = %q, want %q", root.StyleText, want)
		}
	}
}

func TestCloseVariablesSkipsDeclaredNames(t *testing.T) {
	s := NewSession(newFixtureProvider(), &fixtureVars{body: map[string]string{"--x": "#111"}}, nil)
	s.ledger.Record(VarRef{Name: "--x"})

	// The name is already declared on a descendant; no injection at
	// the root.
	root := NewOutputElement("div", nil, "")
	child := NewOutputElement("span", nil, "--x: #333; color: var(--x);")
	root.Append(child)

	s.closeVariables(context.Background(), root)
	if root.StyleText != "" {
		t.Fatalf("expected no injection, got %q", root.StyleText)
	}
}

func TestCloseVariablesClosureCompleteness(t *testing.T) {
	// Every referenced name ends up declared on the root after closure.
	s := NewSession(newFixtureProvider(), &fixtureVars{
		body: map[string]string{"--a": "#00f"},
	}, nil)

	root := NewOutputElement("div", nil, "color: var(--a); padding: var(--pad, 2px);")
	s.recordVarRefs("var(--a)")
	s.recordVarRefs("var(--pad, 2px)")

	s.closeVariables(context.Background(), root)

	declared := map[string]bool{}
	collectDeclaredVars(root, declared)
	for _, name := range []string{"--a", "--pad"} {
		if !declared[name] {
			t.Errorf("%s not declared after closure", name)
		}
	}
}
