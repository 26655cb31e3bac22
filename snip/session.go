package snip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// StyleProvider yields the computed style of a freshly created, unstyled
// instance of a tag — the browser-default baseline the filter diffs
// against. Implementations typically keep an isolated rendering sandbox
// alive for the duration of a session; failure to produce a baseline is
// a fatal precondition for the whole extraction, not a per-node
// condition.
type StyleProvider interface {
	DefaultStyle(ctx context.Context, tag string) (Style, error)
}

// VariableSource resolves custom-property values against the original
// document during variable closure. BodyValue reads the property from
// the document body's computed style; InlineValue searches for any
// element whose inline style textually mentions the name and reads its
// computed value. Both return "" when nothing resolves.
type VariableSource interface {
	BodyValue(ctx context.Context, name string) (string, error)
	InlineValue(ctx context.Context, name string) (string, error)
}

// Stats summarizes one extraction.
type Stats struct {
	Nodes        int `json:"nodes"`
	Declarations int `json:"declarations"`
	Variables    int `json:"variables"`
	Pseudo       int `json:"pseudo"`
}

// Session is the context object for one extraction: the default-style
// provider and its per-tag cache, the custom-property ledger, and the
// variable source for closure resolution. Sessions are single-use and
// single-threaded; the cache and ledger are shared mutable state across
// the recursive traversal and follow first-write-wins semantics, never
// reset mid-traversal. Create a fresh Session per extraction.
type Session struct {
	provider StyleProvider
	vars     VariableSource
	ledger   *Ledger
	defaults map[string]Style
	logger   *slog.Logger
	stats    Stats
}

// NewSession creates a session. The logger may be nil.
func NewSession(provider StyleProvider, vars VariableSource, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		provider: provider,
		vars:     vars,
		ledger:   NewLedger(),
		defaults: make(map[string]Style),
		logger:   logger,
	}
}

// Stats reports counters accumulated so far.
func (s *Session) Stats() Stats { return s.stats }

// Extract runs the full pipeline for a selected element: ancestor chain,
// shell-wrapped subtree clone, then variable closure over the finished
// tree. The returned node is the output root container — the outermost
// ancestor shell, or the cloned element itself when the selection sits
// directly under body.
func (s *Session) Extract(ctx context.Context, selected *Node) (*OutputNode, error) {
	if selected == nil || selected.Kind != KindElement {
		return nil, fmt.Errorf("snip: selection is not an element")
	}

	chain := buildChain(selected)
	root, err := s.clone(ctx, selected, chain)
	if err != nil {
		return nil, err
	}

	s.closeVariables(ctx, root)
	s.stats.Variables = s.ledger.Len()
	return root, nil
}

// defaultStyleFor returns the cached browser-default style for a tag,
// consulting the provider on first sight. Cache entries live for the
// session; the first-built style for a tag is never replaced.
func (s *Session) defaultStyleFor(ctx context.Context, tag string) (Style, error) {
	tag = strings.ToLower(tag)
	if st, ok := s.defaults[tag]; ok {
		return st, nil
	}
	st, err := s.provider.DefaultStyle(ctx, tag)
	if err != nil {
		return Style{}, fmt.Errorf("snip: default style for <%s>: %w", tag, err)
	}
	s.defaults[tag] = st
	return st, nil
}
