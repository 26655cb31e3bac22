package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/domsnip/snip"
)

// Source is one open page acting as a snip source: it snapshots the
// selected element's tree and implements the StyleProvider and
// VariableSource capabilities against the live document. One Source per
// extraction session; Close releases the tab and the default-style
// sandbox it may have created.
type Source struct {
	page    *rod.Page
	pageURL string
	title   string
	nav     time.Duration
}

// Open creates a stealth tab, navigates it, and waits for load.
func Open(ctx context.Context, mgr *Manager, pageURL string) (*Source, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: manager not started")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, mgr.NavTimeout())
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: load %s: %w", pageURL, err)
	}

	return &Source{page: page, pageURL: pageURL, nav: mgr.NavTimeout()}, nil
}

// Attach wraps an already-open page, for callers that manage tabs
// themselves.
func Attach(page *rod.Page, pageURL string) *Source {
	return &Source{page: page, pageURL: pageURL, nav: 30 * time.Second}
}

// URL returns the address the source is bound to.
func (s *Source) URL() string { return s.pageURL }

// Title returns the document title seen by the last Snapshot.
func (s *Source) Title() string { return s.title }

// Close removes the sandbox iframe if one was created and closes the
// tab. Errors are reported but the tab close always runs.
func (s *Source) Close() error {
	_, evalErr := s.page.Eval(closeSandboxScript)
	closeErr := s.page.Close()
	if closeErr != nil {
		return fmt.Errorf("browser: close tab: %w", closeErr)
	}
	if evalErr != nil {
		return fmt.Errorf("browser: remove sandbox: %w", evalErr)
	}
	return nil
}

// wire structures mirror the captureScript JSON.
type wireDecl struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Important bool   `json:"important"`
}

type wireNode struct {
	Kind     int         `json:"kind"`
	Tag      string      `json:"tag"`
	Text     string      `json:"text"`
	Attrs    []snip.Attr `json:"attrs"`
	Style    []wireDecl  `json:"style"`
	Before   []wireDecl  `json:"before"`
	After    []wireDecl  `json:"after"`
	Children []wireNode  `json:"children"`
}

type wireSnapshot struct {
	Title  string     `json:"title"`
	URL    string     `json:"url"`
	Chain  []wireNode `json:"chain"`
	Target wireNode   `json:"target"`
}

// Snapshot materializes the element matching the selector: its ancestor
// chain and full subtree with computed styles, in one script round trip.
// The returned node is the selected element; ancestors are reachable
// through Parent links.
func (s *Source) Snapshot(ctx context.Context, selector string) (*snip.Node, error) {
	elCtx, cancel := context.WithTimeout(ctx, s.nav)
	defer cancel()

	el, err := s.page.Context(elCtx).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: select %q: %w", selector, err)
	}

	res, err := el.Eval(captureScript)
	if err != nil {
		return nil, fmt.Errorf("browser: capture: %w", err)
	}

	var snap wireSnapshot
	if err := json.Unmarshal([]byte(res.Value.Str()), &snap); err != nil {
		return nil, fmt.Errorf("browser: decode snapshot: %w", err)
	}

	s.title = snap.Title
	if snap.URL != "" {
		s.pageURL = snap.URL
	}

	var parent *snip.Node
	for i := range snap.Chain {
		anc := buildNode(&snap.Chain[i], parent)
		parent = anc
	}
	target := buildNode(&snap.Target, parent)
	if target.Kind != snip.KindElement {
		return nil, fmt.Errorf("browser: selection is not an element")
	}
	return target, nil
}

func buildNode(w *wireNode, parent *snip.Node) *snip.Node {
	n := &snip.Node{Parent: parent}
	switch w.Kind {
	case 1:
		n.Kind = snip.KindText
		n.Text = w.Text
		return n
	case 0:
		n.Kind = snip.KindElement
	default:
		n.Kind = snip.KindOther
		return n
	}

	n.Tag = w.Tag
	n.Attrs = w.Attrs
	n.Style = toStyle(w.Style)
	if w.Before != nil || w.After != nil {
		n.Pseudo = make(map[snip.PseudoPos]snip.Style, 2)
		if w.Before != nil {
			n.Pseudo[snip.PseudoBefore] = toStyle(w.Before)
		}
		if w.After != nil {
			n.Pseudo[snip.PseudoAfter] = toStyle(w.After)
		}
	}
	if parent != nil {
		parent.Children = append(parent.Children, n)
	}
	for i := range w.Children {
		buildNode(&w.Children[i], n)
	}
	return n
}

func toStyle(decls []wireDecl) snip.Style {
	out := make([]snip.Decl, 0, len(decls))
	for _, d := range decls {
		out = append(out, snip.Decl{Name: d.Name, Value: d.Value, Important: d.Important})
	}
	return snip.NewStyle(out)
}

// DefaultStyle implements snip.StyleProvider through the in-page iframe
// sandbox. Failure here is fatal for the extraction: without a baseline
// the filter cannot distinguish authored styling from browser defaults.
func (s *Source) DefaultStyle(ctx context.Context, tag string) (snip.Style, error) {
	res, err := s.page.Context(ctx).Eval(defaultStyleScript, tag)
	if err != nil {
		return snip.Style{}, fmt.Errorf("browser: default-style sandbox: %w", err)
	}
	var decls []wireDecl
	if err := json.Unmarshal([]byte(res.Value.Str()), &decls); err != nil {
		return snip.Style{}, fmt.Errorf("browser: decode default style: %w", err)
	}
	return toStyle(decls), nil
}

// BodyValue implements snip.VariableSource against the live body.
func (s *Source) BodyValue(ctx context.Context, name string) (string, error) {
	res, err := s.page.Context(ctx).Eval(bodyValueScript, name)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// InlineValue implements snip.VariableSource by scanning elements whose
// inline style mentions the name.
func (s *Source) InlineValue(ctx context.Context, name string) (string, error) {
	res, err := s.page.Context(ctx).Eval(inlineValueScript, name)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

var (
	_ snip.StyleProvider  = (*Source)(nil)
	_ snip.VariableSource = (*Source)(nil)
)
