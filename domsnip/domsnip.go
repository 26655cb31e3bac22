package domsnip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hazyhaar/domsnip/browser"
	"github.com/hazyhaar/domsnip/kit"
	"github.com/hazyhaar/domsnip/observability"
	"github.com/hazyhaar/domsnip/snip"
	"github.com/hazyhaar/domsnip/staticdom"
)

// Snipper is the extraction engine front door. It owns the lazily
// started browser and dispatches each request to the live or static
// backend. Safe for concurrent use.
type Snipper struct {
	cfg    Config
	logger *slog.Logger
	md     *mdConverter
	audit  *observability.AuditLogger

	mu  sync.Mutex
	mgr *browser.Manager
}

// New creates a Snipper with the given configuration. The browser is
// not launched until the first live extraction.
func New(cfg Config) *Snipper {
	cfg.defaults()
	return &Snipper{
		cfg:    cfg,
		logger: cfg.Logger,
		md:     newMDConverter(),
	}
}

// SetAudit attaches an extraction log. The caller keeps ownership of
// the logger and its database.
func (s *Snipper) SetAudit(a *observability.AuditLogger) {
	s.audit = a
}

// Close shuts down the browser if one was started.
func (s *Snipper) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mgr == nil {
		return nil
	}
	err := s.mgr.Close()
	s.mgr = nil
	return err
}

// Extract runs one extraction end to end: snapshot or static parse,
// style diffing, pseudo synthesis, variable closure, then rendering in
// the requested format.
func (s *Snipper) Extract(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	var res *Result
	var err error
	if req.URL != "" {
		res, err = s.extractLive(ctx, req)
	} else {
		res, err = s.extractStatic(ctx, req)
	}

	s.logAudit(ctx, req, res, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("domsnip: extracted",
		"source", res.Source, "selector", req.Selector, "mode", res.Mode,
		"nodes", res.Stats.Nodes, "declarations", res.Stats.Declarations,
		"variables", res.Stats.Variables, "duration", time.Since(start))
	return res, nil
}

// Inspect reports what the selector would capture without serializing
// the subtree. Useful for probing selectors before a full extraction.
func (s *Snipper) Inspect(ctx context.Context, req Request) (*Inspection, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	var node *snip.Node
	var source string
	mode := ModeStatic

	if req.URL != "" {
		mode = ModeLive
		mgr, err := s.manager(ctx)
		if err != nil {
			return nil, err
		}
		src, err := browser.Open(ctx, mgr, req.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
		}
		defer src.Close()
		node, err = src.Snapshot(ctx, req.Selector)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSelection, err)
		}
		source = req.URL
	} else {
		src, err := s.staticSource(req)
		if err != nil {
			return nil, err
		}
		node, err = selectStatic(src, req.Selector)
		if err != nil {
			return nil, err
		}
		source = sourceName(req)
	}

	// Count ancestors the way the chain builder walks them: element
	// parents up to but excluding body and html.
	depth := 0
	for p := node.Parent; p != nil && p.Kind == snip.KindElement && p.Tag != "body" && p.Tag != "html"; p = p.Parent {
		depth++
	}
	_, hasBefore := node.PseudoStyle(snip.PseudoBefore)
	_, hasAfter := node.PseudoStyle(snip.PseudoAfter)

	return &Inspection{
		Source:       source,
		Selector:     req.Selector,
		Mode:         mode,
		Tag:          node.Tag,
		ID:           node.Attr("id"),
		Class:        node.Attr("class"),
		Children:     len(node.Children),
		Declarations: node.Style.Len(),
		HasBefore:    hasBefore,
		HasAfter:     hasAfter,
		ChainDepth:   depth,
	}, nil
}

func (s *Snipper) validate(req *Request) error {
	sources := 0
	if req.URL != "" {
		sources++
	}
	if req.File != "" {
		sources++
	}
	if req.HTML != "" {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("%w: exactly one of url, file, html required", ErrInvalidRequest)
	}
	if req.Selector == "" {
		return fmt.Errorf("%w: selector required", ErrInvalidRequest)
	}
	if req.Format == "" {
		req.Format = Format(s.cfg.Extract.DefaultFormat)
	}
	switch req.Format {
	case FormatHTML, FormatMarkdown:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, req.Format)
	}
	return nil
}

func (s *Snipper) extractLive(ctx context.Context, req Request) (*Result, error) {
	mgr, err := s.manager(ctx)
	if err != nil {
		return nil, err
	}

	src, err := browser.Open(ctx, mgr, req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	defer src.Close()

	node, err := src.Snapshot(ctx, req.Selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSelection, err)
	}

	sess := snip.NewSession(src, src, s.logger)
	root, err := sess.Extract(ctx, node)
	if err != nil {
		return nil, err
	}

	return s.finish(req, ModeLive, src.URL(), src.Title(), root, sess.Stats())
}

func (s *Snipper) extractStatic(ctx context.Context, req Request) (*Result, error) {
	src, err := s.staticSource(req)
	if err != nil {
		return nil, err
	}

	node, err := selectStatic(src, req.Selector)
	if err != nil {
		return nil, err
	}

	sess := snip.NewSession(src, src, s.logger)
	root, err := sess.Extract(ctx, node)
	if err != nil {
		return nil, err
	}

	return s.finish(req, ModeStatic, "", src.Title(), root, sess.Stats())
}

func (s *Snipper) staticSource(req Request) (*staticdom.Source, error) {
	markup := req.HTML
	if req.File != "" {
		info, err := os.Stat(req.File)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if info.Size() > s.cfg.Extract.MaxSourceSize {
			return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrSourceTooLarge, info.Size(), s.cfg.Extract.MaxSourceSize)
		}
		data, err := os.ReadFile(req.File)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		markup = string(data)
	} else if int64(len(markup)) > s.cfg.Extract.MaxSourceSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrSourceTooLarge, len(markup), s.cfg.Extract.MaxSourceSize)
	}

	src, err := staticdom.FromString(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return src, nil
}

func selectStatic(src *staticdom.Source, selector string) (*snip.Node, error) {
	node, err := src.Select(selector)
	if err != nil {
		if errors.Is(err, staticdom.ErrNoMatch) {
			return nil, fmt.Errorf("%w: %q", ErrNoSelection, selector)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return node, nil
}

func (s *Snipper) finish(req Request, mode Mode, baseHref, title string, root *snip.OutputNode, stats snip.Stats) (*Result, error) {
	doc := snip.BuildDocument(root, baseHref, title)
	markup, err := snip.RenderString(doc)
	if err != nil {
		return nil, fmt.Errorf("domsnip: render: %w", err)
	}

	if req.Sanitize {
		markup = sanitizeHTML(markup)
	}

	res := &Result{
		Title:    title,
		Source:   sourceName(req),
		Selector: req.Selector,
		Mode:     mode,
		HTML:     markup,
		Stats:    stats,
	}

	if req.Format == FormatMarkdown {
		md, err := s.md.convert(markup, baseHref)
		if err != nil {
			return nil, fmt.Errorf("domsnip: markdown: %w", err)
		}
		res.Markdown = md
	}
	return res, nil
}

func (s *Snipper) manager(ctx context.Context) (*browser.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mgr != nil {
		return s.mgr, nil
	}

	stealth := browser.LevelHeadless
	if s.cfg.Browser.Stealth == "headful" {
		stealth = browser.LevelHeadful
	}
	mgr := browser.NewManager(browser.Config{
		RemoteURL:       s.cfg.Browser.Remote,
		Stealth:         stealth,
		XvfbDisplay:     s.cfg.Browser.XvfbDisplay,
		MemoryLimit:     s.cfg.Browser.MemoryLimit,
		RecycleInterval: s.cfg.Browser.RecycleInterval,
		NavTimeout:      s.cfg.Browser.NavTimeout,
		Logger:          s.logger,
	})
	if err := mgr.Start(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	s.mgr = mgr
	return mgr, nil
}

func (s *Snipper) logAudit(ctx context.Context, req Request, res *Result, err error, elapsed time.Duration) {
	if s.audit == nil {
		return
	}
	entry := &observability.AuditEntry{
		Source:     sourceName(req),
		Selector:   req.Selector,
		Mode:       string(ModeStatic),
		Transport:  kit.GetTransport(ctx),
		RequestID:  kit.GetRequestID(ctx),
		DurationMs: elapsed.Milliseconds(),
	}
	if req.URL != "" {
		entry.Mode = string(ModeLive)
	}
	if err != nil {
		entry.Status = "error"
		entry.ErrorMessage = err.Error()
	} else {
		entry.Status = "success"
		entry.Nodes = res.Stats.Nodes
		entry.Declarations = res.Stats.Declarations
		entry.Variables = res.Stats.Variables
		entry.Pseudo = res.Stats.Pseudo
		entry.OutputBytes = len(res.HTML)
	}
	s.audit.LogAsync(entry)
}

func sourceName(req Request) string {
	switch {
	case req.URL != "":
		return req.URL
	case req.File != "":
		return req.File
	default:
		return "inline"
	}
}
