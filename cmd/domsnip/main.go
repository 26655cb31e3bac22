// Command domsnip extracts styled elements from web pages and HTML
// documents.
//
// Usage:
//
//	domsnip -url https://example.com -selector "#main" > out.html
//	domsnip -file page.html -selector ".card" -format markdown
//	domsnip -config domsnip.yaml -serve          # HTTP API
//	domsnip -config domsnip.yaml -mcp            # MCP over stdio
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domsnip/dbopen"
	"github.com/hazyhaar/domsnip/domsnip"
	"github.com/hazyhaar/domsnip/observability"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to domsnip.yaml config file")
	pageURL := flag.String("url", "", "page URL (live browser extraction)")
	filePath := flag.String("file", "", "HTML file path (static extraction)")
	inlineHTML := flag.String("html", "", "inline HTML markup (static extraction)")
	selector := flag.String("selector", "", "CSS selector of the element to extract")
	format := flag.String("format", "", "output format: html or markdown")
	sanitize := flag.Bool("sanitize", false, "strip scripts and active content")
	outPath := flag.String("out", "", "write output to file instead of stdout")
	serve := flag.Bool("serve", false, "run the HTTP API")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := runOptions{
		configPath: *configPath,
		serve:      *serve,
		mcp:        *mcpMode,
		outPath:    *outPath,
		req: domsnip.Request{
			URL:      *pageURL,
			File:     *filePath,
			HTML:     *inlineHTML,
			Selector: *selector,
			Format:   domsnip.Format(*format),
			Sanitize: *sanitize,
		},
	}

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("domsnip: fatal", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath string
	serve      bool
	mcp        bool
	outPath    string
	req        domsnip.Request
}

func run(ctx context.Context, logger *slog.Logger, opts runOptions) error {
	cfg := defaultConfig()
	if opts.configPath != "" {
		loaded, err := domsnip.LoadConfigFile(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Logger = logger

	s := domsnip.New(*cfg)
	defer s.Close()

	if cfg.Audit.Path != "" {
		db, err := dbopen.Open(cfg.Audit.Path,
			dbopen.WithMkdirAll(),
			dbopen.WithSchema(observability.Schema))
		if err != nil {
			return fmt.Errorf("open audit db: %w", err)
		}
		defer db.Close()

		audit := observability.NewAuditLogger(db, cfg.Audit.Buffer)
		defer audit.Close()
		s.SetAudit(audit)

		if n, err := audit.Purge(ctx, cfg.Audit.Retention); err != nil {
			logger.Warn("domsnip: audit purge failed", "error", err)
		} else if n > 0 {
			logger.Info("domsnip: audit purged", "entries", n)
		}
	}

	switch {
	case opts.mcp:
		return runMCP(ctx, s)
	case opts.serve:
		return runServe(ctx, logger, s, cfg.Server.Listen)
	default:
		return runOnce(ctx, s, opts)
	}
}

func runOnce(ctx context.Context, s *domsnip.Snipper, opts runOptions) error {
	if opts.req.URL == "" && opts.req.File == "" && opts.req.HTML == "" {
		fmt.Fprintln(os.Stderr, "usage: domsnip -url <url> | -file <path> | -html <markup>, plus -selector <css>")
		os.Exit(1)
	}

	res, err := s.Extract(ctx, opts.req)
	if err != nil {
		return err
	}

	out := res.HTML
	if res.Markdown != "" {
		out = res.Markdown
	}

	if opts.outPath != "" {
		return os.WriteFile(opts.outPath, []byte(out), 0644)
	}
	fmt.Println(out)
	return nil
}

func runServe(ctx context.Context, logger *slog.Logger, s *domsnip.Snipper, listen string) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("domsnip: http listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func defaultConfig() *domsnip.Config {
	return &domsnip.Config{
		Browser: domsnip.BrowserConfig{
			Stealth:         "headless",
			MemoryLimit:     1 << 30,
			RecycleInterval: 4 * time.Hour,
			NavTimeout:      30 * time.Second,
		},
		Server: domsnip.ServerConfig{Listen: ":8470"},
		Audit:  domsnip.AuditConfig{Buffer: 1000, Retention: 30 * 24 * time.Hour},
	}
}

func runMCP(ctx context.Context, s *domsnip.Snipper) error {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "domsnip",
		Version: version,
	}, nil)
	s.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}
