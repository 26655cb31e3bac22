package domsnip

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domsnip/kit"
)

// RegisterMCP registers domsnip tools on an MCP server.
func (s *Snipper) RegisterMCP(srv *mcp.Server) {
	s.registerExtractTool(srv)
	s.registerInspectTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

var requestProperties = map[string]any{
	"url":      map[string]any{"type": "string", "description": "Page URL (live browser extraction)"},
	"file":     map[string]any{"type": "string", "description": "HTML file path (static extraction)"},
	"html":     map[string]any{"type": "string", "description": "Inline HTML markup (static extraction)"},
	"selector": map[string]any{"type": "string", "description": "CSS selector of the element to extract"},
}

// --- extract ---

func (s *Snipper) registerExtractTool(srv *mcp.Server) {
	props := map[string]any{
		"format":   map[string]any{"type": "string", "enum": []string{"html", "markdown"}},
		"sanitize": map[string]any{"type": "boolean", "description": "Strip scripts and active content from the output"},
	}
	for k, v := range requestProperties {
		props[k] = v
	}

	tool := &mcp.Tool{
		Name:        "domsnip_extract",
		Description: "Extract one styled element from a page or document into a self-contained HTML snippet. Provide exactly one of url, file, or html, plus a CSS selector.",
		InputSchema: inputSchema(props, []string{"selector"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*Request)
		return s.Extract(ctx, *r)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r Request
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- inspect ---

func (s *Snipper) registerInspectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domsnip_inspect",
		Description: "Report what a CSS selector would capture (tag, declaration count, pseudo content, ancestor depth) without extracting it.",
		InputSchema: inputSchema(requestProperties, []string{"selector"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*Request)
		return s.Inspect(ctx, *r)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r Request
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
