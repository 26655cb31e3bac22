package domsnip

import "github.com/hazyhaar/domsnip/snip"

// Format selects the output encoding of an extraction.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Mode records which backend performed an extraction.
type Mode string

const (
	ModeLive   Mode = "live"   // headless Chrome, real computed styles
	ModeStatic Mode = "static" // in-process cascade approximation
)

// Request describes one extraction. Exactly one of URL, File, or HTML
// must be set; Selector is required.
type Request struct {
	URL      string `json:"url,omitempty"`
	File     string `json:"file,omitempty"`
	HTML     string `json:"html,omitempty"`
	Selector string `json:"selector"`
	Format   Format `json:"format,omitempty"`
	Sanitize bool   `json:"sanitize,omitempty"`
}

// Result is a completed extraction.
type Result struct {
	Title    string     `json:"title,omitempty"`
	Source   string     `json:"source"`
	Selector string     `json:"selector"`
	Mode     Mode       `json:"mode"`
	HTML     string     `json:"html"`
	Markdown string     `json:"markdown,omitempty"`
	Stats    snip.Stats `json:"stats"`
}

// Inspection is a lightweight summary of what the selector would
// capture, without serializing the subtree.
type Inspection struct {
	Source       string `json:"source"`
	Selector     string `json:"selector"`
	Mode         Mode   `json:"mode"`
	Tag          string `json:"tag"`
	ID           string `json:"id,omitempty"`
	Class        string `json:"class,omitempty"`
	Children     int    `json:"children"`
	Declarations int    `json:"declarations"`
	HasBefore    bool   `json:"has_before"`
	HasAfter     bool   `json:"has_after"`
	ChainDepth   int    `json:"chain_depth"`
}
