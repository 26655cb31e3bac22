package domsnip

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/domsnip/snip"
)

// sanitizePolicy keeps the document shell, inline styles, and the
// pseudo-content markers the cloner emits, and strips everything
// active: scripts, event handlers, iframes, forms.
var sanitizePolicy = buildSanitizePolicy()

func buildSanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// bluemonday has no doctype allowance API; doctype tokens are always
	// stripped by the sanitizer regardless of policy.
	p.AllowElements("html", "head", "body", "title", "base", "meta", "span")
	p.AllowAttrs("charset").OnElements("meta")
	p.AllowAttrs("href").OnElements("base")
	p.AllowAttrs("style").Globally()
	p.AllowAttrs("id", "class").Globally()
	p.AllowAttrs(snip.MarkerAttr).OnElements("span")
	return p
}

func sanitizeHTML(markup string) string {
	return sanitizePolicy.Sanitize(markup)
}
