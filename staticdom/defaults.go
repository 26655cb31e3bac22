package staticdom

// User-agent default tables. These mirror what an unstyled element would
// compute to in the same approximated value space the cascade produces,
// so that diffing against them cancels out exactly. Kept deliberately
// small: display per tag plus a few tag-intrinsic typography defaults.

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "dd": true, "details": true, "dialog": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hgroup": true, "hr": true, "html": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "ul": true,
}

var displayOverrides = map[string]string{
	"li":       "list-item",
	"table":    "table",
	"thead":    "table-header-group",
	"tbody":    "table-row-group",
	"tfoot":    "table-footer-group",
	"tr":       "table-row",
	"td":       "table-cell",
	"th":       "table-cell",
	"caption":  "table-caption",
	"colgroup": "table-column-group",
	"col":      "table-column",
	"head":     "none",
	"script":   "none",
	"style":    "none",
	"template": "none",
	"title":    "none",
}

// defaultDisplay returns the UA display value for a tag.
func defaultDisplay(tag string) string {
	if d, ok := displayOverrides[tag]; ok {
		return d
	}
	if blockTags[tag] {
		return "block"
	}
	return "inline"
}

// tagDefaults lists non-display intrinsic defaults per tag.
var tagDefaults = map[string][][2]string{
	"a":      {{"color", "rgb(0, 0, 238)"}, {"text-decoration", "underline"}, {"cursor", "pointer"}},
	"b":      {{"font-weight", "700"}},
	"strong": {{"font-weight", "700"}},
	"h1":     {{"font-weight", "700"}, {"font-size", "2em"}},
	"h2":     {{"font-weight", "700"}, {"font-size", "1.5em"}},
	"h3":     {{"font-weight", "700"}, {"font-size", "1.17em"}},
	"h4":     {{"font-weight", "700"}},
	"h5":     {{"font-weight", "700"}, {"font-size", "0.83em"}},
	"h6":     {{"font-weight", "700"}, {"font-size", "0.67em"}},
	"i":      {{"font-style", "italic"}},
	"em":     {{"font-style", "italic"}},
	"cite":   {{"font-style", "italic"}},
	"var":    {{"font-style", "italic"}},
	"code":   {{"font-family", "monospace"}},
	"kbd":    {{"font-family", "monospace"}},
	"pre":    {{"font-family", "monospace"}, {"white-space", "pre"}},
	"samp":   {{"font-family", "monospace"}},
	"small":  {{"font-size", "smaller"}},
	"u":      {{"text-decoration", "underline"}},
	"s":      {{"text-decoration", "line-through"}},
	"del":    {{"text-decoration", "line-through"}},
	"th":     {{"font-weight", "700"}, {"text-align", "center"}},
	"center": {{"text-align", "center"}},
}

// inheritedProps is the same conservative inheritance allow-list the
// engine's filter uses: typography, text layout, list and table
// properties. The two lists must stay in sync so that values the cascade
// delivered here are the ones the filter later trusts the cascade to
// deliver in the extracted copy.
var inheritedProps = map[string]bool{
	"border-collapse":     true,
	"border-spacing":      true,
	"caption-side":        true,
	"color":               true,
	"cursor":              true,
	"direction":           true,
	"empty-cells":         true,
	"font":                true,
	"font-family":         true,
	"font-size":           true,
	"font-style":          true,
	"font-variant":        true,
	"font-weight":         true,
	"letter-spacing":      true,
	"line-height":         true,
	"list-style":          true,
	"list-style-image":    true,
	"list-style-position": true,
	"list-style-type":     true,
	"overflow-wrap":       true,
	"quotes":              true,
	"tab-size":            true,
	"text-align":          true,
	"text-indent":         true,
	"text-transform":      true,
	"visibility":          true,
	"white-space":         true,
	"word-break":          true,
	"word-spacing":        true,
}
