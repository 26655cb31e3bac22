package domsnip

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// mdConverter wraps the html-to-markdown converter. One instance per
// Snipper; the converter is safe for concurrent use.
type mdConverter struct {
	conv *converter.Converter
}

func newMDConverter() *mdConverter {
	return &mdConverter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// convert renders extracted markup as markdown. The domain resolves
// relative links against the source page.
func (m *mdConverter) convert(markup, domain string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if domain != "" {
		opts = append(opts, converter.WithDomain(domain))
	}
	out, err := m.conv.ConvertString(markup, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
