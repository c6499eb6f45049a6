// Package htmltomarkdown converts extracted page HTML into the Markdown that
// language model prompts are built from.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/isaacchacko/den"
)

var _ den.Converter = (*Converter)(nil)

// DefaultStripSelectors removes media and embeds that carry no text.
var DefaultStripSelectors = []string{"img", "picture", "figure > svg", "svg", "iframe", "video", "audio", "noscript", "form"}

var blankLines = regexp.MustCompile(`\n{3,}`)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv  *converter.Converter
	strip []string
}

// Option configures a Converter.
type Option func(*Converter)

// WithStripSelectors replaces the CSS selectors removed before conversion.
func WithStripSelectors(selectors ...string) Option {
	return func(c *Converter) {
		c.strip = selectors
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	c := &Converter{conv: conv, strip: DefaultStripSelectors}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms HTML content into Markdown.
// Returns EINVALID for blank input.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", den.Errorf(den.EINVALID, "empty HTML input")
	}

	html, err := c.clean(html)
	if err != nil {
		return "", err
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", den.Errorf(den.EEXTRACTION, "convert to markdown: %v", err)
	}

	return strings.TrimSpace(blankLines.ReplaceAllString(result, "\n\n")), nil
}

func (c *Converter) clean(html string) (string, error) {
	if len(c.strip) == 0 {
		return html, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", den.Errorf(den.EEXTRACTION, "parse html: %v", err)
	}
	doc.Find(strings.Join(c.strip, ", ")).Remove()
	out, err := doc.Find("body").Html()
	if err != nil {
		return "", den.Errorf(den.EEXTRACTION, "render html: %v", err)
	}
	return out, nil
}
