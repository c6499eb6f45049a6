// Package readability is the fallback extractor used when trafilatura finds
// no article body, which happens on short or unusually structured pages.
package readability

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/isaacchacko/den"
)

var _ den.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
// When no article is found the page excerpt is used as content.
func (e *Extractor) Extract(rawHTML string) (*den.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, den.Errorf(den.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, den.Errorf(den.EEXTRACTION, "readability: %v", err)
	}

	content := article.Content
	if strings.TrimSpace(content) == "" && article.Excerpt != "" {
		content = "<p>" + article.Excerpt + "</p>"
	}

	return &den.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: content,
	}, nil
}
