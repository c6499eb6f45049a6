// Package trafilatura extracts the readable body of web pages with
// go-trafilatura. It is the primary extractor of the page reader.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/isaacchacko/den"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ den.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	// Language restricts extraction to pages in this language when set.
	Language string

	// IncludeComments keeps user comment sections.
	IncludeComments bool
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
// Returns EINVALID for empty input and EEXTRACTION when parsing fails.
func (e *Extractor) Extract(rawHTML string) (*den.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, den.Errorf(den.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: !e.IncludeComments,
		IncludeLinks:    true,
		Deduplicate:     true,
		TargetLanguage:  e.Language,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, den.Errorf(den.EEXTRACTION, "trafilatura: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, den.Errorf(den.EEXTRACTION, "render content: %v", err)
		}
	}

	return &den.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
