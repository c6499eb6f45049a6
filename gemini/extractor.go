package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/isaacchacko/den"
	"google.golang.org/genai"
)

// Extraction defaults.
const (
	DefaultMaxConcepts = 5
	DefaultMaxTokens   = 30000
)

var _ den.ConceptExtractor = (*ConceptExtractor)(nil)

// ConceptExtractor implements den.ConceptExtractor by reading a page and
// asking Gemini for its key concepts.
type ConceptExtractor struct {
	gen    Generator
	reader den.PageReader

	// Tokens trims page content to MaxTokens before prompting. Optional.
	Tokens      den.TokenCounter
	MaxTokens   int
	MaxConcepts int
}

// NewConceptExtractor creates a new ConceptExtractor.
func NewConceptExtractor(gen Generator, reader den.PageReader) *ConceptExtractor {
	return &ConceptExtractor{
		gen:         gen,
		reader:      reader,
		MaxTokens:   DefaultMaxTokens,
		MaxConcepts: DefaultMaxConcepts,
	}
}

type extractResponse struct {
	Concepts []den.Concept `json:"concepts"`
}

// ExtractConcepts returns the key concepts of the page at url in the order
// the model ranked them. Returns EEXTRACTION if the page cannot be read.
func (e *ConceptExtractor) ExtractConcepts(ctx context.Context, url string) ([]den.Concept, error) {
	page, err := e.reader.Read(ctx, url)
	if err != nil {
		if den.ErrorCode(err) == den.EEXTRACTION {
			return nil, err
		}
		return nil, den.Errorf(den.EEXTRACTION, "read %s: %v", url, err)
	}
	if strings.TrimSpace(page.Content) == "" {
		return nil, den.Errorf(den.EEXTRACTION, "no readable content at %s", url)
	}

	content, err := e.truncate(ctx, page.Content)
	if err != nil {
		return nil, err
	}

	text, err := e.gen.Generate(ctx, BuildExtractPrompt(page, content, e.MaxConcepts), BuildExtractConfig())
	if err != nil {
		return nil, err
	}

	var resp extractResponse
	if err := decodeJSON(text, &resp); err != nil {
		return nil, err
	}

	concepts := make([]den.Concept, 0, len(resp.Concepts))
	seen := make(map[string]bool)
	for _, c := range resp.Concepts {
		c.Title = strings.TrimSpace(c.Title)
		c.Description = strings.TrimSpace(c.Description)
		key := strings.ToLower(c.Title)
		if c.Title == "" || seen[key] {
			continue
		}
		seen[key] = true
		concepts = append(concepts, c)
		if e.MaxConcepts > 0 && len(concepts) == e.MaxConcepts {
			break
		}
	}
	return concepts, nil
}

func (e *ConceptExtractor) truncate(ctx context.Context, text string) (string, error) {
	return truncateTokens(ctx, e.Tokens, text, e.MaxTokens)
}

// truncateTokens shortens text until it fits in limit tokens. Without a
// token counter it falls back to four characters per token. A limit of zero
// or less leaves text untouched.
func truncateTokens(ctx context.Context, tokens den.TokenCounter, text string, limit int) (string, error) {
	if limit <= 0 {
		return text, nil
	}
	if tokens == nil {
		if r := []rune(text); len(r) > limit*4 {
			return string(r[:limit*4]), nil
		}
		return text, nil
	}

	for range 8 {
		n, err := tokens.CountTokens(ctx, text)
		if err != nil {
			return "", den.Errorf(den.EINTERNAL, "count tokens: %v", err)
		}
		if n <= limit {
			return text, nil
		}
		r := []rune(text)
		keep := int(float64(len(r)) * float64(limit) / float64(n) * 0.95)
		text = string(r[:keep])
	}
	return text, nil
}

// BuildExtractConfig returns the GenerateContentConfig for concept extraction.
func BuildExtractConfig() *genai.GenerateContentConfig {
	return jsonConfig(
		"You extract the key concepts a curious reader would want to explore next from a web page. "+
			"Each concept has a short title of at most five words and a one sentence description. "+
			"Order concepts from most to least central to the page.",
		0.2,
		&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"concepts": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"title":       {Type: genai.TypeString},
							"description": {Type: genai.TypeString},
						},
						Required: []string{"title", "description"},
					},
				},
			},
			Required: []string{"concepts"},
		},
	)
}

// BuildExtractPrompt builds the user prompt for concept extraction.
func BuildExtractPrompt(page *den.PageContent, content string, maxConcepts int) string {
	var sb strings.Builder
	title := page.Title
	if title == "" {
		title = page.URL
	}
	sb.WriteString("<page>\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", title)
	fmt.Fprintf(&sb, "<source>%s</source>\n", page.URL)
	fmt.Fprintf(&sb, "<content>%s</content>\n", content)
	sb.WriteString("</page>\n\n")
	if maxConcepts > 0 {
		fmt.Fprintf(&sb, "List at most %d concepts.", maxConcepts)
	} else {
		sb.WriteString("List the key concepts.")
	}
	return sb.String()
}
