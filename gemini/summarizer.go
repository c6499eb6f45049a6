package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/isaacchacko/den"
	"google.golang.org/genai"
)

// DefaultSummaryTokens is the token budget shared by all page content in
// one summary prompt.
const DefaultSummaryTokens = 60000

var _ den.Summarizer = (*Summarizer)(nil)

// Summarizer implements den.Summarizer using Google Gemini. Page content is
// taken from the cache when available; uncached pages are cited by URL only.
type Summarizer struct {
	gen   Generator
	cache den.PageCache

	// Tokens trims cached page content so that all pages together fit in
	// MaxTokens. Optional.
	Tokens    den.TokenCounter
	MaxTokens int
}

// NewSummarizer creates a new Summarizer. cache may be nil.
func NewSummarizer(gen Generator, cache den.PageCache) *Summarizer {
	return &Summarizer{gen: gen, cache: cache, MaxTokens: DefaultSummaryTokens}
}

type summaryResponse struct {
	Answer      string `json:"answer"`
	ShortAnswer string `json:"shortAnswer"`
}

// Summarize answers topic from the given pages and concepts.
func (s *Summarizer) Summarize(ctx context.Context, pages []string, concepts []den.Concept, topic string) (*den.Summary, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, den.Errorf(den.EINVALID, "topic required")
	}

	var contents []*den.PageContent
	if s.cache != nil && len(pages) > 0 {
		var err error
		contents, err = s.cache.FindPages(ctx, pages)
		if err != nil {
			return nil, err
		}
		if contents, err = s.trim(ctx, contents); err != nil {
			return nil, err
		}
	}

	text, err := s.gen.Generate(ctx, BuildSummaryPrompt(pages, contents, concepts, topic), BuildSummaryConfig())
	if err != nil {
		return nil, err
	}

	var resp summaryResponse
	if err := decodeJSON(text, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Answer) == "" {
		return nil, den.Errorf(den.ECOLLABORATOR, "model returned an empty answer")
	}

	return &den.Summary{
		Answer:      strings.TrimSpace(resp.Answer),
		ShortAnswer: den.ShortAnswer(resp.Answer, resp.ShortAnswer),
	}, nil
}

// trim gives every page an equal share of MaxTokens. The cached pages are
// copied, not modified.
func (s *Summarizer) trim(ctx context.Context, contents []*den.PageContent) ([]*den.PageContent, error) {
	if s.MaxTokens <= 0 || len(contents) == 0 {
		return contents, nil
	}
	share := max(s.MaxTokens/len(contents), 1)

	trimmed := make([]*den.PageContent, 0, len(contents))
	for _, p := range contents {
		content, err := truncateTokens(ctx, s.Tokens, p.Content, share)
		if err != nil {
			return nil, err
		}
		cp := *p
		cp.Content = content
		trimmed = append(trimmed, &cp)
	}
	return trimmed, nil
}

// BuildSummaryConfig returns the GenerateContentConfig for summaries.
func BuildSummaryConfig() *genai.GenerateContentConfig {
	return jsonConfig(
		"You are a helpful assistant answering a search query from the pages a user has read "+
			"and the concepts found on them. Answer based only on the material provided. "+
			"Give a short paragraph as the answer and a shortAnswer of at most five words.",
		0.4,
		&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"answer":      {Type: genai.TypeString},
				"shortAnswer": {Type: genai.TypeString},
			},
			Required: []string{"answer", "shortAnswer"},
		},
	)
}

// BuildSummaryPrompt builds the user prompt containing pages, concepts and
// the topic. Pages without cached content are listed by URL.
func BuildSummaryPrompt(urls []string, contents []*den.PageContent, concepts []den.Concept, topic string) string {
	cached := make(map[string]*den.PageContent, len(contents))
	for _, p := range contents {
		cached[p.URL] = p
	}

	var sb strings.Builder
	sb.WriteString("<documents>\n")
	for i, u := range urls {
		sb.WriteString("<document>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", i+1)
		if p, ok := cached[u]; ok {
			title := p.Title
			if title == "" {
				title = p.URL
			}
			fmt.Fprintf(&sb, "<title>%s</title>\n", title)
			fmt.Fprintf(&sb, "<source>%s</source>\n", u)
			fmt.Fprintf(&sb, "<content>%s</content>\n", p.Content)
		} else {
			fmt.Fprintf(&sb, "<source>%s</source>\n", u)
		}
		sb.WriteString("</document>\n")
	}
	sb.WriteString("</documents>\n\n")
	if len(concepts) > 0 {
		sb.WriteString("<concepts>\n")
		sb.WriteString(den.FormatConcepts(concepts))
		sb.WriteString("</concepts>\n\n")
	}
	fmt.Fprintf(&sb, "Query: %s", topic)
	return sb.String()
}
