package gemini

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/isaacchacko/den"
	"google.golang.org/genai"
)

var _ den.ConceptDeduplicator = (*Deduplicator)(nil)

// Deduplicator implements den.ConceptDeduplicator by asking Gemini which
// concepts to keep. Kept concepts are returned unchanged in input order.
type Deduplicator struct {
	gen Generator
}

// NewDeduplicator creates a new Deduplicator.
func NewDeduplicator(gen Generator) *Deduplicator {
	return &Deduplicator{gen: gen}
}

type dedupResponse struct {
	Keep []int `json:"keep"`
}

// Deduplicate removes concepts that repeat an earlier one. Lists of fewer
// than two concepts are returned without a model call.
func (d *Deduplicator) Deduplicate(ctx context.Context, concepts []den.Concept) (*den.DedupeResult, error) {
	if len(concepts) < 2 {
		return &den.DedupeResult{Concepts: slices.Clone(concepts)}, nil
	}

	text, err := d.gen.Generate(ctx, BuildDedupPrompt(concepts), BuildDedupConfig())
	if err != nil {
		return nil, err
	}

	var resp dedupResponse
	if err := decodeJSON(text, &resp); err != nil {
		return nil, err
	}

	keep := make(map[int]bool, len(resp.Keep))
	for _, i := range resp.Keep {
		if i < 1 || i > len(concepts) {
			return nil, den.Errorf(den.ECOLLABORATOR, "model kept unknown concept %d", i)
		}
		keep[i-1] = true
	}
	if len(keep) == 0 {
		return nil, den.Errorf(den.ECOLLABORATOR, "model kept no concepts")
	}

	kept := make([]den.Concept, 0, len(keep))
	for i, c := range concepts {
		if keep[i] {
			kept = append(kept, c)
		}
	}
	return &den.DedupeResult{Concepts: kept, RemovedCount: len(concepts) - len(kept)}, nil
}

// BuildDedupConfig returns the GenerateContentConfig for deduplication.
func BuildDedupConfig() *genai.GenerateContentConfig {
	return jsonConfig(
		"You merge duplicate concepts. Two concepts are duplicates when they name the same idea, "+
			"even if worded differently. For each group of duplicates keep the earliest one. "+
			"Return the numbers of the concepts to keep.",
		0,
		&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"keep": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeInteger},
				},
			},
			Required: []string{"keep"},
		},
	)
}

// BuildDedupPrompt builds the user prompt listing numbered concepts.
func BuildDedupPrompt(concepts []den.Concept) string {
	var sb strings.Builder
	sb.WriteString("<concepts>\n")
	for i, c := range concepts {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, c.Title, c.Description)
	}
	sb.WriteString("</concepts>")
	return sb.String()
}
