package den

import (
	"context"
	"strings"
)

// Concept is a single idea extracted from a page.
type Concept struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DedupeResult holds a deduplicated concept list.
type DedupeResult struct {
	Concepts     []Concept `json:"concepts"`
	RemovedCount int       `json:"removedCount"`
}

// Summary holds the long and short answers for a topic.
type Summary struct {
	Answer      string `json:"answer"`
	ShortAnswer string `json:"shortAnswer"`
}

// ConceptExtractor extracts a small ordered list of concepts from a page.
type ConceptExtractor interface {
	// ExtractConcepts reads the page at url and returns its key concepts.
	// Returns EEXTRACTION if the page cannot be fetched or parsed.
	ExtractConcepts(ctx context.Context, url string) ([]Concept, error)
}

// SimilarityScorer rates how related two short strings are.
type SimilarityScorer interface {
	// Score returns an affinity between a and b in [0,1].
	Score(ctx context.Context, a, b string) (float64, error)
}

// ConceptDeduplicator merges near-duplicate concepts.
type ConceptDeduplicator interface {
	Deduplicate(ctx context.Context, concepts []Concept) (*DedupeResult, error)
}

// Summarizer answers a topic from a set of source pages and concepts.
type Summarizer interface {
	Summarize(ctx context.Context, pages []string, concepts []Concept, topic string) (*Summary, error)
}

// MaxShortAnswerWords is the word limit of a short answer.
const MaxShortAnswerWords = 5

// ShortAnswer trims short to MaxShortAnswerWords words. When short is blank
// the first words of answer are used instead.
func ShortAnswer(answer, short string) string {
	words := strings.Fields(short)
	if len(words) == 0 {
		words = strings.Fields(answer)
	}
	if len(words) > MaxShortAnswerWords {
		words = words[:MaxShortAnswerWords]
	}
	return strings.Join(words, " ")
}

// ScoreClamp forces a score into [0,1]. NaN becomes 0.
func ScoreClamp(score float64) float64 {
	switch {
	case score != score:
		return 0
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}
