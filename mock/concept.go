package mock

import (
	"context"

	"github.com/isaacchacko/den"
)

var _ den.ConceptExtractor = (*ConceptExtractor)(nil)

// ConceptExtractor is a mock implementation of den.ConceptExtractor.
type ConceptExtractor struct {
	ExtractConceptsFn func(ctx context.Context, url string) ([]den.Concept, error)
}

func (e *ConceptExtractor) ExtractConcepts(ctx context.Context, url string) ([]den.Concept, error) {
	return e.ExtractConceptsFn(ctx, url)
}

var _ den.SimilarityScorer = (*SimilarityScorer)(nil)

// SimilarityScorer is a mock implementation of den.SimilarityScorer.
type SimilarityScorer struct {
	ScoreFn func(ctx context.Context, a, b string) (float64, error)
}

func (s *SimilarityScorer) Score(ctx context.Context, a, b string) (float64, error) {
	return s.ScoreFn(ctx, a, b)
}

var _ den.ConceptDeduplicator = (*ConceptDeduplicator)(nil)

// ConceptDeduplicator is a mock implementation of den.ConceptDeduplicator.
type ConceptDeduplicator struct {
	DeduplicateFn func(ctx context.Context, concepts []den.Concept) (*den.DedupeResult, error)
}

func (d *ConceptDeduplicator) Deduplicate(ctx context.Context, concepts []den.Concept) (*den.DedupeResult, error) {
	return d.DeduplicateFn(ctx, concepts)
}

var _ den.Summarizer = (*Summarizer)(nil)

// Summarizer is a mock implementation of den.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, pages []string, concepts []den.Concept, topic string) (*den.Summary, error)
}

func (s *Summarizer) Summarize(ctx context.Context, pages []string, concepts []den.Concept, topic string) (*den.Summary, error) {
	return s.SummarizeFn(ctx, pages, concepts, topic)
}
