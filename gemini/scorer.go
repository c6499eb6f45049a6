package gemini

import (
	"context"
	"fmt"
	"math"

	"github.com/isaacchacko/den"
	"google.golang.org/genai"
)

var _ den.SimilarityScorer = (*Scorer)(nil)

// Scorer implements den.SimilarityScorer by asking Gemini to rate how
// closely two short strings are related.
type Scorer struct {
	gen Generator
}

// NewScorer creates a new Scorer.
func NewScorer(gen Generator) *Scorer {
	return &Scorer{gen: gen}
}

type scoreResponse struct {
	Score *float64 `json:"score"`
}

// Score returns the affinity of a and b in [0,1].
func (s *Scorer) Score(ctx context.Context, a, b string) (float64, error) {
	if a == "" || b == "" {
		return 0, den.Errorf(den.EINVALID, "both strings required")
	}

	text, err := s.gen.Generate(ctx, BuildScorePrompt(a, b), BuildScoreConfig())
	if err != nil {
		return 0, err
	}

	var resp scoreResponse
	if err := decodeJSON(text, &resp); err != nil {
		return 0, err
	}
	if resp.Score == nil || math.IsNaN(*resp.Score) {
		return 0, den.Errorf(den.ECOLLABORATOR, "model response has no score")
	}
	return den.ScoreClamp(*resp.Score), nil
}

// BuildScoreConfig returns the GenerateContentConfig for similarity scoring.
func BuildScoreConfig() *genai.GenerateContentConfig {
	return jsonConfig(
		"You rate how closely two topics are related on a scale from 0 (unrelated) to 1 (the same topic). "+
			"Answer with a single number.",
		0,
		&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score": {Type: genai.TypeNumber},
			},
			Required: []string{"score"},
		},
	)
}

// BuildScorePrompt builds the user prompt for similarity scoring.
func BuildScorePrompt(a, b string) string {
	return fmt.Sprintf("<a>%s</a>\n<b>%s</b>", a, b)
}
