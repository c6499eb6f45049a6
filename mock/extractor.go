package mock

import "github.com/isaacchacko/den"

var _ den.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of den.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*den.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*den.ExtractResult, error) {
	return e.ExtractFn(html)
}
