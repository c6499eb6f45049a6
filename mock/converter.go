package mock

import "github.com/isaacchacko/den"

var _ den.Converter = (*Converter)(nil)

// Converter is a mock implementation of den.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
