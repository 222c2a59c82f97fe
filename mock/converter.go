package mock

import "github.com/fwojciec/sitemapper"

var _ sitemapper.Converter = (*Converter)(nil)

// Converter is a mock implementation of sitemapper.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
