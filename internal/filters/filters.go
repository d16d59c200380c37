// internal/filters/filters.go
package filters

import (
	"errors"
	"fmt"
	"sort"

	"mdpub/internal/util"
)

var ErrUnknownFilter = errors.New("unknown filter")

// Filter rewrites markdown source before it is converted to HTML.
type Filter interface {
	Name() string
	Apply(src string) (string, error)
}

// registry is the closed set of filters a document may ask for.
var registry = map[string]func() Filter{
	"editml":   func() Filter { return editMLFilter{} },
	"diagrams": func() Filter { return newDiagramFilter() },
}

// Names lists the available filters.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a new instance of the named filter.
func Lookup(name string) (Filter, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownFilter, name, Names())
	}
	return ctor(), nil
}

// Chain applies filters in order.
type Chain []Filter

// Parse builds a chain from a comma separated list of filter names.
func Parse(list string) (Chain, error) {
	var c Chain
	for _, name := range util.SplitList(list) {
		f, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		c = append(c, f)
	}
	return c, nil
}

func (c Chain) Apply(src string) (string, error) {
	for _, f := range c {
		out, err := f.Apply(src)
		if err != nil {
			return src, fmt.Errorf("filter %s: %w", f.Name(), err)
		}
		src = out
	}
	return src, nil
}
