// Package cleaner defines the Cleaner interface shared by the regtidy
// pipelines and the small cleaners composed around them (pretty-printing,
// pass-through, chains).
package cleaner

import (
	"fmt"
	"sort"

	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
	"github.com/jmylchreest/regtidy/pkg/prettify"
)

// Cleaner transforms an HTML fragment.
type Cleaner interface {
	// Clean transforms the input. On error no partial output is returned.
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}

// PrettifyCleaner renders canonical HTML in the diff-stable line form.
type PrettifyCleaner struct{}

// NewPrettify creates a pretty-printing cleaner.
func NewPrettify() *PrettifyCleaner {
	return &PrettifyCleaner{}
}

// Clean pretty-prints html.
func (c *PrettifyCleaner) Clean(html string) (string, error) {
	return prettify.Prettify(html), nil
}

// Name returns the cleaner type.
func (c *PrettifyCleaner) Name() string {
	return "prettify"
}

// DePrettifyCleaner joins pretty-printed HTML back into single-line form.
type DePrettifyCleaner struct{}

// NewDePrettify creates the inverse of the pretty-printing cleaner.
func NewDePrettify() *DePrettifyCleaner {
	return &DePrettifyCleaner{}
}

// Clean reverses Prettify.
func (c *DePrettifyCleaner) Clean(html string) (string, error) {
	return prettify.DePrettify(html), nil
}

// Name returns the cleaner type.
func (c *DePrettifyCleaner) Name() string {
	return "deprettify"
}

var factories = map[string]func(*regtidy.Config) Cleaner{
	"dirty":      func(cfg *regtidy.Config) Cleaner { return regtidy.NewDirty(cfg) },
	"editor":     func(cfg *regtidy.Config) Cleaner { return regtidy.NewEditor(cfg, false) },
	"prettify":   func(*regtidy.Config) Cleaner { return NewPrettify() },
	"deprettify": func(*regtidy.Config) Cleaner { return NewDePrettify() },
	"noop":       func(*regtidy.Config) Cleaner { return NewNoop() },
}

// Names lists the cleaners New accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named cleaner. Several names build a chain that applies
// them in order.
func New(cfg *regtidy.Config, names ...string) (Cleaner, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no cleaner named")
	}
	cleaners := make([]Cleaner, 0, len(names))
	for _, name := range names {
		factory, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown cleaner %q (available: %v)", name, Names())
		}
		cleaners = append(cleaners, factory(cfg))
	}
	if len(cleaners) == 1 {
		return cleaners[0], nil
	}
	return NewChain(cleaners...), nil
}
