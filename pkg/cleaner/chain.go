package cleaner

import (
	"fmt"
	"strings"
)

// ChainCleaner applies multiple cleaners in sequence, e.g. the editor
// pipeline followed by pretty-printing.
type ChainCleaner struct {
	cleaners []Cleaner
}

// NewChain creates a cleaner that applies cleaners in the order given.
//
// Example:
//
//	chain := cleaner.NewChain(
//	    regtidy.NewEditor(cfg, false),
//	    cleaner.NewPrettify(),
//	)
func NewChain(cleaners ...Cleaner) *ChainCleaner {
	return &ChainCleaner{
		cleaners: cleaners,
	}
}

// Clean applies all cleaners in sequence. The first failure aborts the
// chain and names the failing cleaner.
func (c *ChainCleaner) Clean(content string) (string, error) {
	var err error
	for _, cl := range c.cleaners {
		content, err = cl.Clean(content)
		if err != nil {
			return "", fmt.Errorf("%s: %w", cl.Name(), err)
		}
	}
	return content, nil
}

// Name returns the names of all chained cleaners.
func (c *ChainCleaner) Name() string {
	names := make([]string, len(c.cleaners))
	for i, cl := range c.cleaners {
		names[i] = cl.Name()
	}
	return "chain(" + strings.Join(names, "->") + ")"
}
