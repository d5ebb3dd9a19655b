package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds a fresh instance of a module.
type Factory func() (any, error)

// Catalog is the set of modules that can be loaded by name at runtime.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

func (c *Catalog) Add(module string, f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[strings.ToLower(module)] = f
}

func (c *Catalog) New(module string) (any, error) {
	c.mu.RLock()
	f, ok := c.factories[strings.ToLower(module)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", module, ErrUnknownModule)
	}
	v, err := f()
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", module, err)
	}
	return v, nil
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.factories))
	for name := range c.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadInto builds each named module and loads it into r.
func (c *Catalog) LoadInto(r *Registry, modules ...string) error {
	for _, module := range modules {
		v, err := c.New(module)
		if err != nil {
			return err
		}
		if err := r.Load(v); err != nil {
			return fmt.Errorf("loading %s: %w", module, err)
		}
	}
	return nil
}
