package schema

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Composer composes and compiles schemas against one base and registry,
// keeping compiled schemas per selection.
type Composer struct {
	base     Schema
	registry *Registry
	cache    *cache.Cache
}

func NewComposer(base Schema, registry *Registry) *Composer {
	return &Composer{
		base:     base.clone(),
		registry: registry,
		cache:    cache.New(30*time.Minute, time.Hour),
	}
}

func (c *Composer) Compose(sel Selection) (Schema, error) {
	return Compose(c.base, sel, c.registry)
}

// Compiled returns the compiled schema for sel. Failures are not cached.
func (c *Composer) Compiled(sel Selection) (*Compiled, error) {
	key := fmt.Sprintf("%d:%016x", c.registry.Version(), sel.Hash())
	if cached, found := c.cache.Get(key); found {
		return cached.(*Compiled), nil
	}

	composed, err := c.Compose(sel)
	if err != nil {
		return nil, err
	}
	compiled, err := composed.Compile()
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, compiled, cache.DefaultExpiration)
	return compiled, nil
}
