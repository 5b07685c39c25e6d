// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"sync"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// cache memoizes query steps within one run so a batch with repeated
// DOIs or titles costs one lookup each. A stored nil Work is a
// remembered miss. The cache is never shared across runs: each Resolver
// owns exactly one.
type cache struct {
	mu      sync.RWMutex
	entries map[QueryStep]*types.Work
}

func newCache() *cache {
	return &cache{entries: make(map[QueryStep]*types.Work)}
}

func (c *cache) get(step QueryStep) (*types.Work, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	work, ok := c.entries[step]
	return work, ok
}

func (c *cache) put(step QueryStep, work *types.Work) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[step] = work
}
