package router

import "io"

// pageCache keeps the view-models of recently visited history entries so
// going back or forward reuses them instead of resolving new ones. Only the
// owning frame's dispatcher touches it.
type pageCache struct {
	viewModels map[string]any
	order      []string // least recently used first
	maxSize    int
	onEvict    func(id string, err error)
}

func newPageCache(maxSize int) *pageCache {
	if maxSize < 0 {
		maxSize = 0
	}
	return &pageCache{
		viewModels: make(map[string]any),
		order:      make([]string, 0, maxSize),
		maxSize:    maxSize,
	}
}

// Set caches vm under id. With caching disabled vm is released at once.
func (c *pageCache) Set(id string, vm any) {
	if vm == nil {
		return
	}
	if c.maxSize == 0 {
		c.release(id, vm)
		return
	}
	if _, exists := c.viewModels[id]; exists {
		c.viewModels[id] = vm
		c.moveToEnd(id)
		return
	}

	if len(c.order) >= c.maxSize {
		c.evictOldest()
	}

	c.viewModels[id] = vm
	c.order = append(c.order, id)
}

// Remove drops the entry and closes its view-model.
func (c *pageCache) Remove(id string) {
	vm, exists := c.viewModels[id]
	if !exists {
		return
	}
	delete(c.viewModels, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.release(id, vm)
}

// Take removes the entry without closing its view-model and hands the
// view-model back to the caller.
func (c *pageCache) Take(id string) (any, bool) {
	vm, exists := c.viewModels[id]
	if !exists {
		return nil, false
	}
	delete(c.viewModels, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return vm, true
}

func (c *pageCache) Len() int {
	return len(c.order)
}

func (c *pageCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}

func (c *pageCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]

	if vm, exists := c.viewModels[oldest]; exists {
		delete(c.viewModels, oldest)
		c.release(oldest, vm)
	}
}

func (c *pageCache) release(id string, vm any) {
	closer, ok := vm.(io.Closer)
	if !ok {
		return
	}
	err := closer.Close()
	if c.onEvict != nil {
		c.onEvict(id, err)
	}
}

// Destroy releases every cached view-model.
func (c *pageCache) Destroy() {
	for _, id := range c.order {
		c.release(id, c.viewModels[id])
	}
	c.viewModels = make(map[string]any)
	c.order = c.order[:0]
}
