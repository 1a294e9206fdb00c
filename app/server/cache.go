package server

import (
	"sync"

	"github.com/akarpov/pagegen/app/render"
)

// PageCache holds resolved pages in memory and deduplicates concurrent
// generation of the same id: under the lazy fallback policy a page is
// rendered at most once, and requests arriving while a render is in flight
// wait for it instead of starting their own.
type PageCache struct {
	mu       sync.Mutex
	pages    map[string]*render.RenderedPost
	inflight map[string]chan struct{}
}

func NewPageCache() *PageCache {
	return &PageCache{
		pages:    make(map[string]*render.RenderedPost),
		inflight: make(map[string]chan struct{}),
	}
}

func (c *PageCache) Get(id string) (*render.RenderedPost, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.pages[id]
	return page, ok
}

func (c *PageCache) Put(page *render.RenderedPost) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[page.ID] = page
}

func (c *PageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

// Flush drops every cached page. In-flight generations are unaffected; their
// results land in the fresh map.
func (c *PageCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[string]*render.RenderedPost)
}

// GetOrRender returns the cached page for id, or runs renderFn exactly once
// to produce it. A failed render is not cached, so a later request may try
// again.
func (c *PageCache) GetOrRender(id string, renderFn func() (*render.RenderedPost, error)) (*render.RenderedPost, error) {
	for {
		c.mu.Lock()
		if page, ok := c.pages[id]; ok {
			c.mu.Unlock()
			return page, nil
		}

		done, ok := c.inflight[id]
		if !ok {
			break
		}
		c.mu.Unlock()
		<-done

		// The render we waited on may have failed; check the cache again
		// and take over generation if it is still empty.
		if page, ok := c.Get(id); ok {
			return page, nil
		}
	}

	done := make(chan struct{})
	c.inflight[id] = done
	c.mu.Unlock()

	page, err := renderFn()

	c.mu.Lock()
	delete(c.inflight, id)
	if err == nil {
		c.pages[id] = page
	}
	c.mu.Unlock()
	close(done)

	return page, err
}
