package build

import (
	"sort"
	"sync"
	"time"

	"github.com/akarpov/pagegen/app/render"
)

// Result aggregates the output of a build pass: every enumerated id appears
// either in Pages or in Failures.
type Result struct {
	mu       sync.Mutex
	pages    map[string]*render.RenderedPost
	failures map[string]string

	Duration time.Duration
}

func NewResult() *Result {
	return &Result{
		pages:    make(map[string]*render.RenderedPost),
		failures: make(map[string]string),
	}
}

func (r *Result) AddPage(page *render.RenderedPost) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[page.ID] = page
}

func (r *Result) AddFailure(id string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[id] = reason
}

func (r *Result) Page(id string) (*render.RenderedPost, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page, ok := r.pages[id]
	return page, ok
}

func (r *Result) Pages() map[string]*render.RenderedPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	pages := make(map[string]*render.RenderedPost, len(r.pages))
	for id, page := range r.pages {
		pages[id] = page
	}
	return pages
}

func (r *Result) Failures() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	failures := make(map[string]string, len(r.failures))
	for id, reason := range r.failures {
		failures[id] = reason
	}
	return failures
}

func (r *Result) PageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

func (r *Result) FailureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

// PageIDs returns the successfully built ids in lexical order.
func (r *Result) PageIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
