package render

import (
	"fmt"
	"time"

	"github.com/akarpov/pagegen/app/content"
	"github.com/akarpov/pagegen/app/metrics"
)

// RenderedPost is the resolved form of a post: metadata plus the rendered
// HTML fragment. It is derived on demand and never mutated.
type RenderedPost struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
	HTML        string `json:"html"`
}

// RenderError marks a post whose body transform failed. It is isolated to a
// single id and never aborts a whole build.
type RenderError struct {
	ID  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render post %s: %v", e.ID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Resolver fetches a post from the store and renders it. Store failures
// propagate untouched; transform failures are wrapped in RenderError.
type Resolver struct {
	store    content.Store
	renderer Renderer
}

func NewResolver(store content.Store, renderer Renderer) *Resolver {
	return &Resolver{
		store:    store,
		renderer: renderer,
	}
}

func (r *Resolver) Run(id string) (*RenderedPost, error) {
	post, err := r.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	metrics.RendersTotal.Inc()

	html, err := r.renderer.Run(post)
	if err != nil {
		metrics.RenderFailuresTotal.Inc()
		return nil, &RenderError{ID: id, Err: err}
	}

	return &RenderedPost{
		ID:          post.ID,
		Title:       post.Title,
		Date:        post.Date.Format(time.DateOnly),
		DisplayDate: FormatDate(post.Date),
		HTML:        html,
	}, nil
}
