package server

import (
	"github.com/akarpov/pagegen/app/build"
	"github.com/akarpov/pagegen/app/content"
	"github.com/akarpov/pagegen/app/database"
	"github.com/akarpov/pagegen/app/render"
)

// ResolverInterface is the request-time resolution contract the handlers
// depend on.
type ResolverInterface interface {
	Run(id string) (*render.RenderedPost, error)
}

var _ ResolverInterface = (*render.Resolver)(nil)

type Handler struct {
	store    content.Store
	resolver ResolverInterface
	pageRepo database.PageRepository
	builder  *build.Builder
	cache    *PageCache

	lazyFallback bool
	devMode      bool
}
