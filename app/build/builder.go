package build

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/akarpov/pagegen/app/content"
	"github.com/akarpov/pagegen/app/metrics"
	"github.com/akarpov/pagegen/app/render"
)

// Builder runs a single build pass: enumerate every id, then resolve each one
// over a bounded worker pool. Resolve calls are independent and share no
// mutable state, so they run concurrently up to workerCount.
type Builder struct {
	enumerator  *Enumerator
	resolver    *render.Resolver
	workerCount int
}

func NewBuilder(store content.Store, resolver *render.Resolver, workerCount int) *Builder {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Builder{
		enumerator:  NewEnumerator(store),
		resolver:    resolver,
		workerCount: workerCount,
	}
}

// Run resolves every enumerated id. A store failure during enumeration is
// fatal and returned as-is; per-id failures are recorded in the result and do
// not abort the pass. Cancelling ctx stops feeding the pool; in-flight
// resolutions finish and are kept.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	descriptors, err := b.enumerator.Run()
	if err != nil {
		return nil, err
	}

	slog.Info("Build started", "pages", len(descriptors), "workers", b.workerCount)

	result := NewResult()
	jobs := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < b.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				b.resolveOne(result, id)
			}
		}()
	}

feed:
	for _, descriptor := range descriptors {
		select {
		case jobs <- descriptor.ID:
		case <-ctx.Done():
			slog.Warn("Build cancelled, discarding remaining pages", "error", ctx.Err())
			break feed
		}
	}
	close(jobs)

	wg.Wait()

	result.Duration = time.Since(start)
	metrics.PagesBuilt.Set(float64(result.PageCount()))
	metrics.LastBuildDuration.Set(result.Duration.Seconds())

	slog.Info("Build finished",
		"pages", result.PageCount(),
		"failures", result.FailureCount(),
		"duration", result.Duration.String())

	return result, nil
}

func (b *Builder) resolveOne(result *Result, id string) {
	page, err := b.resolver.Run(id)
	if err == nil {
		result.AddPage(page)
		return
	}

	var renderErr *render.RenderError
	switch {
	case errors.As(err, &renderErr):
		slog.Warn("Render failed, skipping page", "id", id, "error", renderErr.Err)
	case errors.Is(err, content.ErrNotFound):
		// The store dropped the record between enumeration and resolution.
		slog.Warn("Post disappeared during build", "id", id)
	default:
		slog.Warn("Store read failed during build", "id", id, "error", err)
	}
	result.AddFailure(id, err.Error())
}
