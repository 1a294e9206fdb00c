package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akarpov/pagegen/app/build"
	"github.com/akarpov/pagegen/app/content"
	"github.com/akarpov/pagegen/app/database"
	"github.com/akarpov/pagegen/app/metrics"
	"github.com/akarpov/pagegen/app/render"
)

const (
	maxResolveRetries = 3
	retryBaseDelay    = 250 * time.Millisecond
	maxRetryDelay     = 2 * time.Second
)

func NewHandler(store content.Store, resolver ResolverInterface,
	pageRepo database.PageRepository, builder *build.Builder,
	cache *PageCache, lazyFallback bool, devMode bool) *Handler {
	return &Handler{
		store:        store,
		resolver:     resolver,
		pageRepo:     pageRepo,
		builder:      builder,
		cache:        cache,
		lazyFallback: lazyFallback,
		devMode:      devMode,
	}
}

func (h *Handler) GetPost(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	// Development mode resolves from source on every request so edits show
	// up without a rebuild.
	if h.devMode {
		page, err := h.resolver.Run(id)
		if err != nil {
			h.respondResolveError(c, id, err)
			return
		}
		c.JSON(http.StatusOK, page)
		return
	}

	if page, ok := h.cache.Get(id); ok {
		metrics.CacheHitsTotal.Inc()
		c.JSON(http.StatusOK, page)
		return
	}

	// A page rendered by an earlier process may still be in the database.
	if stored, err := h.pageRepo.GetPage(id); err != nil {
		slog.Error("Database error", "operation", "get_page", "id", id, "error", err)
	} else if stored != nil {
		page := storedToRendered(stored)
		h.cache.Put(page)
		c.JSON(http.StatusOK, page)
		return
	}

	if !h.lazyFallback {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	page, err := h.cache.GetOrRender(id, func() (*render.RenderedPost, error) {
		return h.resolveWithRetry(id)
	})
	if err != nil {
		h.respondResolveError(c, id, err)
		return
	}

	h.persistPage(page)
	c.JSON(http.StatusOK, page)
}

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.store.ListAll()
	if err != nil {
		slog.Error("Store error", "operation", "list_posts", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content store unavailable"})
		return
	}

	type postInfo struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Date        string `json:"date"`
		DisplayDate string `json:"display_date"`
	}

	list := make([]postInfo, 0, len(posts))
	for _, post := range posts {
		list = append(list, postInfo{
			ID:          post.ID,
			Title:       post.Title,
			Date:        post.Date.Format(time.DateOnly),
			DisplayDate: render.FormatDate(post.Date),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": list,
		"total": len(list),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if pageCount, err := h.pageRepo.GetPageCount(); err == nil {
		health["pages"] = pageCount
	}

	health["cached_pages"] = h.cache.Len()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"cached_pages":  h.cache.Len(),
		"lazy_fallback": h.lazyFallback,
		"dev_mode":      h.devMode,
	}

	if pageCount, err := h.pageRepo.GetPageCount(); err == nil {
		stats["pages"] = pageCount
	}

	if failureCount, err := h.pageRepo.GetFailureCount(); err == nil {
		stats["build_failures"] = failureCount
	}

	if failures, err := h.pageRepo.GetFailures(); err == nil && len(failures) > 0 {
		failed := make([]map[string]string, 0, len(failures))
		for _, failure := range failures {
			failed = append(failed, map[string]string{
				"id":     failure.ID,
				"reason": failure.Reason,
			})
		}
		stats["failed_pages"] = failed
	}

	c.JSON(http.StatusOK, stats)
}

// Rebuild runs a full build pass and replaces the cache and database
// contents with its result, so edited posts stop being served from either
// layer. The content watcher and the admin endpoint both funnel through it.
func (h *Handler) Rebuild(ctx context.Context) (*build.Result, error) {
	result, err := h.builder.Run(ctx)
	if err != nil {
		return nil, err
	}

	h.cache.Flush()
	h.SeedFromResult(result)

	return result, nil
}

// APIRebuild runs a full build pass and reseeds the cache and database.
func (h *Handler) APIRebuild(c *gin.Context) {
	result, err := h.Rebuild(c.Request.Context())
	if err != nil {
		slog.Error("Rebuild failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pages":    result.PageCount(),
		"failures": result.Failures(),
		"duration": result.Duration.String(),
	})
}

// resolveWithRetry retries transient store failures with capped exponential
// backoff. Not-found and render failures are returned immediately.
func (h *Handler) resolveWithRetry(id string) (*render.RenderedPost, error) {
	var lastErr error

	for attempt := 0; attempt < maxResolveRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			slog.Warn("Retrying resolve after transient store failure",
				"id", id, "attempt", attempt, "delay", delay.String())
			time.Sleep(delay)
		}

		page, err := h.resolver.Run(id)
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, content.ErrUnavailable) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (h *Handler) respondResolveError(c *gin.Context, id string, err error) {
	var renderErr *render.RenderError
	switch {
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	case errors.As(err, &renderErr):
		slog.Error("Render error", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render post"})
	default:
		slog.Error("Store error", "id", id, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content store unavailable"})
	}
}

func (h *Handler) persistPage(page *render.RenderedPost) {
	if err := h.pageRepo.UpsertPage(database.PageFromRendered(page)); err != nil {
		slog.Warn("Failed to persist page", "id", page.ID, "error", err)
	}
}

// SeedFromResult warms the cache and database from a completed build pass.
func (h *Handler) SeedFromResult(result *build.Result) {
	for _, page := range result.Pages() {
		h.cache.Put(page)
		h.persistPage(page)
	}
	if err := h.pageRepo.DeletePagesNotIn(result.PageIDs()); err != nil {
		slog.Warn("Failed to prune stale pages", "error", err)
	}
	if err := h.pageRepo.ReplaceFailures(result.Failures()); err != nil {
		slog.Warn("Failed to record build failures", "error", err)
	}
}

func storedToRendered(page *database.Page) *render.RenderedPost {
	return &render.RenderedPost{
		ID:          page.ID,
		Title:       page.Title,
		Date:        page.Date,
		DisplayDate: page.DisplayDate,
		HTML:        page.HTML,
	}
}
