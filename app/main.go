package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/akarpov/pagegen/app/build"
	"github.com/akarpov/pagegen/app/cfg"
	"github.com/akarpov/pagegen/app/content"
	"github.com/akarpov/pagegen/app/database"
	"github.com/akarpov/pagegen/app/render"
	"github.com/akarpov/pagegen/app/server"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)
	slog.Info("Starting pagegen", "version", appCfg.Version, "mode", appCfg.Mode, "source", appCfg.Source)

	store := newStore(appCfg)
	resolver := render.NewResolver(store, render.NewMarkdownRenderer())
	builder := build.NewBuilder(store, resolver, appCfg.WorkerCount)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	pageRepo := database.NewPageRepo(db)

	switch appCfg.Mode {
	case "serve":
		runServe(appCfg, store, resolver, builder, pageRepo)
	default:
		runBuild(appCfg, builder, pageRepo)
	}
}

func newStore(appCfg *cfg.Cfg) content.Store {
	if appCfg.Source == "feed" {
		timeout := time.Duration(appCfg.FeedTimeout) * time.Second
		return content.NewFeedStore(appCfg.FeedURL, appCfg.UserAgent, timeout)
	}

	locale, err := language.Parse(appCfg.Locale)
	if err != nil {
		slog.Warn("Invalid locale, falling back to English", "locale", appCfg.Locale, "error", err)
		locale = language.English
	}
	return content.NewFileStore(appCfg.ContentDir, locale)
}

func runBuild(appCfg *cfg.Cfg, builder *build.Builder, pageRepo database.PageRepository) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := builder.Run(ctx)
	if err != nil {
		slog.Error("Build failed", "error", err)
		os.Exit(1)
	}

	writer := build.NewWriter(appCfg.OutputDir)
	if err := writer.Run(result); err != nil {
		slog.Error("Failed to write build output", "error", err)
		os.Exit(1)
	}

	persistResult(result, pageRepo)

	for id, reason := range result.Failures() {
		slog.Warn("Page failed to build", "id", id, "reason", reason)
	}

	slog.Info("Build output written",
		"dir", appCfg.OutputDir,
		"pages", result.PageCount(),
		"failures", result.FailureCount())
}

func runServe(appCfg *cfg.Cfg, store content.Store, resolver *render.Resolver,
	builder *build.Builder, pageRepo database.PageRepository) {
	cache := server.NewPageCache()
	handler := server.NewHandler(store, resolver, pageRepo, builder, cache,
		appCfg.IsLazyFallback(), appCfg.Dev)

	// Eager build before accepting requests; dev mode resolves per request
	// instead.
	if !appCfg.Dev {
		result, err := builder.Run(context.Background())
		if err != nil {
			slog.Error("Initial build failed", "error", err)
			os.Exit(1)
		}
		handler.SeedFromResult(result)
	}

	// Rebuild when post files change underneath us. Flushing the cache alone
	// is not enough: GetPost falls back to the page database, which still
	// holds the previous build.
	var watcher *server.ContentWatcher
	if appCfg.Source == "fs" && !appCfg.Dev {
		onChange := func() {
			if _, err := handler.Rebuild(context.Background()); err != nil {
				slog.Warn("Rebuild after content change failed", "error", err)
			}
		}
		w, err := server.NewContentWatcher(appCfg.ContentDir, onChange)
		if err != nil {
			slog.Warn("Content watcher unavailable", "error", err)
		} else if err := w.Start(); err != nil {
			slog.Warn("Failed to start content watcher", "error", err)
		} else {
			watcher = w
		}
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	engine := server.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func persistResult(result *build.Result, pageRepo database.PageRepository) {
	for _, page := range result.Pages() {
		if err := pageRepo.UpsertPage(database.PageFromRendered(page)); err != nil {
			slog.Warn("Failed to persist page", "id", page.ID, "error", err)
		}
	}

	if err := pageRepo.DeletePagesNotIn(result.PageIDs()); err != nil {
		slog.Warn("Failed to prune stale pages", "error", err)
	}

	if err := pageRepo.ReplaceFailures(result.Failures()); err != nil {
		slog.Warn("Failed to record build failures", "error", err)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
