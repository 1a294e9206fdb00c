package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer persists a build result to the output directory: one HTML fragment
// per page plus a manifest.json with metadata and failures, for consumption
// by an external templating layer.
type Writer struct {
	outDir string
}

func NewWriter(outDir string) *Writer {
	return &Writer{outDir: outDir}
}

type manifestEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
	Path        string `json:"path"`
}

type manifest struct {
	GeneratedAt string            `json:"generated_at"`
	Pages       []manifestEntry   `json:"pages"`
	Failures    map[string]string `json:"failures"`
}

func (w *Writer) Run(result *Result) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", w.outDir, err)
	}

	pages := result.Pages()
	entries := make([]manifestEntry, 0, len(pages))

	for _, id := range result.PageIDs() {
		page := pages[id]
		fileName := id + ".html"

		path := filepath.Join(w.outDir, fileName)
		if err := os.WriteFile(path, []byte(page.HTML), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		entries = append(entries, manifestEntry{
			ID:          page.ID,
			Title:       page.Title,
			Date:        page.Date,
			DisplayDate: page.DisplayDate,
			Path:        fileName,
		})
	}

	m := manifest{
		GeneratedAt: time.Now().In(time.Local).Format(time.RFC3339),
		Pages:       entries,
		Failures:    result.Failures(),
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	manifestPath := filepath.Join(w.outDir, "manifest.json")
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}

	return nil
}
