package database

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/akarpov/pagegen/app/render"
)

// PageFromRendered converts a resolved page into its persisted form. The
// content hash covers the HTML fragment only; metadata changes alone do not
// change it.
func PageFromRendered(page *render.RenderedPost) Page {
	hash := sha256.Sum256([]byte(page.HTML))

	return Page{
		ID:          page.ID,
		Title:       page.Title,
		Date:        page.Date,
		DisplayDate: page.DisplayDate,
		HTML:        page.HTML,
		ContentHash: hex.EncodeToString(hash[:]),
	}
}
