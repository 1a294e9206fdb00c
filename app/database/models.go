package database

import (
	"time"
)

// Page is a persisted rendered page. It backs the serve cache across
// restarts and the build report.
type Page struct {
	ID          string
	Title       string
	Date        string // ISO-8601 calendar date
	DisplayDate string
	HTML        string
	ContentHash string
	RenderedAt  time.Time
}

// BuildFailure records one id that failed during the last build and why.
type BuildFailure struct {
	ID       string
	Reason   string
	FailedAt time.Time
}
