package content

import (
	"time"
)

type BodyFormat string

const (
	FormatMarkdown BodyFormat = "markdown"
	FormatHTML     BodyFormat = "html"
)

// Post is a single content record. ListAll returns posts with metadata only;
// Body is populated by GetByID.
type Post struct {
	ID      string
	Title   string
	Date    time.Time
	RawDate string // date string as found in the source record
	Format  BodyFormat
	Body    string
}

// PathDescriptor identifies one addressable page. The complete set is
// computed once per build.
type PathDescriptor struct {
	ID string
}

// Store is the read-only source of content records.
type Store interface {
	// ListAll returns metadata for every readable post, sorted by date
	// descending. Posts with identical dates keep source-enumeration order.
	ListAll() ([]Post, error)

	// GetByID returns the full post, body included.
	GetByID(id string) (*Post, error)
}
