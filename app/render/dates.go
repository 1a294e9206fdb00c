package render

import (
	"time"
)

const displayDateLayout = "January 2, 2006"

// FormatDate produces the human-readable form of a post date. It is a pure
// function of its input; display dates are computed at render time and never
// stored on the post itself.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDateLayout)
}
