package content

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
}

var frontMatterDelimiter = []byte("---\n")

// splitFrontMatter separates `---` delimited YAML front matter from the
// markdown body. Documents without a leading delimiter are returned as a pure
// body with empty front matter.
func splitFrontMatter(data []byte) (meta []byte, body []byte, err error) {
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(normalized, frontMatterDelimiter) {
		return nil, normalized, nil
	}

	rest := normalized[len(frontMatterDelimiter):]
	if bytes.HasPrefix(rest, frontMatterDelimiter) {
		return nil, rest[len(frontMatterDelimiter):], nil
	}

	idx := bytes.Index(rest, []byte("\n---\n"))
	if idx < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-len("\n---")+1], nil, nil
		}
		return nil, nil, fmt.Errorf("front matter opening delimiter without closing delimiter")
	}

	meta = rest[:idx+1]
	body = rest[idx+len("\n---\n"):]
	return meta, body, nil
}

func parseFrontMatter(meta []byte) (*frontMatter, error) {
	var fm frontMatter
	if err := yaml.Unmarshal(meta, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return &fm, nil
}

// dateFormats are tried in order when parsing a post date. ISO-8601 calendar
// dates are the documented form; timestamp variants are accepted for
// convenience.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseDate(value string) (time.Time, error) {
	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", value)
}
