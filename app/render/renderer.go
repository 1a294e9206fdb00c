package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/akarpov/pagegen/app/content"
)

// Renderer turns a post body into an HTML fragment.
type Renderer interface {
	Run(post *content.Post) (string, error)
}

var _ Renderer = (*MarkdownRenderer)(nil)

// MarkdownRenderer converts markdown bodies with goldmark. HTML bodies (feed
// source) pass through unchanged; they are already extracted article markup.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

func (r *MarkdownRenderer) Run(post *content.Post) (string, error) {
	switch post.Format {
	case content.FormatHTML:
		return post.Body, nil
	case content.FormatMarkdown:
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(post.Body), &buf); err != nil {
			return "", fmt.Errorf("failed to convert markdown: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unknown body format: %q", post.Format)
	}
}
