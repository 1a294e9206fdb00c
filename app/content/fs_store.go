package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var _ Store = (*FileStore)(nil)

// FileStore reads posts from a directory of markdown files. The filename stem
// is the post id.
type FileStore struct {
	dir   string
	caser cases.Caser
}

func NewFileStore(dir string, locale language.Tag) *FileStore {
	return &FileStore{
		dir:   dir,
		caser: cases.Title(locale),
	}
}

func (s *FileStore) ListAll() ([]Post, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read content directory %s: %v", ErrUnavailable, s.dir, err)
	}

	posts := make([]Post, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		post, err := s.readPost(filepath.Join(s.dir, entry.Name()), false)
		if err != nil {
			slog.Warn("Skipping malformed post", "file", entry.Name(), "error", err)
			continue
		}

		posts = append(posts, *post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})

	return posts, nil
}

func (s *FileStore) GetByID(id string) (*Post, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	post, err := s.readPost(filepath.Join(s.dir, id+".md"), true)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	return post, nil
}

func (s *FileStore) readPost(path string, withBody bool) (*Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrUnavailable, path, err)
	}

	meta, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("invalid front matter in %s: %w", path, err)
	}

	fm, err := parseFrontMatter(meta)
	if err != nil {
		return nil, fmt.Errorf("invalid front matter in %s: %w", path, err)
	}

	if fm.Date == "" {
		return nil, fmt.Errorf("missing date in %s", path)
	}

	date, err := parseDate(fm.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date in %s: %w", path, err)
	}

	id := strings.TrimSuffix(filepath.Base(path), ".md")

	title := fm.Title
	if title == "" {
		title = s.caser.String(strings.ReplaceAll(id, "-", " "))
	}

	post := &Post{
		ID:      id,
		Title:   title,
		Date:    date,
		RawDate: fm.Date,
		Format:  FormatMarkdown,
	}

	if withBody {
		post.Body = string(body)
	}

	return post, nil
}

// validID rejects ids that would escape the content directory.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\")
}
