package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
)

func writePost(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestFileStore_ListAll_SortedByDateDescending(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "older.md", "---\ntitle: Older\ndate: \"2024-01-01\"\n---\nold body\n")
	writePost(t, dir, "newer.md", "---\ntitle: Newer\ndate: \"2024-02-01\"\n---\nnew body\n")

	store := NewFileStore(dir, language.English)

	posts, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
	if posts[0].ID != "newer" {
		t.Errorf("Expected 'newer' first, got '%s'", posts[0].ID)
	}
	if posts[1].ID != "older" {
		t.Errorf("Expected 'older' second, got '%s'", posts[1].ID)
	}
}

func TestFileStore_ListAll_StableTieBreak(t *testing.T) {
	dir := t.TempDir()
	// Same date: source enumeration order (lexical by filename) must hold.
	writePost(t, dir, "alpha.md", "---\ntitle: Alpha\ndate: \"2024-03-01\"\n---\nbody\n")
	writePost(t, dir, "beta.md", "---\ntitle: Beta\ndate: \"2024-03-01\"\n---\nbody\n")
	writePost(t, dir, "gamma.md", "---\ntitle: Gamma\ndate: \"2024-03-01\"\n---\nbody\n")

	store := NewFileStore(dir, language.English)

	posts, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}

	want := []string{"alpha", "beta", "gamma"}
	if len(posts) != len(want) {
		t.Fatalf("Expected %d posts, got %d", len(want), len(posts))
	}
	for i, id := range want {
		if posts[i].ID != id {
			t.Errorf("Position %d: expected '%s', got '%s'", i, id, posts[i].ID)
		}
	}
}

func TestFileStore_ListAll_SkipsMalformedEntries(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "good.md", "---\ntitle: Good\ndate: \"2024-01-05\"\n---\nbody\n")
	writePost(t, dir, "no-date.md", "---\ntitle: No Date\n---\nbody\n")
	writePost(t, dir, "bad-yaml.md", "---\ntitle: [unclosed\ndate: \"2024-01-06\"\n---\nbody\n")
	writePost(t, dir, "unclosed.md", "---\ntitle: Unclosed\ndate: \"2024-01-07\"\nbody without closing delimiter\n")
	writePost(t, dir, "notes.txt", "not a post")

	store := NewFileStore(dir, language.English)

	posts, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}

	if len(posts) != 1 {
		t.Fatalf("Expected 1 valid post, got %d", len(posts))
	}
	if posts[0].ID != "good" {
		t.Errorf("Expected 'good', got '%s'", posts[0].ID)
	}
}

func TestFileStore_ListAll_MetadataOnly(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "post.md", "---\ntitle: Post\ndate: \"2024-01-01\"\n---\nfull body here\n")

	store := NewFileStore(dir, language.English)

	posts, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}
	if posts[0].Body != "" {
		t.Errorf("ListAll should not populate bodies, got %q", posts[0].Body)
	}
}

func TestFileStore_ListAll_MissingDirectory(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"), language.English)

	_, err := store.ListAll()
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestFileStore_GetByID(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "hello-world.md", "---\ntitle: Hello World\ndate: \"2024-01-15\"\n---\n# Heading\n\nbody text\n")

	store := NewFileStore(dir, language.English)

	post, err := store.GetByID("hello-world")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}

	if post.ID != "hello-world" {
		t.Errorf("Expected id 'hello-world', got '%s'", post.ID)
	}
	if post.Title != "Hello World" {
		t.Errorf("Expected title 'Hello World', got '%s'", post.Title)
	}
	if post.Format != FormatMarkdown {
		t.Errorf("Expected markdown format, got '%s'", post.Format)
	}
	if post.Body == "" {
		t.Error("GetByID should populate the body")
	}
	if post.RawDate != "2024-01-15" {
		t.Errorf("Expected raw date '2024-01-15', got '%s'", post.RawDate)
	}
}

func TestFileStore_GetByID_NotFound(t *testing.T) {
	store := NewFileStore(t.TempDir(), language.English)

	_, err := store.GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_GetByID_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "post.md", "---\ntitle: Post\ndate: \"2024-01-01\"\n---\nbody\n")

	store := NewFileStore(dir, language.English)

	for _, id := range []string{"", ".", "..", "../post", "sub/post", "a\\b"} {
		if _, err := store.GetByID(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for id %q, got %v", id, err)
		}
	}
}

func TestFileStore_TitleFallsBackToSlug(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "my-first-post.md", "---\ndate: \"2024-01-01\"\n---\nbody\n")

	store := NewFileStore(dir, language.English)

	post, err := store.GetByID("my-first-post")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if post.Title != "My First Post" {
		t.Errorf("Expected title 'My First Post', got '%s'", post.Title)
	}
}
