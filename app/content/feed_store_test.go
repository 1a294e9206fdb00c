package content

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Blog</title>
    <link>https://example.com</link>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <guid>https://example.com/first</guid>
      <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
      <description><![CDATA[<p>First body</p>]]></description>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
      <guid>https://example.com/second</guid>
      <pubDate>Thu, 01 Feb 2024 10:00:00 GMT</pubDate>
      <description><![CDATA[<p>Second body</p>]]></description>
    </item>
  </channel>
</rss>`

func newFeedTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFeedStore_ListAll(t *testing.T) {
	server := newFeedTestServer(t)
	store := NewFeedStore(server.URL, "test-agent/1.0", 5*time.Second)

	posts, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
	// Newest first.
	if posts[0].ID != "second-post" {
		t.Errorf("Expected 'second-post' first, got '%s'", posts[0].ID)
	}
	if posts[1].ID != "first-post" {
		t.Errorf("Expected 'first-post' second, got '%s'", posts[1].ID)
	}
	if posts[0].Format != FormatHTML {
		t.Errorf("Expected html format, got '%s'", posts[0].Format)
	}
	if posts[0].Body != "" {
		t.Error("ListAll should not populate bodies")
	}
}

func TestFeedStore_GetByID(t *testing.T) {
	server := newFeedTestServer(t)
	store := NewFeedStore(server.URL, "test-agent/1.0", 5*time.Second)

	post, err := store.GetByID("first-post")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}

	if post.Title != "First Post" {
		t.Errorf("Expected title 'First Post', got '%s'", post.Title)
	}
	if post.Body == "" {
		t.Error("GetByID should populate the body")
	}
	if post.Date.IsZero() {
		t.Error("Expected a parsed publication date")
	}
}

func TestFeedStore_GetByID_NotFound(t *testing.T) {
	server := newFeedTestServer(t)
	store := NewFeedStore(server.URL, "test-agent/1.0", 5*time.Second)

	_, err := store.GetByID("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFeedStore_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := NewFeedStore(server.URL, "test-agent/1.0", 5*time.Second)

	_, err := store.ListAll()
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestFeedStore_UnreachableServer(t *testing.T) {
	store := NewFeedStore("http://127.0.0.1:1/feed.xml", "test-agent/1.0", time.Second)

	_, err := store.ListAll()
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces  Everywhere  ", "spaces-everywhere"},
		{"Already-Slugged", "already-slugged"},
		{"Symbols & Punctuation!", "symbols-punctuation"},
		{"MiXeD CaSe 123", "mixed-case-123"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := slugify(tt.input); got != tt.want {
			t.Errorf("slugify(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestFeedIDs(t *testing.T) {
	tests := []struct {
		name  string
		items []*gofeed.Item
		want  []string
	}{
		{
			name:  "distinct titles",
			items: []*gofeed.Item{{Title: "First Post"}, {Title: "Second Post"}},
			want:  []string{"first-post", "second-post"},
		},
		{
			name:  "missing title falls back to guid",
			items: []*gofeed.Item{{GUID: "https://example.com/posts/42"}},
			want:  []string{"https-example-com-posts-42"},
		},
		{
			name: "colliding titles fall back to guid",
			items: []*gofeed.Item{
				{Title: "Same Title", GUID: "https://example.com/posts/1"},
				{Title: "Same Title", GUID: "https://example.com/posts/2"},
			},
			want: []string{"same-title", "https-example-com-posts-2"},
		},
		{
			name: "colliding titles without guids get numeric suffixes",
			items: []*gofeed.Item{
				{Title: "Same Title"},
				{Title: "Same Title"},
				{Title: "Same Title"},
			},
			want: []string{"same-title", "same-title-2", "same-title-3"},
		},
		{
			name:  "nothing usable at all",
			items: []*gofeed.Item{{}, {}},
			want:  []string{"post", "post-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feedIDs(tt.items)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d ids, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i] != id {
					t.Errorf("Position %d: expected %q, got %q", i, id, got[i])
				}
			}
		})
	}
}

func TestFeedStore_DuplicateTitlesStayAddressable(t *testing.T) {
	const duplicateFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Blog</title>
    <link>https://example.com</link>
    <item>
      <title>Same Title</title>
      <link>https://example.com/one</link>
      <guid>https://example.com/one</guid>
      <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
      <description><![CDATA[<p>First body</p>]]></description>
    </item>
    <item>
      <title>Same Title</title>
      <link>https://example.com/two</link>
      <guid>https://example.com/two</guid>
      <pubDate>Thu, 01 Feb 2024 10:00:00 GMT</pubDate>
      <description><![CDATA[<p>Second body</p>]]></description>
    </item>
  </channel>
</rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(duplicateFeedXML))
	}))
	defer server.Close()

	store := NewFeedStore(server.URL, "test-agent/1.0", 5*time.Second)

	posts, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}

	seen := make(map[string]int)
	for _, post := range posts {
		seen[post.ID]++
	}
	for id, count := range seen {
		if count > 1 {
			t.Errorf("Id %q appears %d times", id, count)
		}
	}

	// Both items stay reachable by their assigned ids.
	for _, post := range posts {
		got, err := store.GetByID(post.ID)
		if err != nil {
			t.Fatalf("GetByID(%q) returned error: %v", post.ID, err)
		}
		if got.Body == "" {
			t.Errorf("Expected a body for %q", post.ID)
		}
	}

	first, err := store.GetByID("same-title")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	second, err := store.GetByID("https-example-com-two")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if first.Body == second.Body {
		t.Error("Expected the colliding items to keep distinct bodies")
	}
}
