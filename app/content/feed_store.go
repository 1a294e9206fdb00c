package content

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"

	readability "codeberg.org/readeck/go-readability"
	"github.com/mmcdole/gofeed"
)

var _ Store = (*FeedStore)(nil)

// FeedStore reads posts from a remote RSS/Atom feed. The id of each post is a
// slug derived from the item title; when a feed reuses titles the collision
// falls back to the GUID or link slug, then to a numeric suffix, so every
// item stays addressable. Ids are assigned in feed enumeration order and stay
// stable across fetches as long as the feed keeps that order.
type FeedStore struct {
	url        string
	userAgent  string
	httpClient *http.Client
	parser     *gofeed.Parser
}

func NewFeedStore(url, userAgent string, timeout time.Duration) *FeedStore {
	return &FeedStore{
		url:        url,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		parser:     gofeed.NewParser(),
	}
}

func (s *FeedStore) ListAll() ([]Post, error) {
	items, err := s.fetchItems()
	if err != nil {
		return nil, err
	}

	ids := feedIDs(items)
	posts := make([]Post, 0, len(items))
	for i, item := range items {
		posts = append(posts, s.toPost(item, ids[i], false))
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})

	return posts, nil
}

func (s *FeedStore) GetByID(id string) (*Post, error) {
	items, err := s.fetchItems()
	if err != nil {
		return nil, err
	}

	ids := feedIDs(items)
	for i, item := range items {
		if ids[i] == id {
			post := s.toPost(item, id, true)
			return &post, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *FeedStore) fetchItems() ([]*gofeed.Item, error) {
	req, err := http.NewRequest(http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid feed URL: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch feed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read feed body: %v", ErrUnavailable, err)
	}

	feed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse feed: %v", ErrUnavailable, err)
	}

	return feed.Items, nil
}

func (s *FeedStore) toPost(item *gofeed.Item, id string, withBody bool) Post {
	var date time.Time
	if item.PublishedParsed != nil {
		date = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		date = *item.UpdatedParsed
	}

	post := Post{
		ID:      id,
		Title:   item.Title,
		Date:    date,
		RawDate: cmp.Or(item.Published, item.Updated),
		Format:  FormatHTML,
	}

	if withBody {
		post.Body = s.itemBody(item)
	}

	return post
}

// itemBody prefers the full item content reduced to a clean article through
// readability; the raw markup is the fallback when extraction comes up empty.
func (s *FeedStore) itemBody(item *gofeed.Item) string {
	raw := cmp.Or(item.Content, item.Description)
	if raw == "" {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(raw), nil)
	if err != nil || article.Content == "" {
		slog.Debug("Readability extraction failed, keeping raw body",
			"title", item.Title, "error", err)
		return raw
	}

	return article.Content
}

// feedIDs assigns a unique id to every item, in feed order. A title slug that
// is empty or already taken falls back to the GUID or link slug; if that is
// taken too, a numeric suffix disambiguates.
func feedIDs(items []*gofeed.Item) []string {
	ids := make([]string, len(items))
	seen := make(map[string]bool, len(items))

	for i, item := range items {
		id := slugify(item.Title)
		if id == "" || seen[id] {
			if alt := slugify(cmp.Or(item.GUID, item.Link)); alt != "" && !seen[alt] {
				id = alt
			}
		}
		if id == "" {
			id = "post"
		}
		if seen[id] {
			base := id
			for n := 2; ; n++ {
				id = fmt.Sprintf("%s-%d", base, n)
				if !seen[id] {
					break
				}
			}
		}

		seen[id] = true
		ids[i] = id
	}

	return ids
}

func slugify(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(value) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
