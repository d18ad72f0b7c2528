package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/masterhudini/ainews/core"
)

const hackerNewsSearchURL = "https://hn.algolia.com/api/v1/search_by_date"

// HackerNewsAdapter fetches stories from the Hacker News search API,
// filtered by a query term (e.g. "AI").
type HackerNewsAdapter struct {
	key     string
	query   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ Adapter = (*HackerNewsAdapter)(nil)

// NewHackerNewsAdapter creates a Hacker News adapter for the given query.
func NewHackerNewsAdapter(key, query string, client *http.Client, logger *slog.Logger) *HackerNewsAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HackerNewsAdapter{
		key:     key,
		query:   query,
		baseURL: hackerNewsSearchURL,
		client:  client,
		logger:  logger.With("adapter", key),
	}
}

func (a *HackerNewsAdapter) Key() string  { return a.key }
func (a *HackerNewsAdapter) Name() string { return "Hacker News" }

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	StoryText string `json:"story_text"`
	Author    string `json:"author"`
	Points    int    `json:"points"`
	CreatedTS int64  `json:"created_at_i"`
}

// Fetch queries the search API for recent stories matching the query.
func (a *HackerNewsAdapter) Fetch(ctx context.Context, limit int) ([]core.RawItem, error) {
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	query := url.Values{}
	query.Set("query", a.query)
	query.Set("tags", "story")
	query.Set("hitsPerPage", strconv.Itoa(limit))

	data, err := fetchBody(ctx, a.client, a.baseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var resp hnResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %w", ErrMalformed, err)
	}

	items := make([]core.RawItem, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.Title == "" {
			continue
		}

		// Self posts carry their text inline; link posts only have a title.
		body := hit.StoryText
		if body == "" {
			body = hit.Title
		}

		link := hit.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}

		var published time.Time
		if hit.CreatedTS > 0 {
			published = time.Unix(hit.CreatedTS, 0).UTC()
		}

		items = append(items, core.RawItem{
			SourceKey: a.key,
			URL:       link,
			Title:     hit.Title,
			Body:      body,
			Published: published,
			Metadata: map[string]string{
				"source_name": a.Name(),
				"author":      hit.Author,
				"points":      strconv.Itoa(hit.Points),
			},
		})
	}

	a.logger.Info("stories fetched", "query", a.query, "items", len(items))
	return items, nil
}
