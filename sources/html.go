package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/masterhudini/ainews/core"
)

// Selectors configure how HTMLAdapter locates articles on a page.
type Selectors struct {
	// Item matches one element per article on the listing page.
	Item string `yaml:"item"`
	// Title matches the title element inside an item.
	Title string `yaml:"title"`
	// Link matches the anchor inside an item; its href becomes the URL.
	Link string `yaml:"link"`
	// Summary matches the teaser/summary element inside an item. Optional;
	// when absent or empty the title is used as the body.
	Summary string `yaml:"summary"`
}

// HTMLAdapter scrapes a listing page with CSS selectors.
// Used for sources that expose neither a feed nor an API.
type HTMLAdapter struct {
	key       string
	name      string
	pageURL   string
	selectors Selectors
	client    *http.Client
	logger    *slog.Logger
}

var _ Adapter = (*HTMLAdapter)(nil)

// NewHTMLAdapter creates a scrape adapter for the given listing page.
func NewHTMLAdapter(key, name, pageURL string, selectors Selectors, client *http.Client, logger *slog.Logger) *HTMLAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLAdapter{
		key:       key,
		name:      name,
		pageURL:   pageURL,
		selectors: selectors,
		client:    client,
		logger:    logger.With("adapter", key),
	}
}

func (a *HTMLAdapter) Key() string  { return a.key }
func (a *HTMLAdapter) Name() string { return a.name }

// Fetch downloads the listing page and extracts one item per matched element.
func (a *HTMLAdapter) Fetch(ctx context.Context, limit int) ([]core.RawItem, error) {
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	data, err := fetchBody(ctx, a.client, a.pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrMalformed, a.pageURL, err)
	}

	base, err := url.Parse(a.pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad page url %s: %w", ErrMalformed, a.pageURL, err)
	}

	var items []core.RawItem
	doc.Find(a.selectors.Item).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := core.NormalizeWhitespace(sel.Find(a.selectors.Title).First().Text())
		href, _ := sel.Find(a.selectors.Link).First().Attr("href")
		if title == "" || href == "" {
			return true // skip broken element, keep scanning
		}

		link, err := base.Parse(href)
		if err != nil {
			return true
		}

		body := title
		if a.selectors.Summary != "" {
			if summary := core.NormalizeWhitespace(sel.Find(a.selectors.Summary).First().Text()); summary != "" {
				body = summary
			}
		}

		items = append(items, core.RawItem{
			SourceKey: a.key,
			URL:       link.String(),
			Title:     title,
			Body:      body,
			Metadata:  map[string]string{"source_name": a.name, "page_url": a.pageURL},
		})
		return len(items) < limit
	})

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items matched selector %q on %s", ErrMalformed, a.selectors.Item, a.pageURL)
	}

	a.logger.Info("page scraped", "url", a.pageURL, "items", len(items))
	return items, nil
}
