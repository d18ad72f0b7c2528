// Copyright 2025 Masterhudini
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/masterhudini/ainews/core"
)

// defaultFetchLimit bounds how many items a feed adapter yields per pass.
const defaultFetchLimit = 50

// RSSAdapter fetches articles from an RSS 2.0 or Atom feed.
// Most registered sources are instances of this adapter with different URLs.
type RSSAdapter struct {
	key       string
	name      string
	feedURL   string
	client    *http.Client
	converter *md.Converter
	logger    *slog.Logger
}

var _ Adapter = (*RSSAdapter)(nil)

// NewRSSAdapter creates a feed adapter for the given source key and feed URL.
func NewRSSAdapter(key, name, feedURL string, client *http.Client, logger *slog.Logger) *RSSAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSAdapter{
		key:       key,
		name:      name,
		feedURL:   feedURL,
		client:    client,
		converter: md.NewConverter("", true, nil),
		logger:    logger.With("adapter", key),
	}
}

func (a *RSSAdapter) Key() string  { return a.key }
func (a *RSSAdapter) Name() string { return a.name }

// Fetch downloads and parses the feed into raw items.
func (a *RSSAdapter) Fetch(ctx context.Context, limit int) ([]core.RawItem, error) {
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	a.logger.Debug("fetching feed", "url", a.feedURL)
	data, err := fetchBody(ctx, a.client, a.feedURL)
	if err != nil {
		return nil, err
	}

	entries, err := parseFeed(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrMalformed, a.feedURL, err)
	}

	items := make([]core.RawItem, 0, len(entries))
	for _, entry := range entries {
		if len(items) >= limit {
			break
		}
		if entry.link == "" || entry.title == "" {
			// A broken entry does not fail the whole feed.
			a.logger.Debug("skipping feed entry without title or link")
			continue
		}

		body := entry.body
		if converted, err := a.converter.ConvertString(body); err == nil {
			body = converted
		}

		item := core.RawItem{
			SourceKey: a.key,
			URL:       entry.link,
			Title:     entry.title,
			Body:      body,
			Published: entry.published,
			Metadata:  map[string]string{"source_name": a.name, "feed_url": a.feedURL},
		}
		if entry.author != "" {
			item.Metadata["author"] = entry.author
		}
		items = append(items, item)
	}

	a.logger.Info("feed fetched", "url", a.feedURL, "items", len(items))
	return items, nil
}

// feedEntry is the format-independent shape both RSS and Atom parse into.
type feedEntry struct {
	title     string
	link      string
	body      string
	author    string
	published time.Time
}

type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Encoded     string `xml:"encoded"` // content:encoded, full article HTML
	Author      string `xml:"creator"` // dc:creator
	PubDate     string `xml:"pubDate"`
}

type atomDocument struct {
	XMLName xml.Name   `xml:"feed"`
	Entries []atomItem `xml:"entry"`
}

type atomItem struct {
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Summary string     `xml:"summary"`
	Content string     `xml:"content"`
	Author  struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// parseFeed decodes RSS 2.0 first and falls back to Atom.
func parseFeed(data []byte) ([]feedEntry, error) {
	var rss rssDocument
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		entries := make([]feedEntry, 0, len(rss.Channel.Items))
		for _, item := range rss.Channel.Items {
			body := item.Encoded
			if body == "" {
				body = item.Description
			}
			entries = append(entries, feedEntry{
				title:     item.Title,
				link:      item.Link,
				body:      body,
				author:    item.Author,
				published: parseFeedTime(item.PubDate),
			})
		}
		return entries, nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(data, &atom); err != nil {
		return nil, err
	}
	if len(atom.Entries) == 0 {
		return nil, fmt.Errorf("no recognizable feed entries")
	}

	entries := make([]feedEntry, 0, len(atom.Entries))
	for _, entry := range atom.Entries {
		body := entry.Content
		if body == "" {
			body = entry.Summary
		}
		published := entry.Published
		if published == "" {
			published = entry.Updated
		}
		entries = append(entries, feedEntry{
			title:     entry.Title,
			link:      atomEntryLink(entry.Links),
			body:      body,
			author:    entry.Author.Name,
			published: parseFeedTime(published),
		})
	}
	return entries, nil
}

func atomEntryLink(links []atomLink) string {
	for _, link := range links {
		if link.Rel == "" || link.Rel == "alternate" {
			return link.Href
		}
	}
	if len(links) > 0 {
		return links[0].Href
	}
	return ""
}

// feedTimeLayouts covers the date formats seen across real-world feeds.
var feedTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

// parseFeedTime parses a feed timestamp, returning the zero time when no
// layout matches. An unparsable date is metadata loss, not a fetch failure.
func parseFeedTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range feedTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
