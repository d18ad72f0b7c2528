package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>TechCrunch AI</title>
    <item>
      <title>OpenAI releases GPT-5</title>
      <link>https://techcrunch.com/2025/08/01/openai-releases-gpt-5</link>
      <description>&lt;p&gt;OpenAI announced &lt;b&gt;GPT-5&lt;/b&gt; today.&lt;/p&gt;</description>
      <dc:creator>Jane Doe</dc:creator>
      <pubDate>Fri, 01 Aug 2025 12:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Second story</title>
      <link>https://techcrunch.com/second</link>
      <description>More AI news.</description>
      <pubDate>not a date</pubDate>
    </item>
    <item>
      <title>Broken entry without link</title>
      <description>dropped</description>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Research Blog</title>
  <entry>
    <title>New transformer architecture beats benchmarks</title>
    <link rel="alternate" href="https://blog.example.com/transformer"/>
    <summary>A new architecture.</summary>
    <author><name>R. Smith</name></author>
    <published>2025-08-02T08:00:00Z</published>
  </entry>
</feed>`

func TestRSSAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	adapter := NewRSSAdapter("techcrunch", "TechCrunch AI", server.URL, server.Client(), nil)

	items, err := adapter.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 2, "entry without link is skipped")

	first := items[0]
	assert.Equal(t, "techcrunch", first.SourceKey)
	assert.Equal(t, "OpenAI releases GPT-5", first.Title)
	assert.Equal(t, "https://techcrunch.com/2025/08/01/openai-releases-gpt-5", first.URL)
	assert.Contains(t, first.Body, "GPT-5")
	assert.NotContains(t, first.Body, "<p>", "HTML is converted away")
	assert.Equal(t, time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC), first.Published)
	assert.Equal(t, "Jane Doe", first.Metadata["author"])

	assert.True(t, items[1].Published.IsZero(), "unparsable date becomes unknown")
}

func TestRSSAdapter_FetchAtom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleAtom))
	}))
	defer server.Close()

	adapter := NewRSSAdapter("research", "Research Blog", server.URL, server.Client(), nil)

	items, err := adapter.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://blog.example.com/transformer", items[0].URL)
	assert.Equal(t, "New transformer architecture beats benchmarks", items[0].Title)
	assert.Equal(t, "R. Smith", items[0].Metadata["author"])
}

func TestRSSAdapter_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	adapter := NewRSSAdapter("techcrunch", "TechCrunch AI", server.URL, server.Client(), nil)

	items, err := adapter.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRSSAdapter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewRSSAdapter("techcrunch", "TechCrunch AI", server.URL, server.Client(), nil)

	_, err := adapter.Fetch(context.Background(), 0)
	assert.ErrorIs(t, err, ErrUnavailable, "5xx is transient")
}

func TestRSSAdapter_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewRSSAdapter("techcrunch", "TechCrunch AI", server.URL, server.Client(), nil)

	_, err := adapter.Fetch(context.Background(), 0)
	assert.ErrorIs(t, err, ErrMalformed, "4xx is permanent for the run")
}

func TestRSSAdapter_GarbageBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not xml"))
	}))
	defer server.Close()

	adapter := NewRSSAdapter("techcrunch", "TechCrunch AI", server.URL, server.Client(), nil)

	_, err := adapter.Fetch(context.Background(), 0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRSSAdapter_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	adapter := NewRSSAdapter("techcrunch", "TechCrunch AI", server.URL, nil, nil)

	_, err := adapter.Fetch(context.Background(), 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestParseFeedTime(t *testing.T) {
	assert.Equal(t,
		time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		parseFeedTime("Fri, 01 Aug 2025 12:00:00 +0000"))
	assert.Equal(t,
		time.Date(2025, 8, 2, 8, 0, 0, 0, time.UTC),
		parseFeedTime("2025-08-02T08:00:00Z"))
	assert.True(t, parseFeedTime("").IsZero())
	assert.True(t, parseFeedTime("yesterday").IsZero())
}
