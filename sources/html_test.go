package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><body>
  <article class="post">
    <h2><a href="/2025/08/gpt-5">OpenAI releases GPT-5</a></h2>
    <p class="teaser">The long awaited model is here.</p>
  </article>
  <article class="post">
    <h2><a href="https://other.example.com/robots">Robots cook dinner</a></h2>
    <p class="teaser">Kitchens get automated.</p>
  </article>
  <article class="post">
    <h2>No link here</h2>
  </article>
</body></html>`

func htmlTestAdapter(t *testing.T) (*HTMLAdapter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	t.Cleanup(server.Close)

	selectors := Selectors{Item: "article.post", Title: "h2", Link: "h2 a", Summary: "p.teaser"}
	return NewHTMLAdapter("example", "Example", server.URL+"/ai", selectors, server.Client(), nil), server
}

func TestHTMLAdapter_Fetch(t *testing.T) {
	adapter, server := htmlTestAdapter(t)

	items, err := adapter.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 2, "element without a link is skipped")

	assert.Equal(t, "OpenAI releases GPT-5", items[0].Title)
	assert.Equal(t, server.URL+"/2025/08/gpt-5", items[0].URL, "relative links resolve against the page")
	assert.Equal(t, "The long awaited model is here.", items[0].Body)

	assert.Equal(t, "https://other.example.com/robots", items[1].URL, "absolute links pass through")
}

func TestHTMLAdapter_Limit(t *testing.T) {
	adapter, _ := htmlTestAdapter(t)

	items, err := adapter.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestHTMLAdapter_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	}))
	defer server.Close()

	adapter := NewHTMLAdapter("example", "Example", server.URL,
		Selectors{Item: "article.post", Title: "h2", Link: "a"}, server.Client(), nil)

	_, err := adapter.Fetch(context.Background(), 0)
	assert.ErrorIs(t, err, ErrMalformed, "a selector that matches nothing means the page layout changed")
}

func TestHackerNewsAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AI", r.URL.Query().Get("query"))
		w.Write([]byte(`{"hits":[
			{"objectID":"1","title":"Show HN: AI tool","url":"https://tool.example.com","author":"pg","points":120,"created_at_i":1754040000},
			{"objectID":"2","title":"Ask HN: AI careers?","story_text":"Where should I start?","author":"dang","points":40,"created_at_i":1754030000},
			{"objectID":"3","title":"","url":"https://dropped.example.com"}
		]}`))
	}))
	defer server.Close()

	adapter := NewHackerNewsAdapter("hackernews", "AI", server.Client(), nil)
	adapter.baseURL = server.URL

	items, err := adapter.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2, "hit without a title is dropped")

	assert.Equal(t, "https://tool.example.com", items[0].URL)
	assert.Equal(t, "Show HN: AI tool", items[0].Body, "link posts fall back to the title as body")
	assert.Equal(t, "120", items[0].Metadata["points"])

	assert.Equal(t, "https://news.ycombinator.com/item?id=2", items[1].URL, "self posts link back to the discussion")
	assert.Equal(t, "Where should I start?", items[1].Body)
	assert.False(t, items[1].Published.IsZero())
}

func TestHackerNewsAdapter_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	adapter := NewHackerNewsAdapter("hackernews", "AI", server.Client(), nil)
	adapter.baseURL = server.URL

	_, err := adapter.Fetch(context.Background(), 10)
	assert.ErrorIs(t, err, ErrMalformed)
}
