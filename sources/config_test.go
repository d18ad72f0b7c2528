package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `sources:
  - key: techcrunch
    name: TechCrunch AI
    kind: rss
    url: https://techcrunch.com/category/artificial-intelligence/feed/
    enabled: true
  - key: hackernews
    kind: hackernews
    query: AI
    enabled: true
  - key: example-scrape
    name: Example
    kind: html
    url: https://example.com/ai
    selectors:
      item: article.post
      title: h2
      link: h2 a
      summary: p.teaser
    enabled: true
  - key: disabled-source
    kind: rss
    url: https://example.com/feed
    enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 4)
	assert.Equal(t, "techcrunch", cfg.Sources[0].Key)
	assert.Equal(t, "article.post", cfg.Sources[2].Selectors.Item)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      Config
		expected error
	}{
		{"no sources", Config{}, ErrNoSources},
		{"missing key", Config{Sources: []SourceConfig{{Kind: "rss", URL: "https://a.com"}}}, ErrSourceMissingKey},
		{"rss without url", Config{Sources: []SourceConfig{{Key: "a", Kind: "rss"}}}, ErrSourceMissingURL},
		{"unknown kind", Config{Sources: []SourceConfig{{Key: "a", Kind: "sftp", URL: "https://a.com"}}}, ErrSourceUnknownKind},
		{"hn without query", Config{Sources: []SourceConfig{{Key: "a", Kind: "hackernews"}}}, ErrSourceMissingQuery},
		{"html without selectors", Config{Sources: []SourceConfig{{Key: "a", Kind: "html", URL: "https://a.com"}}}, ErrHTMLMissingItem},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.cfg.Validate(), tc.expected)
		})
	}
}

func TestBuildRegistry(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	registry, err := BuildRegistry(cfg, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, registry.Len(), "disabled sources are skipped")
	assert.Equal(t, []string{"techcrunch", "hackernews", "example-scrape"}, registry.Keys())

	adapter, err := registry.Get("techcrunch")
	require.NoError(t, err)
	assert.IsType(t, &RSSAdapter{}, adapter)

	adapter, err = registry.Get("hackernews")
	require.NoError(t, err)
	assert.IsType(t, &HackerNewsAdapter{}, adapter)

	adapter, err = registry.Get("example-scrape")
	require.NoError(t, err)
	assert.IsType(t, &HTMLAdapter{}, adapter)
}

func TestBuildRegistry_DuplicateKeys(t *testing.T) {
	cfg := &Config{Sources: []SourceConfig{
		{Key: "a", Kind: "hackernews", Query: "AI", Enabled: true},
		{Key: "a", Kind: "hackernews", Query: "ML", Enabled: true},
	}}
	require.NoError(t, cfg.Validate())

	_, err := BuildRegistry(cfg, nil, nil)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}
