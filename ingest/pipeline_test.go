package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/ai/mock"
	"github.com/masterhudini/ainews/core"
	"github.com/masterhudini/ainews/sources"
	"github.com/masterhudini/ainews/storage"
	"github.com/masterhudini/ainews/storage/badger"
)

// stubAdapter implements sources.Adapter for testing.
type stubAdapter struct {
	key        string
	items      []core.RawItem
	err        error
	fetchCalls atomic.Int32
}

func (s *stubAdapter) Key() string  { return s.key }
func (s *stubAdapter) Name() string { return s.key }

func (s *stubAdapter) Fetch(ctx context.Context, limit int) ([]core.RawItem, error) {
	s.fetchCalls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.items) {
		return s.items[:limit], nil
	}
	return s.items, nil
}

func rawItem(url, body string) core.RawItem {
	return core.RawItem{
		SourceKey: "stub",
		URL:       url,
		Title:     "Title",
		Body:      body,
		Published: time.Now().UTC(),
	}
}

type testEnv struct {
	registry *sources.Registry
	articles storage.ArticleRepository
	index    storage.DedupIndex
	backend  *badger.Backend
}

func newTestEnv(t *testing.T, adapters ...*stubAdapter) *testEnv {
	t.Helper()
	articleRepo, dedupIndex, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		dedupIndex.Close()
		articleRepo.Close()
		backend.Close()
	})

	registry := sources.NewRegistry()
	for _, a := range adapters {
		require.NoError(t, registry.Register(a.key, a))
	}

	return &testEnv{
		registry: registry,
		articles: articleRepo,
		index:    dedupIndex,
		backend:  backend,
	}
}

func newTestOrchestrator(t *testing.T, env *testEnv, opts ...Option) *Orchestrator {
	t.Helper()
	base := []Option{
		WithRetryPolicy(3, time.Millisecond),
		WithRateLimit(100, time.Second),
	}
	orch, err := NewOrchestrator(env.registry, env.articles, env.index, mock.NewMockProvider(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(orch.Release)
	return orch
}

func TestRunStoresUniqueArticles(t *testing.T) {
	adapter := &stubAdapter{key: "alpha", items: []core.RawItem{
		rawItem("https://alpha.example.com/1", "First story body."),
		rawItem("https://alpha.example.com/2", "Second, unrelated story body."),
	}}
	env := newTestEnv(t, adapter)
	orch := newTestOrchestrator(t, env)

	report, err := orch.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	require.Len(t, report.Sources, 1)
	outcome := report.Sources[0]
	assert.Equal(t, SourceSucceeded, outcome.Status)
	assert.Equal(t, 2, outcome.Fetched)
	assert.Equal(t, 2, outcome.Stored)
	assert.Equal(t, 2, report.TotalStored)
	assert.NotEqual(t, report.RunId.String(), "00000000-0000-0000-0000-000000000000")

	stored, err := env.articles.GetArticleByURL(context.Background(), "https://alpha.example.com/1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", stored.SourceKey)
}

func TestRunExactDuplicateAcrossSources(t *testing.T) {
	body := "OpenAI releases GPT-5"
	first := &stubAdapter{key: "techcrunch", items: []core.RawItem{
		rawItem("https://techcrunch.com/gpt5", body),
	}}
	second := &stubAdapter{key: "theverge", items: []core.RawItem{
		rawItem("https://theverge.com/gpt5", body),
	}}
	env := newTestEnv(t, first, second)
	orch := newTestOrchestrator(t, env)

	report, err := orch.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalStored)
	assert.Equal(t, 1, report.TotalDuplicatesExact)
	assert.Equal(t, 0, report.TotalFailed)
}

func TestRunFaultIsolation(t *testing.T) {
	flaky := &stubAdapter{key: "flaky", err: fmt.Errorf("%w: upstream 503", sources.ErrUnavailable)}
	healthy := &stubAdapter{key: "healthy", items: []core.RawItem{
		rawItem("https://healthy.example.com/1", "A perfectly good story."),
	}}
	env := newTestEnv(t, flaky, healthy)
	orch := newTestOrchestrator(t, env)

	report, err := orch.Run(context.Background(), RunOptions{})
	require.NoError(t, err, "partial failure never aborts the run")

	byKey := make(map[string]SourceOutcome)
	for _, outcome := range report.Sources {
		byKey[outcome.SourceKey] = outcome
	}

	assert.Equal(t, SourceFailed, byKey["flaky"].Status)
	assert.NotEmpty(t, byKey["flaky"].FailureReason)
	assert.Equal(t, int32(3), flaky.fetchCalls.Load(), "transient failures are retried up to the bound")

	assert.Equal(t, SourceSucceeded, byKey["healthy"].Status)
	assert.Equal(t, 1, byKey["healthy"].Stored)
	assert.Equal(t, 1, report.TotalStored)
}

func TestRunMalformedSourceNotRetried(t *testing.T) {
	broken := &stubAdapter{key: "broken", err: fmt.Errorf("%w: not a feed", sources.ErrMalformed)}
	env := newTestEnv(t, broken)
	orch := newTestOrchestrator(t, env)

	report, err := orch.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, SourceFailed, report.Sources[0].Status)
	assert.Equal(t, int32(1), broken.fetchCalls.Load(), "malformed responses are not retried")
}

func TestRunMalformedRecordsAreDropped(t *testing.T) {
	adapter := &stubAdapter{key: "mixed", items: []core.RawItem{
		rawItem("https://mixed.example.com/ok", "A valid story body."),
		rawItem("https://mixed.example.com/empty", ""),
		rawItem("not-a-url", "Body with an invalid link."),
	}}
	env := newTestEnv(t, adapter)
	orch := newTestOrchestrator(t, env)

	report, err := orch.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	outcome := report.Sources[0]
	assert.Equal(t, SourceSucceeded, outcome.Status)
	assert.Equal(t, 3, outcome.Fetched)
	assert.Equal(t, 1, outcome.Normalized)
	assert.Equal(t, 1, outcome.Stored)
	assert.Equal(t, 2, outcome.Failed)
}

func TestRunUnknownSourceKey(t *testing.T) {
	env := newTestEnv(t, &stubAdapter{key: "known"})
	orch := newTestOrchestrator(t, env)

	_, err := orch.Run(context.Background(), RunOptions{SourceKeys: []string{"nope"}})
	assert.ErrorIs(t, err, sources.ErrUnknownSource)
}

func TestRunSourceKeySubset(t *testing.T) {
	wanted := &stubAdapter{key: "wanted", items: []core.RawItem{
		rawItem("https://wanted.example.com/1", "Wanted story."),
	}}
	ignored := &stubAdapter{key: "ignored", items: []core.RawItem{
		rawItem("https://ignored.example.com/1", "Ignored story."),
	}}
	env := newTestEnv(t, wanted, ignored)
	orch := newTestOrchestrator(t, env)

	report, err := orch.Run(context.Background(), RunOptions{SourceKeys: []string{"wanted"}})
	require.NoError(t, err)

	require.Len(t, report.Sources, 1)
	assert.Equal(t, "wanted", report.Sources[0].SourceKey)
	assert.Equal(t, int32(0), ignored.fetchCalls.Load())
}

func TestRunCancellation(t *testing.T) {
	adapter := &stubAdapter{key: "slow", items: []core.RawItem{
		rawItem("https://slow.example.com/1", "Story one."),
	}}
	env := newTestEnv(t, adapter)
	orch := newTestOrchestrator(t, env)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := orch.Run(ctx, RunOptions{})
	require.NoError(t, err, "cancellation still yields a report")

	assert.Equal(t, SourceCancelled, report.Sources[0].Status)
	assert.Equal(t, 0, report.TotalStored)
}

func TestRunEmbeddingUnavailable(t *testing.T) {
	adapter := &stubAdapter{key: "alpha", items: []core.RawItem{
		rawItem("https://alpha.example.com/1", "Story body."),
	}}
	env := newTestEnv(t, adapter)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("quota exceeded")
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockAnalyzer())

	orch, err := NewOrchestrator(env.registry, env.articles, env.index, provider,
		WithRetryPolicy(2, time.Millisecond))
	require.NoError(t, err)
	defer orch.Release()

	report, err := orch.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	outcome := report.Sources[0]
	assert.Equal(t, SourceSucceeded, outcome.Status)
	assert.Equal(t, 1, outcome.Failed, "indeterminate articles count as failed")
	assert.Equal(t, 0, outcome.Stored)

	// Neither stored nor registered
	_, err = env.articles.GetArticleByURL(context.Background(), "https://alpha.example.com/1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunWithAnalysis(t *testing.T) {
	adapter := &stubAdapter{key: "alpha", items: []core.RawItem{
		rawItem("https://alpha.example.com/1", "Analysis target body."),
	}}
	env := newTestEnv(t, adapter)
	orch := newTestOrchestrator(t, env)

	report, err := orch.Run(context.Background(), RunOptions{WithAnalysis: true})
	require.NoError(t, err)
	assert.Empty(t, report.AnalysisError)

	stored, err := env.articles.GetArticleByURL(context.Background(), "https://alpha.example.com/1")
	require.NoError(t, err)
	assert.Equal(t, "other", stored.Topic, "mock analyzer classifies everything as other")
	assert.NotEmpty(t, stored.Insight)
}

func TestRunAnalysisFailureIsIsolated(t *testing.T) {
	adapter := &stubAdapter{key: "alpha", items: []core.RawItem{
		rawItem("https://alpha.example.com/1", "Analysis target body."),
	}}
	env := newTestEnv(t, adapter)

	analyzer := mock.NewMockAnalyzer()
	analyzer.AnalyzeFunc = func(ctx context.Context, articles []*core.Article) (*ai.AnalysisResult, error) {
		return nil, errors.New("model overloaded")
	}

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), analyzer)
	orch, err := NewOrchestrator(env.registry, env.articles, env.index, provider)
	require.NoError(t, err)
	defer orch.Release()

	report, err := orch.Run(context.Background(), RunOptions{WithAnalysis: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalStored, "analysis failure never changes outcomes")
	assert.Contains(t, report.AnalysisError, "model overloaded")
}

func TestNewOrchestratorValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := NewOrchestrator(nil, env.articles, env.index, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrRegistryRequired)

	_, err = NewOrchestrator(env.registry, nil, env.index, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrArticleRepositoryRequired)

	_, err = NewOrchestrator(env.registry, env.articles, nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrDedupIndexRequired)

	_, err = NewOrchestrator(env.registry, env.articles, env.index, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewOrchestrator(env.registry, env.articles, env.index, mock.NewMockProvider(),
		WithSimilarityThreshold(2))
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
