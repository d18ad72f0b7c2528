package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/core"
	"github.com/masterhudini/ainews/sources"
	"github.com/masterhudini/ainews/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultFetchLimit     = 50
	defaultRateRequests   = 5
	defaultRateWindow     = time.Second
)

// Orchestrator drives a full ingestion run: it fetches from each registered
// source concurrently, normalizes, deduplicates and persists the survivors,
// and aggregates per-source outcomes into a RunReport.
type Orchestrator struct {
	registry  *sources.Registry
	articles  storage.ArticleRepository
	index     storage.DedupIndex
	provider  ai.Provider
	deduper   *Deduper
	pool      *ants.Pool
	limiters  *limiterPool
	threshold float32

	maxAttempts    int
	retryBaseDelay time.Duration
	fetchLimit     int
	logger         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for concurrent source processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithRetryPolicy sets the retry bound and base backoff delay applied to
// transient fetch failures.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) Option {
	return func(o *Orchestrator) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		o.maxAttempts = maxAttempts
		o.retryBaseDelay = baseDelay
		return nil
	}
}

// WithRateLimit sets the per-source request budget: requests per window.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(o *Orchestrator) error {
		o.limiters = newLimiterPool(requests, window)
		return nil
	}
}

// WithFetchLimit bounds how many items each source is asked for per run.
func WithFetchLimit(limit int) Option {
	return func(o *Orchestrator) error {
		if limit > 0 {
			o.fetchLimit = limit
		}
		return nil
	}
}

// WithSimilarityThreshold sets the inclusive semantic duplicate threshold.
func WithSimilarityThreshold(threshold float32) Option {
	return func(o *Orchestrator) error {
		if threshold <= 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		o.threshold = threshold
		return nil
	}
}

// NewOrchestrator creates an ingestion orchestrator.
func NewOrchestrator(
	registry *sources.Registry,
	articles storage.ArticleRepository,
	index storage.DedupIndex,
	provider ai.Provider,
	opts ...Option,
) (*Orchestrator, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if articles == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if index == nil {
		return nil, ErrDedupIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		registry:       registry,
		articles:       articles,
		index:          index,
		provider:       provider,
		pool:           pool,
		limiters:       newLimiterPool(defaultRateRequests, defaultRateWindow),
		threshold:      DefaultSimilarityThreshold,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
		fetchLimit:     defaultFetchLimit,
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	// Create the deduper after options are applied so it gets final config
	deduper, err := NewDeduper(index, provider.Embedder(), o.threshold, o.logger)
	if err != nil {
		o.Release()
		return nil, err
	}
	o.deduper = deduper

	return o, nil
}

// RunOptions holds optional parameters for a pipeline run.
type RunOptions struct {
	// SourceKeys restricts the run to the named sources.
	// Empty means every registered source.
	SourceKeys []string

	// WithAnalysis triggers downstream analysis of newly stored articles.
	WithAnalysis bool
}

// Run executes one full ingestion pass and returns its report.
//
// Per-source and per-record errors are folded into the report, never
// returned; Run only fails when a requested source key does not resolve.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	entries, err := o.resolve(opts.SourceKeys)
	if err != nil {
		return nil, err
	}

	report := newRunReport()
	o.logger.Info("starting ingestion run", "run", report.RunId, "sources", len(entries))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		stored []*core.Article
	)
	outcomes := make([]SourceOutcome, len(entries))

	for i, entry := range entries {
		wg.Add(1)
		i, adapter := i, entry.Adapter
		submitErr := o.pool.Submit(func() {
			defer wg.Done()
			outcome, kept := o.processSource(ctx, adapter)
			outcomes[i] = outcome
			mu.Lock()
			stored = append(stored, kept...)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			outcomes[i] = SourceOutcome{
				SourceKey:     entry.Key,
				Status:        SourceFailed,
				FailureReason: submitErr.Error(),
			}
		}
	}
	wg.Wait()

	for _, outcome := range outcomes {
		report.add(outcome)
	}

	if opts.WithAnalysis && len(stored) > 0 {
		o.analyze(ctx, report, stored)
	}

	report.Duration = time.Since(report.StartedAt)
	o.logger.Info("ingestion run complete",
		"run", report.RunId,
		"stored", report.TotalStored,
		"duplicatesExact", report.TotalDuplicatesExact,
		"duplicatesSemantic", report.TotalDuplicatesSemantic,
		"failed", report.TotalFailed,
		"duration", report.Duration)

	return report, nil
}

// resolve maps the requested keys to adapters, or returns every registered
// adapter when no keys were given.
func (o *Orchestrator) resolve(keys []string) ([]sources.Entry, error) {
	if len(keys) == 0 {
		return o.registry.All(), nil
	}
	entries := make([]sources.Entry, 0, len(keys))
	for _, key := range keys {
		adapter, err := o.registry.Get(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sources.Entry{Key: key, Adapter: adapter})
	}
	return entries, nil
}

// processSource runs the fetch-normalize-dedup-persist sequence for one
// source and returns its outcome plus the articles it stored.
func (o *Orchestrator) processSource(ctx context.Context, adapter sources.Adapter) (SourceOutcome, []*core.Article) {
	outcome := SourceOutcome{
		SourceKey: adapter.Key(),
		Status:    SourceSucceeded,
	}
	logger := o.logger.With("source", adapter.Key())

	if ctx.Err() != nil {
		outcome.Status = SourceCancelled
		return outcome, nil
	}

	var items []core.RawItem
	err := RetryWithBackoff(ctx, func() error {
		if err := o.limiters.wait(ctx, adapter.Key()); err != nil {
			return err
		}
		var fetchErr error
		items, fetchErr = adapter.Fetch(ctx, o.fetchLimit)
		return fetchErr
	}, o.maxAttempts, o.retryBaseDelay, func(err error) bool {
		// Malformed responses don't get better on retry
		return errors.Is(err, sources.ErrUnavailable)
	})
	if err != nil {
		if ctx.Err() != nil {
			outcome.Status = SourceCancelled
		} else {
			outcome.Status = SourceFailed
			outcome.FailureReason = err.Error()
			logger.Warn("source fetch failed", "err", err)
		}
		return outcome, nil
	}

	outcome.Fetched = len(items)
	fetchedAt := time.Now().UTC()

	var kept []*core.Article
	for _, raw := range items {
		// Finish the current record on cancellation, start no new ones
		if ctx.Err() != nil {
			outcome.Status = SourceCancelled
			break
		}

		article, err := sources.Normalize(raw, fetchedAt)
		if err != nil {
			outcome.Failed++
			logger.Debug("dropping malformed item", "url", raw.URL, "err", err)
			continue
		}
		outcome.Normalized++

		decision, err := o.deduper.Evaluate(ctx, article)
		if err != nil {
			outcome.Failed++
			if errors.Is(err, ai.ErrEmbeddingUnavailable) {
				logger.Warn("embedding unavailable, article indeterminate", "url", article.URL)
			} else {
				logger.Error("dedup evaluation failed", "url", article.URL, "err", err)
			}
			continue
		}

		switch decision.Kind {
		case core.DecisionExactDuplicate:
			outcome.DuplicatesExact++
		case core.DecisionSemanticDuplicate:
			outcome.DuplicatesSemantic++
		case core.DecisionUnique:
			if _, err := o.articles.AddArticle(ctx, article); err != nil {
				if errors.Is(err, storage.ErrDuplicateURL) {
					// Lost a same-URL race to another worker
					outcome.DuplicatesExact++
				} else {
					outcome.Failed++
					logger.Error("persisting article failed", "url", article.URL, "err", err)
				}
				continue
			}
			outcome.Stored++
			kept = append(kept, article)
		}
	}

	logger.Info("source complete",
		"status", outcome.Status,
		"fetched", outcome.Fetched,
		"stored", outcome.Stored,
		"duplicatesExact", outcome.DuplicatesExact,
		"duplicatesSemantic", outcome.DuplicatesSemantic,
		"failed", outcome.Failed)

	return outcome, kept
}

// analyze classifies the newly stored articles and writes the results back.
// Failures land in the report's AnalysisError field only.
func (o *Orchestrator) analyze(ctx context.Context, report *RunReport, stored []*core.Article) {
	result, err := o.provider.Analyzer().Analyze(ctx, stored)
	if err != nil {
		report.AnalysisError = err.Error()
		o.logger.Warn("downstream analysis failed", "run", report.RunId, "err", err)
		return
	}

	byID := make(map[core.ID]*core.Article, len(stored))
	for _, article := range stored {
		byID[article.Id] = article
	}

	var enriched []*core.Article
	for _, insight := range result.Insights {
		article, ok := byID[insight.ArticleId]
		if !ok {
			continue
		}
		article.Topic = insight.Topic
		article.Insight = insight.Insight
		enriched = append(enriched, article)
	}

	if len(enriched) > 0 {
		if err := o.articles.UpdateArticles(ctx, enriched...); err != nil {
			report.AnalysisError = err.Error()
			o.logger.Warn("writing analysis results failed", "run", report.RunId, "err", err)
		}
	}
}

// Release releases the worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}
