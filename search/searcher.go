package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/core"
	"github.com/masterhudini/ainews/storage"
)

const (
	// defaultMinSimilarity filters out weak semantic matches.
	defaultMinSimilarity = 0.60

	// verbatimBoost is added to the score of hits containing every query word.
	verbatimBoost = 0.1
)

// Result is one ranked search hit.
type Result struct {
	Article *core.Article
	Score   float32
}

// Searcher provides semantic search over stored articles.
type Searcher struct {
	articles      storage.ArticleRepository
	index         storage.DedupIndex
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the minimum semantic score for a hit.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	articles storage.ArticleRepository,
	index storage.DedupIndex,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if articles == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if index == nil {
		return nil, ErrDedupIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		articles:      articles,
		index:         index,
		embedder:      provider.Embedder(),
		minSimilarity: defaultMinSimilarity,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for articles similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*Result, error) {
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// Over-fetch so the similarity floor doesn't starve the result set
	neighbors, err := s.index.SearchVectors(ctx, embedding, maxHits*2)
	if err != nil {
		s.logger.Error("error querying for similar articles", "err", err)
		return nil, err
	}

	scores := make(map[core.ID]float32, len(neighbors))
	ids := make([]core.ID, 0, len(neighbors))
	for _, neighbor := range neighbors {
		if neighbor.Score < s.minSimilarity {
			continue
		}
		scores[neighbor.ArticleId] = neighbor.Score
		ids = append(ids, neighbor.ArticleId)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	articles, err := s.articles.GetArticles(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving matched articles", "err", err)
		return nil, err
	}

	results := make([]*Result, 0, len(articles))
	for _, article := range articles {
		score := scores[article.Id]

		// Reward hits that also contain the query verbatim
		if containsAllQueryWords(article.Title+" "+article.Body, query) {
			score += verbatimBoost
			if score > 1 {
				score = 1
			}
		}

		results = append(results, &Result{
			Article: article,
			Score:   score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > maxHits {
		results = results[:maxHits]
	}

	s.logger.Debug("search complete", "query", query, "hits", len(results))
	return results, nil
}
