package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/core"
)

// MockAnalyzer is a test double for ai.Analyzer.
// It allows custom behavior injection via function fields.
type MockAnalyzer struct {
	// AnalyzeFunc is called by Analyze if set.
	// If nil, uses default canned classification.
	AnalyzeFunc func(ctx context.Context, articles []*core.Article) (*ai.AnalysisResult, error)

	callCount int
}

// NewMockAnalyzer creates a mock analyzer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockAnalyzer().
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// Analyze produces canned insights for the given articles.
// Default behavior: every article is classified "other" with an insight
// derived from its title, and the digest counts the batch.
func (m *MockAnalyzer) Analyze(ctx context.Context, articles []*core.Article) (*ai.AnalysisResult, error) {
	m.callCount++

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, articles)
	}

	insights := make([]ai.ArticleInsight, 0, len(articles))
	for _, article := range articles {
		insights = append(insights, ai.ArticleInsight{
			ArticleId: article.Id,
			Topic:     "other",
			Insight:   strings.TrimSpace(article.Title),
		})
	}

	return &ai.AnalysisResult{
		Insights: insights,
		Digest:   fmt.Sprintf("%d articles analyzed", len(articles)),
	}, nil
}

// CallCount returns the number of times Analyze was called.
func (m *MockAnalyzer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockAnalyzer) Reset() {
	m.callCount = 0
	m.AnalyzeFunc = nil
}
