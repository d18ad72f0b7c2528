package ai

import "github.com/masterhudini/ainews/core"

// Topics defines the categories the analyzer may assign to an article.
var Topics = []string{
	"llm",
	"computer_vision",
	"robotics",
	"research",
	"industry",
	"policy",
	"hardware",
	"open_source",
	"other",
}

// ArticleInsight is the analyzer's verdict on one article.
type ArticleInsight struct {
	ArticleId core.ID
	// Topic is one of the Topics categories.
	Topic string
	// Insight is a one-sentence takeaway.
	Insight string
}

// AnalysisResult is the structured output of one analysis pass.
type AnalysisResult struct {
	Insights []ArticleInsight
	// Digest summarizes the whole batch in a short paragraph.
	Digest string
}
