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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Analyzer implements ai.Analyzer using OpenAI-compatible chat APIs.
type Analyzer struct {
	client      llms.Model
	maxArticles int
	logger      *slog.Logger
}

// articleVerdict is an internal type matching the JSON the LLM returns
// for one article.
type articleVerdict struct {
	URL     string `json:"url"`
	Topic   string `json:"topic"`
	Insight string `json:"insight"`
}

// batchAnalysis is the wrapper structure for the LLM's JSON response.
type batchAnalysis struct {
	Articles []articleVerdict `json:"articles"`
	Digest   string           `json:"digest"`
}

// newAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAnalyzer(config *ai.Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.AnalyzerHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.AnalyzerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		client:      client,
		maxArticles: config.MaxAnalyzeArticles,
		logger:      slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewAnalyzer creates a new analyzer using the provided configuration.
//
// Returns ai.Analyzer interface to enforce abstraction.
func NewAnalyzer(config *ai.Config) (ai.Analyzer, error) {
	return newAnalyzer(config)
}

// Analyze classifies the given articles by topic and produces a digest.
func (a *Analyzer) Analyze(ctx context.Context, articles []*core.Article) (*ai.AnalysisResult, error) {
	if len(articles) == 0 {
		return &ai.AnalysisResult{}, nil
	}
	if len(articles) > a.maxArticles {
		articles = articles[:a.maxArticles]
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildAnalyzerPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(renderArticles(articles))},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result batchAnalysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			a.logger.Error("failed to generate analysis", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("%w: %w", ai.ErrAnalysisFailed, err)
		}

		if len(response.Choices) < 1 {
			return nil, fmt.Errorf("%w: no choices returned", ai.ErrAnalysisFailed)
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			a.logger.Warn("error parsing analyzer response",
				"attempt", attempt+1,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}
	if lastErr != nil {
		a.logger.Error("failed to parse analyzer response after retries", "err", lastErr)
		return nil, fmt.Errorf("%w: %w", ai.ErrAnalysisFailed, lastErr)
	}

	// Match verdicts back to articles by URL; verdicts for unknown URLs are dropped.
	byURL := make(map[string]core.ID, len(articles))
	for _, article := range articles {
		byURL[article.URL] = article.Id
	}

	insights := make([]ai.ArticleInsight, 0, len(result.Articles))
	for _, verdict := range result.Articles {
		id, ok := byURL[verdict.URL]
		if !ok {
			continue
		}
		insights = append(insights, ai.ArticleInsight{
			ArticleId: id,
			Topic:     normalizeTopic(verdict.Topic),
			Insight:   strings.TrimSpace(verdict.Insight),
		})
	}

	a.logger.Debug("analysis complete", "articles", len(articles), "insights", len(insights))
	return &ai.AnalysisResult{
		Insights: insights,
		Digest:   strings.TrimSpace(result.Digest),
	}, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// normalizeTopic maps the model's topic string onto the known set,
// falling back to "other".
func normalizeTopic(topic string) string {
	topic = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(topic)), " ", "_")
	for _, known := range ai.Topics {
		if topic == known {
			return topic
		}
	}
	return "other"
}
