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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masterhudini/ainews"
	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/ai/openai"
	"github.com/masterhudini/ainews/ingest"
	"github.com/masterhudini/ainews/sources"
	"github.com/masterhudini/ainews/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "ainews",
		Usage: "AI news ingestion pipeline with semantic deduplication",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Fetch, deduplicate and store articles from configured sources",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "sources",
						Aliases:  []string{"s"},
						Usage:    "Path to YAML sources configuration file",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Restrict the run to the named source keys (repeatable)",
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "AI service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-small",
					},
					&cli.StringFlag{
						Name:  "analyzer-model",
						Usage: "Analyzer model name",
						Value: "gpt-4o-mini",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Inclusive cosine similarity threshold for semantic duplicates",
						Value: float64(ingest.DefaultSimilarityThreshold),
					},
					&cli.IntFlag{
						Name:  "fetch-limit",
						Usage: "Maximum number of items to request from each source",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Maximum fetch attempts per source, including the first",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:  "analyze",
						Usage: "Run downstream analysis on newly stored articles",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Overall run timeout",
						Value: 10 * time.Minute,
					},
				},
			},
			{
				Name:   "sources",
				Usage:  "List the sources declared in a configuration file",
				Action: sourcesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "sources",
						Aliases:  []string{"s"},
						Usage:    "Path to YAML sources configuration file",
						Required: true,
					},
				},
			},
			{
				Name:   "recent",
				Usage:  "Show the most recently published stored articles",
				Action: recentCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of articles to show",
						Value:   20,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search stored articles by semantic similarity",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "AI service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-small",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Regenerate embedding vectors for all stored articles",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "AI service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of articles to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N articles",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	}
	if model := c.String("analyzer-model"); model != "" {
		opts = append(opts, ai.WithAnalyzerModel(model))
	}
	if token := os.Getenv("AINEWS_API_TOKEN"); token != "" {
		opts = append(opts, ai.WithAPIToken(token))
	}
	return ai.NewConfig(opts...)
}

func ingestCommand(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	// Load and validate sources before touching the database
	cfg, err := sources.LoadConfig(c.String("sources"))
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	registry, err := sources.BuildRegistry(cfg, client, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to build source registry: %w", err)
	}

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := ainews.NewDatabase(c.String("db"), ainews.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	orchestrator, err := db.NewOrchestrator(registry,
		ingest.WithSimilarityThreshold(float32(c.Float64("threshold"))),
		ingest.WithFetchLimit(c.Int("fetch-limit")),
		ingest.WithRetryPolicy(c.Int("max-attempts"), 500*time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	report, err := orchestrator.Run(ctx, ingest.RunOptions{
		SourceKeys:   c.StringSlice("source"),
		WithAnalysis: c.Bool("analyze"),
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printReport(report)
	return nil
}

func printReport(report *ingest.RunReport) {
	fmt.Fprintf(os.Stderr, "Run %s finished in %s\n", report.RunId, report.Duration.Round(time.Millisecond))
	for _, outcome := range report.Sources {
		fmt.Fprintf(os.Stderr, "  %-20s %-10s fetched=%d stored=%d dup_exact=%d dup_semantic=%d failed=%d\n",
			outcome.SourceKey, outcome.Status,
			outcome.Fetched, outcome.Stored,
			outcome.DuplicatesExact, outcome.DuplicatesSemantic, outcome.Failed)
		if outcome.FailureReason != "" {
			fmt.Fprintf(os.Stderr, "    reason: %s\n", outcome.FailureReason)
		}
	}
	fmt.Fprintf(os.Stderr, "Total: fetched=%d stored=%d dup_exact=%d dup_semantic=%d failed=%d\n",
		report.TotalFetched, report.TotalStored,
		report.TotalDuplicatesExact, report.TotalDuplicatesSemantic, report.TotalFailed)
	if report.AnalysisError != "" {
		fmt.Fprintf(os.Stderr, "Analysis error: %s\n", report.AnalysisError)
	}
}

func sourcesCommand(c *cli.Context) error {
	cfg, err := sources.LoadConfig(c.String("sources"))
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	for _, src := range cfg.Sources {
		state := "enabled"
		if !src.Enabled {
			state = "disabled"
		}
		fmt.Printf("%-20s %-12s %-8s %s\n", src.Key, src.Kind, state, src.URL)
	}
	return nil
}

func recentCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewArticleRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	articles, err := repo.GetRecentArticles(ctx, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}

	for _, article := range articles {
		when := article.Published
		if when.IsZero() {
			when = article.FetchedAt
		}
		fmt.Printf("%s  [%s] %s\n    %s\n", when.Format(time.RFC3339), article.SourceKey, article.Title, article.URL)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := ainews.NewDatabase(c.String("db"), ainews.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for _, result := range results {
		fmt.Printf("%.3f  [%s] %s\n    %s\n", result.Score, result.Article.SourceKey, result.Article.Title, result.Article.URL)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewArticleRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	index, err := badger.NewDedupIndex(backend)
	if err != nil {
		return fmt.Errorf("failed to create dedup index: %w", err)
	}
	defer index.Close()

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reindexConfig := &ingest.ReindexConfig{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer := ingest.NewReindexer(repo, index, embedder, reindexConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "AI host: %s\n", c.String("ai-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
