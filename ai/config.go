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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server.
	EmbeddingHost string

	// AnalyzerHost is the base URL for the analysis/chat service API.
	AnalyzerHost string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma".
	EmbeddingModel string

	// AnalyzerModel is the model identifier for article analysis.
	// Example: "gpt-4o-mini", "qwen2.5:3b".
	AnalyzerModel string

	// APIToken authenticates against hosted services. "none" works for
	// local OpenAI-compatible servers that skip authentication.
	APIToken string

	// MaxAnalyzeArticles bounds how many articles one analysis call covers.
	MaxAnalyzeArticles int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets both embedding and analyzer hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.AnalyzerHost = host
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithAnalyzerHost sets the analyzer service host URL.
func WithAnalyzerHost(host string) ConfigOption {
	return func(c *Config) {
		c.AnalyzerHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAnalyzerModel sets the analyzer model identifier.
func WithAnalyzerModel(model string) ConfigOption {
	return func(c *Config) {
		c.AnalyzerModel = model
	}
}

// WithAPIToken sets the API token for hosted services.
func WithAPIToken(token string) ConfigOption {
	return func(c *Config) {
		c.APIToken = token
	}
}

// DefaultConfig returns a Config with defaults for local OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		AnalyzerHost:       defaultHost,
		EmbeddingModel:     "text-embedding-3-small",
		AnalyzerModel:      "gpt-4o-mini",
		APIToken:           "none",
		MaxAnalyzeArticles: 25,
	}
}

// NewConfig creates a Config with defaults and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize brings the configuration into canonical form: hosts get the /v1
// suffix most OpenAI-compatible APIs expect.
func (c *Config) Normalize() {
	c.EmbeddingHost = ensureV1Suffix(c.EmbeddingHost)
	c.AnalyzerHost = ensureV1Suffix(c.AnalyzerHost)
}

func ensureV1Suffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.AnalyzerHost == "" {
		return errors.New("ai config: AnalyzerHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.AnalyzerModel == "" {
		return errors.New("ai config: AnalyzerModel is required")
	}
	if c.MaxAnalyzeArticles < 1 {
		return errors.New("ai config: MaxAnalyzeArticles must be at least 1")
	}
	return nil
}
