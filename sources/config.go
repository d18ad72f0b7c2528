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


package sources

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoSources          = errors.New("at least one source is required")
	ErrSourceMissingKey   = errors.New("source key is required")
	ErrSourceMissingURL   = errors.New("source url is required")
	ErrSourceUnknownKind  = errors.New("source kind must be one of: rss, hackernews, html")
	ErrSourceMissingQuery = errors.New("hackernews source requires a query")
	ErrHTMLMissingItem    = errors.New("html source requires item, title and link selectors")
)

// SourceConfig declares one adapter to register at bootstrap.
type SourceConfig struct {
	Key       string    `yaml:"key"`
	Name      string    `yaml:"name"`
	Kind      string    `yaml:"kind"` // rss | hackernews | html
	URL       string    `yaml:"url"`
	Query     string    `yaml:"query"` // hackernews only
	Selectors Selectors `yaml:"selectors"`
	Limit     int       `yaml:"limit"`
	Enabled   bool      `yaml:"enabled"`
}

// Config is the sources section of the bootstrap file.
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
}

// LoadConfig reads and validates a YAML sources file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sources config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every declared source can be constructed.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	for i, src := range c.Sources {
		if src.Key == "" {
			return fmt.Errorf("source %d: %w", i, ErrSourceMissingKey)
		}
		switch src.Kind {
		case "rss", "html":
			if src.URL == "" {
				return fmt.Errorf("source %q: %w", src.Key, ErrSourceMissingURL)
			}
			if src.Kind == "html" && (src.Selectors.Item == "" || src.Selectors.Title == "" || src.Selectors.Link == "") {
				return fmt.Errorf("source %q: %w", src.Key, ErrHTMLMissingItem)
			}
		case "hackernews":
			if src.Query == "" {
				return fmt.Errorf("source %q: %w", src.Key, ErrSourceMissingQuery)
			}
		default:
			return fmt.Errorf("source %q: %w: %q", src.Key, ErrSourceUnknownKind, src.Kind)
		}
	}
	return nil
}

// BuildRegistry constructs adapters for every enabled source and registers
// them in declaration order. This is the one-time bootstrap step; the
// returned registry is not re-populated mid-run.
func BuildRegistry(cfg *Config, client *http.Client, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := NewRegistry()
	for _, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}

		var adapter Adapter
		switch src.Kind {
		case "rss":
			adapter = NewRSSAdapter(src.Key, src.Name, src.URL, client, logger)
		case "hackernews":
			adapter = NewHackerNewsAdapter(src.Key, src.Query, client, logger)
		case "html":
			adapter = NewHTMLAdapter(src.Key, src.Name, src.URL, src.Selectors, client, logger)
		default:
			return nil, fmt.Errorf("source %q: %w: %q", src.Key, ErrSourceUnknownKind, src.Kind)
		}

		if err := registry.Register(src.Key, adapter); err != nil {
			return nil, err
		}
		logger.Debug("registered source", "key", src.Key, "kind", src.Kind)
	}

	return registry, nil
}
