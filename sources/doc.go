// Package sources provides the adapter layer that pulls raw content from
// external origins (RSS/Atom feeds, the Hacker News API, scraped pages) and
// normalizes it into canonical articles.
//
// Each origin is one Adapter registered in a Registry under a stable key.
// The registry is populated once at bootstrap from a YAML file (see
// BuildRegistry) and iterates in registration order. Adapters distinguish
// transient failures (ErrUnavailable, retryable) from permanent ones
// (ErrMalformed, skipped for the run) so the orchestrator can apply
// different backoff policy per source.
package sources
