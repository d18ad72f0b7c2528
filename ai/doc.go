// Package ai defines the AI service interfaces the ingestion pipeline
// depends on: text embedding for semantic deduplication and article
// analysis for downstream topic/insight enrichment.
//
// The openai subpackage implements both against OpenAI-compatible APIs;
// the mock subpackage provides deterministic test doubles. Consumers hold
// the interfaces, never the concrete clients.
package ai
