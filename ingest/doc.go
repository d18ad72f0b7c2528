// Package ingest provides pipeline orchestration for news article ingestion.
//
// The Orchestrator type manages the ingestion workflow across all registered
// sources, including:
//   - Fetching from each source concurrently through a worker pool
//   - Normalizing raw items into canonical articles
//   - Two-tier duplicate detection via a Deduper (exact fingerprint, then
//     semantic similarity over the embedding vector index)
//   - Persisting unique articles and aggregating per-source outcomes
//
// Per-source and per-record failures are isolated: a flaky source never
// poisons another source's results, and every non-stored record is accounted
// for in the RunReport. The Reindexer rebuilds the vector index from stored
// articles when the embedding model changes.
package ingest
