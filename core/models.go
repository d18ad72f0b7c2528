package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored articles.
// It is derived from the article URL so that retries and concurrent
// ingestion of the same page converge on the same identity.
type ID uint64

// IDFromURL generates a deterministic ID from an article URL using BLAKE2b hashing.
func IDFromURL(url string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(url))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fingerprint is a 256-bit BLAKE2b digest of normalized article body text.
// Two articles with the same fingerprint are exact duplicates.
type Fingerprint [32]byte

// String returns the fingerprint as a lowercase hex string.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether the fingerprint has not been computed.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// RawItem is the untouched output of a single adapter fetch.
// It lives only until normalization turns it into an Article.
type RawItem struct {
	SourceKey string
	URL       string
	Title     string
	Body      string
	Published time.Time         // Zero when the source did not report one
	Metadata  map[string]string // Source-specific fields (author, feed id, ...)
}

// Article is the canonical record consumed by dedup, storage and analysis.
type Article struct {
	Id          ID
	SourceKey   string
	URL         string
	Title       string
	Body        string    // Cleaned, whitespace-normalized text
	Published   time.Time // Zero when unknown
	FetchedAt   time.Time
	Fingerprint Fingerprint
	Topic       string // Populated by downstream analysis, empty until then
	Insight     string // Populated by downstream analysis, empty until then
	Metadata    map[string]string
}

// DecisionKind enumerates the terminal outcomes of dedup evaluation.
type DecisionKind int

const (
	// DecisionUnique means the article was seen for the first time and registered.
	DecisionUnique DecisionKind = iota + 1
	// DecisionExactDuplicate means an identical fingerprint is already registered.
	DecisionExactDuplicate
	// DecisionSemanticDuplicate means a stored article is semantically too close.
	DecisionSemanticDuplicate
)

// String returns the operator-facing name of the decision kind.
func (k DecisionKind) String() string {
	switch k {
	case DecisionUnique:
		return "unique"
	case DecisionExactDuplicate:
		return "duplicate-exact"
	case DecisionSemanticDuplicate:
		return "duplicate-semantic"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating one article against the dedup indices.
type Decision struct {
	Kind DecisionKind
	// Score holds the best neighbor similarity for semantic duplicates.
	// Zero for the other kinds.
	Score float32
	// DuplicateOf identifies the already-stored article a duplicate matched.
	// Zero for unique articles.
	DuplicateOf ID
}

// Neighbor is a single vector-index search hit.
type Neighbor struct {
	ArticleId ID
	Score     float32
}
