package sources

import (
	"context"

	"github.com/masterhudini/ainews/core"
)

// Adapter fetches raw items from one external origin.
//
// Implementations must be safe to call once per orchestration pass and must
// not keep state between calls beyond their own pagination cursor. Network
// failures are reported as ErrUnavailable (transient, the caller may retry
// the whole fetch) or ErrMalformed (permanent for this run, the caller
// skips the source).
type Adapter interface {
	// Key returns the stable registry key for this source, e.g. "techcrunch".
	Key() string

	// Name returns the human-readable source name, e.g. "TechCrunch AI".
	Name() string

	// Fetch retrieves up to limit raw items from the source.
	// A limit <= 0 means the adapter's own default.
	// Fetch performs network I/O and honors ctx cancellation.
	Fetch(ctx context.Context, limit int) ([]core.RawItem, error)
}
