package sources

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/masterhudini/ainews/core"
)

// Normalize turns a raw adapter item into a canonical Article.
//
// Cleaning: the title and body are whitespace-normalized, the body is
// truncated at core.MaxBodyLength runes, and the fingerprint and URL-derived
// ID are computed. Items that still fail validation afterwards (empty body,
// relative URL) are rejected with ErrMalformed; the caller counts them as
// failed without aborting the rest of the source's items.
func Normalize(raw core.RawItem, fetchedAt time.Time) (*core.Article, error) {
	body := truncateRunes(core.NormalizeWhitespace(raw.Body), core.MaxBodyLength)

	article := &core.Article{
		Id:          core.IDFromURL(raw.URL),
		SourceKey:   raw.SourceKey,
		URL:         raw.URL,
		Title:       core.NormalizeWhitespace(raw.Title),
		Body:        body,
		Published:   raw.Published,
		FetchedAt:   fetchedAt,
		Fingerprint: core.NewFingerprint(body),
		Metadata:    raw.Metadata,
	}

	if err := core.ValidateArticle(article); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return article, nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
