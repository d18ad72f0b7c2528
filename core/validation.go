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


package core

import (
	"fmt"
	"net/url"
	"unicode/utf8"
)

// MaxBodyLength is the maximum article body length in runes after cleaning.
// Longer bodies indicate scraped boilerplate rather than article text.
const MaxBodyLength = 100_000

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - SourceKey must not be empty
//   - URL must be a well-formed absolute URL
//   - Body must be non-empty and at most MaxBodyLength runes
//   - Fingerprint must have been computed
//
// NOT validated (populated later):
//   - Topic and Insight (empty until analysis runs)
//   - Published (zero is valid, means the source did not report a date)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.SourceKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptySourceKey)
	}

	if !IsAbsoluteURL(article.URL) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidArticle, ErrInvalidURL, article.URL)
	}

	if article.Body == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyBody)
	}

	if utf8.RuneCountInString(article.Body) > MaxBodyLength {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrBodyTooLong)
	}

	if article.Fingerprint.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrMissingFingerprint)
	}

	return nil
}

// IsAbsoluteURL reports whether raw parses as an absolute http(s) URL.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
