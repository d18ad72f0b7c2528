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

import "errors"

// Domain validation errors
var (
	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrEmptyBody indicates the article body is empty after cleaning.
	ErrEmptyBody = errors.New("body cannot be empty")

	// ErrBodyTooLong indicates the article body exceeds the maximum length.
	ErrBodyTooLong = errors.New("body exceeds maximum length")

	// ErrEmptySourceKey indicates the article has no source key.
	ErrEmptySourceKey = errors.New("source key cannot be empty")

	// ErrInvalidURL indicates the article URL is not a well-formed absolute URL.
	ErrInvalidURL = errors.New("url must be absolute")

	// ErrMissingFingerprint indicates the fingerprint was never computed.
	ErrMissingFingerprint = errors.New("fingerprint not computed")
)
