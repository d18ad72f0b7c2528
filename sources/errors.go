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

import "errors"

var (
	// ErrDuplicateKey is returned when a source key is registered twice.
	ErrDuplicateKey = errors.New("source key already registered")

	// ErrUnknownSource is returned when no adapter exists for a requested key.
	ErrUnknownSource = errors.New("unknown source")

	// ErrUnavailable marks a transient source failure (network error, 5xx,
	// rate limiting). The caller may retry the whole adapter fetch.
	ErrUnavailable = errors.New("source unavailable")

	// ErrMalformed marks a permanent failure for this run (unparsable feed,
	// 4xx response). The caller skips the source without retrying.
	ErrMalformed = errors.New("source malformed")
)
