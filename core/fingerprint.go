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
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// NormalizeWhitespace collapses runs of whitespace into single spaces and
// trims leading and trailing whitespace. Case is preserved so that the
// fingerprint distinguishes genuinely different text.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NewFingerprint computes the content fingerprint over normalized body text.
// The same body text always yields the same fingerprint, regardless of how
// the surrounding record was assembled.
func NewFingerprint(body string) Fingerprint {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write([]byte(NormalizeWhitespace(body)))
	var f Fingerprint
	copy(f[:], h.Sum(nil))
	return f
}
