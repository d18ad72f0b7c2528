package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/masterhudini/ainews/core"
)

// Key prefixes for different data types
const (
	articleRecordPrefix = "artrec"
	articleDatePrefix   = "artrecd"
	articleURLPrefix    = "artrecu"
	fingerprintPrefix   = "fprec"
	vectorPrefix        = "vecrec"
)

// makeArticleKey generates a key for an article by ID.
func makeArticleKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", articleRecordPrefix, id))
}

// makeArticleURLKey generates a key for the URL uniqueness index.
func makeArticleURLKey(url string) []byte {
	return []byte(articleURLPrefix + ":" + url)
}

// makeArticleDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeArticleDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := articleDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialArticleDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialArticleDateKey(timestamp time.Time) []byte {
	prefix := articleDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeFingerprintKey generates a key for the fingerprint index.
// The raw digest bytes follow the prefix directly.
func makeFingerprintKey(fp core.Fingerprint) []byte {
	prefix := fingerprintPrefix + ":"
	buf := make([]byte, len(prefix)+len(fp))
	offset := copy(buf, []byte(prefix))
	copy(buf[offset:], fp[:])
	return buf
}

// makeVectorKey generates a key for an article's embedding vector.
func makeVectorKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", vectorPrefix, id))
}
