package core

import (
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the core types. Storage backends use these through
// the wrappers in the storage package; the wire layout is an internal
// detail of the database files.
var (
	IDMUS          = idMUS{}
	FingerprintMUS = fingerprintMUS{}
	ArticleMUS     = articleMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

type fingerprintMUS struct{}

func (fingerprintMUS) Marshal(f Fingerprint, bs []byte) int {
	return copy(bs, f[:])
}

func (fingerprintMUS) Unmarshal(bs []byte) (Fingerprint, int, error) {
	var f Fingerprint
	if len(bs) < len(f) {
		return f, 0, ErrMissingFingerprint
	}
	copy(f[:], bs)
	return f, len(f), nil
}

func (fingerprintMUS) Size(f Fingerprint) int {
	return len(f)
}

type articleMUS struct{}

func (s articleMUS) Marshal(a Article, bs []byte) (n int) {
	n += IDMUS.Marshal(a.Id, bs[n:])
	n += ord.String.Marshal(a.SourceKey, bs[n:])
	n += ord.String.Marshal(a.URL, bs[n:])
	n += ord.String.Marshal(a.Title, bs[n:])
	n += ord.String.Marshal(a.Body, bs[n:])
	n += marshalTime(a.Published, bs[n:])
	n += marshalTime(a.FetchedAt, bs[n:])
	n += FingerprintMUS.Marshal(a.Fingerprint, bs[n:])
	n += ord.String.Marshal(a.Topic, bs[n:])
	n += ord.String.Marshal(a.Insight, bs[n:])
	n += marshalMetadata(a.Metadata, bs[n:])
	return n
}

func (s articleMUS) Unmarshal(bs []byte) (a Article, n int, err error) {
	var m int
	if a.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if a.SourceKey, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.URL, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.Body, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.Published, m, err = unmarshalTime(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.FetchedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.Fingerprint, m, err = FingerprintMUS.Unmarshal(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.Topic, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.Insight, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	if a.Metadata, m, err = unmarshalMetadata(bs[n:]); err != nil {
		return a, n + m, err
	}
	n += m
	return a, n, nil
}

func (s articleMUS) Size(a Article) (size int) {
	size += IDMUS.Size(a.Id)
	size += ord.String.Size(a.SourceKey)
	size += ord.String.Size(a.URL)
	size += ord.String.Size(a.Title)
	size += ord.String.Size(a.Body)
	size += sizeTime(a.Published)
	size += sizeTime(a.FetchedAt)
	size += FingerprintMUS.Size(a.Fingerprint)
	size += ord.String.Size(a.Topic)
	size += ord.String.Size(a.Insight)
	size += sizeMetadata(a.Metadata)
	return size
}

// Timestamps travel as a presence flag plus UnixMicro. The flag keeps the
// zero time (unknown publication date) distinct from 1970-01-01.
func marshalTime(t time.Time, bs []byte) (n int) {
	n += ord.Bool.Marshal(!t.IsZero(), bs)
	if !t.IsZero() {
		n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	}
	return n
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	set, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !set {
		return time.Time{}, n, err
	}
	micros, m, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return time.Time{}, n + m, err
	}
	return time.UnixMicro(micros).UTC(), n + m, nil
}

func sizeTime(t time.Time) (size int) {
	size += ord.Bool.Size(!t.IsZero())
	if !t.IsZero() {
		size += varint.Int64.Size(t.UnixMicro())
	}
	return size
}

// Metadata is written in sorted key order so byte output is deterministic.
func marshalMetadata(md map[string]string, bs []byte) (n int) {
	keys := sortedKeys(md)
	n += varint.Int.Marshal(len(keys), bs)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(md[k], bs[n:])
	}
	return n
}

func unmarshalMetadata(bs []byte) (map[string]string, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count == 0 {
		return nil, n, nil
	}
	md := make(map[string]string, count)
	for i := 0; i < count; i++ {
		k, m, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + m, err
		}
		n += m
		v, m, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + m, err
		}
		n += m
		md[k] = v
	}
	return md, n, nil
}

func sizeMetadata(md map[string]string) (size int) {
	size += varint.Int.Size(len(md))
	for k, v := range md {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return size
}

func sortedKeys(md map[string]string) []string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
