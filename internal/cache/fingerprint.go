package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint identifies the semantically relevant subset of a dispatch:
// operation kind, language, transcript (or its sample), and item count.
// Identical logical requests from different callers collapse to the same
// fingerprint.
type Fingerprint struct {
	Operation string
	Hash      string
}

// String renders the cache store key: ai:<operation>:<hash>.
func (f Fingerprint) String() string {
	return fmt.Sprintf("ai:%s:%s", f.Operation, f.Hash)
}

// BuildFingerprint normalizes the request fields into a stable string and
// reduces it with SHA-256. transcript must already be the sampled form when
// the large-transcript policy applied, so partial and full dispatches never
// share an entry.
func BuildFingerprint(operation, language, transcript string, count int) Fingerprint {
	normalized := fmt.Sprintf("op:%s|lang:%s|count:%d|transcript:%s",
		strings.TrimSpace(operation),
		strings.TrimSpace(language),
		count,
		transcript,
	)

	sum := sha256.Sum256([]byte(normalized))

	return Fingerprint{
		Operation: strings.TrimSpace(operation),
		Hash:      hex.EncodeToString(sum[:]),
	}
}
