package cache

import (
	"strings"
	"testing"
)

func TestBuildFingerprintDeterministic(t *testing.T) {
	t.Parallel()

	a := BuildFingerprint("analyze", "en", "some transcript", 0)
	b := BuildFingerprint("analyze", "en", "some transcript", 0)

	if a != b {
		t.Fatalf("identical inputs must produce identical fingerprints: %v vs %v", a, b)
	}
}

func TestBuildFingerprintKeyFormat(t *testing.T) {
	t.Parallel()

	fp := BuildFingerprint("generate-batch", "en", "t", 10)
	key := fp.String()

	if !strings.HasPrefix(key, "ai:generate-batch:") {
		t.Fatalf("unexpected key format: %s", key)
	}
	hash := strings.TrimPrefix(key, "ai:generate-batch:")
	if len(hash) != 64 {
		t.Fatalf("expected 64 hex chars of sha256, got %d: %s", len(hash), hash)
	}
}

func TestBuildFingerprintSensitivity(t *testing.T) {
	t.Parallel()

	base := BuildFingerprint("generate-batch", "en", "transcript", 10)

	variants := []Fingerprint{
		BuildFingerprint("generate-mcq-batch", "en", "transcript", 10),
		BuildFingerprint("generate-batch", "fr", "transcript", 10),
		BuildFingerprint("generate-batch", "en", "other transcript", 10),
		BuildFingerprint("generate-batch", "en", "transcript", 20),
	}

	for i, v := range variants {
		if v.Hash == base.Hash {
			t.Errorf("variant %d should change the hash", i)
		}
	}
}
