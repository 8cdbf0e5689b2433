package study

import (
	"strings"
	"testing"
)

func TestSampleTranscriptIdentityUnderThreshold(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("a", 100)

	got, partial := SampleTranscript(in, 100)
	if partial || got != in {
		t.Fatalf("transcript at the threshold must pass through, partial=%v", partial)
	}

	got, partial = SampleTranscript("short", 100)
	if partial || got != "short" {
		t.Fatalf("short transcript must pass through, partial=%v", partial)
	}
}

func TestSampleTranscriptOverThreshold(t *testing.T) {
	t.Parallel()

	// Distinct regions so the kept slices are attributable.
	in := strings.Repeat("B", 4000) + strings.Repeat("M", 4000) + strings.Repeat("E", 4000)
	threshold := 3000

	got, partial := SampleTranscript(in, threshold)
	if !partial {
		t.Fatalf("oversized transcript must be sampled")
	}
	if len(got) > threshold {
		t.Fatalf("sample length %d exceeds threshold %d", len(got), threshold)
	}
	if len(got) >= len(in) {
		t.Fatalf("sample must be strictly shorter than the original")
	}

	parts := strings.Split(got, ElisionMarker)
	if len(parts) != 3 {
		t.Fatalf("expected 3 slices joined by the marker, got %d", len(parts))
	}

	per := (threshold - 2*len(ElisionMarker)) / 3
	if parts[0] != in[:per] {
		t.Fatalf("first slice must come from the beginning")
	}
	if parts[2] != in[len(in)-per:] {
		t.Fatalf("last slice must come from the end")
	}
	if !strings.Contains(parts[1], "M") {
		t.Fatalf("middle slice should cover the center: %q", parts[1][:20])
	}
}

func TestSampleTranscriptDistinctFromFull(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("x", 200)

	got, partial := SampleTranscript(in, 150)
	if !partial {
		t.Fatalf("expected sampling")
	}
	if got == in {
		t.Fatalf("sampled form must differ from the full transcript")
	}
}
