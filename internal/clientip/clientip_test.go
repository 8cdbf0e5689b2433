package clientip

import (
	"net/http"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestFromHeadersPrefersForwardedFor(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.Set("X-Real-IP", "198.51.100.2")

	if got := FromHeaders(h, zaptest.NewLogger(t)); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %s", got)
	}
}

func TestFromHeadersFallsBackToRealIP(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("X-Real-IP", "198.51.100.2")

	if got := FromHeaders(h, zaptest.NewLogger(t)); got != "198.51.100.2" {
		t.Fatalf("expected X-Real-IP value, got %s", got)
	}
}

func TestFromHeadersNoHeaders(t *testing.T) {
	t.Parallel()

	if got := FromHeaders(http.Header{}, zaptest.NewLogger(t)); got != Loopback {
		t.Fatalf("expected loopback fallback, got %s", got)
	}
}

func TestFromHeadersInvalidAddress(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("X-Forwarded-For", "not-an-ip")

	if got := FromHeaders(h, zaptest.NewLogger(t)); got != Loopback {
		t.Fatalf("invalid address should fall back to loopback, got %s", got)
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.1", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"256.1.1.1", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"1.2.3.", false},
		{"2001:0db8:85a3:0000:0000:8a2e:0370:7334", true},
		{"2001:db8::1", true},
		{"::1", true},
		{"::", true},
		{"[2001:db8::1]", true},
		{"2001::db8::1", false},
		{"1:2:3:4:5:6:7", false},
		{"1:2:3:4:5:6:7:8:9", false},
		{"2001:db8::gggg", false},
		{"", false},
		{"localhost", false},
	}

	for _, tc := range cases {
		if got := IsValid(tc.ip); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.ip, got, tc.want)
		}
	}
}
