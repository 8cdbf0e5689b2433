// Package clientip resolves a best-effort client identifier from
// proxy-forwarded headers.
package clientip

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Loopback is substituted whenever no usable client address is present.
// Malformed client metadata must never abort a legitimate request.
const Loopback = "127.0.0.1"

// FromHeaders extracts the client IP, preferring the first entry of
// X-Forwarded-For, then X-Real-IP. Addresses that fail syntactic
// validation are logged and replaced with the loopback sentinel.
func FromHeaders(h http.Header, logger *zap.Logger) string {
	var ip string

	if forwardedFor := h.Get("X-Forwarded-For"); forwardedFor != "" {
		// May contain a comma-separated chain; the first hop is the client.
		ip = strings.TrimSpace(strings.SplitN(forwardedFor, ",", 2)[0])
	} else if realIP := h.Get("X-Real-IP"); realIP != "" {
		ip = strings.TrimSpace(realIP)
	}

	if ip == "" {
		return Loopback
	}

	if !IsValid(ip) {
		if logger != nil {
			logger.Warn("invalid client ip in proxy headers",
				zap.String("raw_ip", ip),
			)
		}
		return Loopback
	}

	return ip
}

// IsValid reports whether ip is a syntactically valid IPv4 or IPv6
// address. IPv6 addresses may use the :: compression form at most once.
func IsValid(ip string) bool {
	// IPv6 addresses may arrive bracketed.
	ip = strings.TrimPrefix(ip, "[")
	ip = strings.TrimSuffix(ip, "]")

	if strings.Contains(ip, ".") {
		return isValidIPv4(ip)
	}
	if strings.Contains(ip, ":") {
		return isValidIPv6(ip)
	}
	return false
}

func isValidIPv4(ip string) bool {
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return false
	}
	for _, octet := range octets {
		if octet == "" || len(octet) > 3 {
			return false
		}
		n, err := strconv.Atoi(octet)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

func isValidIPv6(ip string) bool {
	if strings.Count(ip, "::") > 1 {
		return false
	}
	compressed := strings.Contains(ip, "::")

	segments := strings.Split(ip, ":")

	actual := 0
	for _, segment := range segments {
		if segment != "" {
			actual++
		}
	}

	if !compressed && actual != 8 {
		return false
	}
	if compressed && actual > 7 {
		return false
	}

	for _, segment := range segments {
		if segment == "" {
			// Empty segments arise from the :: compression.
			continue
		}
		if !isHexQuad(segment) {
			return false
		}
	}
	return true
}

func isHexQuad(s string) bool {
	if len(s) < 1 || len(s) > 4 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
