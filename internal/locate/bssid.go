// Package locate turns access-point queries into a normalized location
// result set: it canonicalizes and deduplicates BSSIDs, drives the upstream
// protocol one access point at a time, aggregates the decoded devices, and
// derives a weighted-centroid position estimate from signal readings.
package locate

import (
	"fmt"
	"strings"
)

// InvalidBSSIDError reports caller input that does not canonicalize to a
// 6-octet MAC-like identifier.
type InvalidBSSIDError struct {
	Input string
}

func (e InvalidBSSIDError) Error() string {
	return fmt.Sprintf("locate: invalid bssid %q", e.Input)
}

// CanonicalBSSID normalizes a BSSID to six colon-separated lowercase hex
// octet pairs. Any separator style is accepted; anything that does not strip
// down to exactly 12 hex digits is rejected.
func CanonicalBSSID(s string) (string, error) {
	canon, ok := canonicalBSSID(s)
	if !ok {
		return "", InvalidBSSIDError{Input: s}
	}
	return canon, nil
}

// canonicalBSSID is the best-effort variant used while merging upstream
// responses, where a malformed identifier is noise to drop rather than a
// request-fatal input error.
func canonicalBSSID(s string) (string, bool) {
	hex := make([]byte, 0, 12)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
			hex = append(hex, c)
		case c >= 'A' && c <= 'F':
			hex = append(hex, c+'a'-'A')
		}
	}
	if len(hex) != 12 {
		return "", false
	}
	var b strings.Builder
	b.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.Write(hex[i : i+2])
	}
	return b.String(), true
}
