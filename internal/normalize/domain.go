// Package normalize canonicalizes site references so domain comparisons are
// consistent regardless of how a domain was typed in source data.
package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDomain is returned when a site reference cannot be reduced to a
// plausible host name. Callers reject the row rather than guessing.
var ErrInvalidDomain = errors.New("invalid domain")

// Domain canonicalizes a raw site reference: scheme and "www." prefix are
// stripped, any path/query/fragment is dropped, and the host is lowercased.
// The function is idempotent: Domain(Domain(x)) == Domain(x).
func Domain(raw string) (string, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidDomain)
	}

	if idx := strings.Index(s, "://"); idx != -1 {
		s = s[idx+3:]
	}
	s = strings.TrimPrefix(s, "www.")

	// Drop everything after the host: path, query, fragment, port.
	if idx := strings.IndexAny(s, "/?#"); idx != -1 {
		s = s[:idx]
	}
	if idx := strings.Index(s, ":"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSuffix(s, ".")

	if s == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidDomain, raw)
	}
	if !strings.Contains(s, ".") || strings.ContainsAny(s, " \t@") {
		return "", fmt.Errorf("%w: %q is not a domain", ErrInvalidDomain, raw)
	}
	return s, nil
}

// Email canonicalizes an email address for exact-match lookup.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// DomainSet normalizes every input and returns the deduplicated set of
// normalized domains together with a mapping from each normalized domain to
// the input indexes that produced it. Inputs that fail normalization are
// reported in invalid by index and excluded from the set.
func DomainSet(raws []string) (domains []string, byDomain map[string][]int, invalid []int) {
	byDomain = make(map[string][]int, len(raws))
	for i, raw := range raws {
		d, err := Domain(raw)
		if err != nil {
			invalid = append(invalid, i)
			continue
		}
		if _, seen := byDomain[d]; !seen {
			domains = append(domains, d)
		}
		byDomain[d] = append(byDomain[d], i)
	}
	return domains, byDomain, invalid
}
