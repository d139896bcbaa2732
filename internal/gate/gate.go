// Package gate decides which request paths require authentication.
package gate

import "strings"

// Gate holds an ordered list of excluded path patterns.
type Gate struct {
	excluded []string
}

func New(excluded []string) *Gate {
	return &Gate{excluded: append([]string(nil), excluded...)}
}

// RequiresAuth reports whether path needs an authenticated caller.
func (g *Gate) RequiresAuth(path string) bool {
	if g == nil {
		return true
	}
	return RequiresAuth(path, g.excluded)
}

// Excluded returns a copy of the configured patterns.
func (g *Gate) Excluded() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.excluded...)
}

// RequiresAuth reports whether path needs authentication given the excluded
// patterns. An empty path or an empty pattern list always requires it.
//
// A pattern matches when it equals path once both carry a trailing slash.
// A pattern ending in "*" is a loose containment check, not a glob: path must
// contain the pattern's first and second slash-separated segments and its
// final segment without the "*".
func RequiresAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}
	for _, p := range excluded {
		if p == "" {
			continue
		}
		if withSlash(path) == withSlash(p) {
			return false
		}
		if strings.HasSuffix(p, "*") && wildcardMatch(path, p) {
			return false
		}
	}
	return true
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func wildcardMatch(path, pattern string) bool {
	parts := strings.Split(pattern, "/")
	last := len(parts) - 1
	for i := 1; i <= 2 && i < last; i++ {
		if parts[i] != "" && !strings.Contains(path, parts[i]) {
			return false
		}
	}
	stem := parts[last][:len(parts[last])-1]
	return strings.Contains(path, stem)
}
