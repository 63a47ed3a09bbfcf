// Package intern holds the process-wide cache of interned identifier-like
// string constants.
package intern

import "sync"

var (
	mu    sync.Mutex
	table = map[string]string{}
)

// String returns the canonical copy of s. Identifier-like strings are
// added to the cache on first use; other strings are returned unchanged.
func String(s string) string {
	if !IsIdentifierLike(s) {
		return s
	}
	mu.Lock()
	defer mu.Unlock()
	if v, ok := table[s]; ok {
		return v
	}
	table[s] = s
	return s
}

// Interned reports whether s is already in the cache.
func Interned(s string) bool {
	mu.Lock()
	defer mu.Unlock()
	_, ok := table[s]
	return ok
}

// IsIdentifierLike reports whether s consists only of ASCII letters,
// digits and underscores.
func IsIdentifierLike(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
