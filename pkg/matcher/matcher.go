// Package matcher decides whether a player's terminal input satisfies a step pattern.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of compiled patterns kept in memory.
const DefaultCacheSize = 256

// Match reports whether the trimmed input matches pattern.
// Matching is case-sensitive; anchoring is whatever the pattern author wrote.
func Match(input string, pattern *regexp.Regexp) bool {
	if pattern == nil {
		return false
	}
	return pattern.MatchString(Normalize(input))
}

// Normalize trims the surrounding whitespace a terminal leaves around a command.
func Normalize(input string) string {
	return strings.TrimSpace(input)
}

// Compile parses a step pattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Matcher matches input against pattern strings, caching compiled expressions.
// Safe for concurrent use.
type Matcher struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// New creates a Matcher with a cache of the given size (DefaultCacheSize if size <= 0).
func New(size int) *Matcher {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// Only returned for a non-positive size, which is excluded above.
		panic(err)
	}
	return &Matcher{cache: cache}
}

// Match compiles (or reuses) pattern and matches input against it.
// The error is only non-nil for an invalid pattern, which is a content defect.
func (m *Matcher) Match(input, pattern string) (bool, error) {
	re, err := m.compile(pattern)
	if err != nil {
		return false, err
	}
	return Match(input, re), nil
}

func (m *Matcher) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := m.cache.Get(pattern); ok {
		return re, nil
	}
	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	m.cache.Add(pattern, re)
	return re, nil
}

// Len returns the number of cached patterns.
func (m *Matcher) Len() int {
	return m.cache.Len()
}
