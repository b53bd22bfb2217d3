// Package exclude decides which workspace-relative paths are skipped when a
// tree is snapshotted or copied.
package exclude

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pders01/timewarp/internal/paths"
)

var (
	globCache   = make(map[string]*regexp.Regexp)
	globCacheMu sync.Mutex
)

// Normalize converts rel to a slash-separated path without leading slashes.
func Normalize(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	return strings.TrimLeft(rel, "/")
}

// Excluded reports whether the relative path rel should be skipped.
//
// The control directory is always excluded. A pattern ending in "/" matches
// any path segment with that name. Any other pattern is a glob where only "*"
// is special; it is matched against both the base name and the full path.
func Excluded(rel string, patterns []string) bool {
	r := Normalize(rel)
	if r == "" {
		return false
	}

	segments := strings.Split(r, "/")
	if hasSegment(segments, paths.ControlDir) {
		return true
	}

	base := segments[len(segments)-1]
	for _, raw := range patterns {
		pat := strings.TrimSpace(raw)
		if pat == "" {
			continue
		}
		if strings.HasSuffix(pat, "/") {
			if hasSegment(segments, strings.TrimSuffix(pat, "/")) {
				return true
			}
			continue
		}
		re := compileGlob(pat)
		if re.MatchString(base) || re.MatchString(r) {
			return true
		}
	}
	return false
}

// Filter binds a pattern set for repeated use during a walk.
type Filter struct {
	patterns []string
}

// New returns a Filter over patterns.
func New(patterns []string) *Filter {
	return &Filter{patterns: append([]string(nil), patterns...)}
}

// Match reports whether rel is excluded. A nil Filter only excludes the
// control directory.
func (f *Filter) Match(rel string) bool {
	if f == nil {
		return Excluded(rel, nil)
	}
	return Excluded(rel, f.patterns)
}

// Patterns returns a copy of the bound pattern set.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}

func hasSegment(segments []string, name string) bool {
	for _, s := range segments {
		if s == name {
			return true
		}
	}
	return false
}

func compileGlob(pat string) *regexp.Regexp {
	globCacheMu.Lock()
	defer globCacheMu.Unlock()

	if re, ok := globCache[pat]; ok {
		return re
	}
	parts := strings.Split(pat, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
	globCache[pat] = re
	return re
}
