package store

import (
	"fmt"
	"strings"
)

// Split validates a path and returns its segments.
// Paths are slash separated, without leading or trailing slashes or empty segments.
func Split(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" || strings.ContainsAny(s, ".#$[]") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

// Join joins segments into a path
func Join(segs ...string) string {
	return strings.Join(segs, "/")
}

// IsAncestor reports whether a is a strict ancestor of b
func IsAncestor(a, b string) bool {
	return len(b) > len(a) && strings.HasPrefix(b, a) && b[len(a)] == '/'
}

// Related reports whether a change at one path is visible at the other:
// they are equal or one contains the other
func Related(a, b string) bool {
	return a == b || IsAncestor(a, b) || IsAncestor(b, a)
}

// CheckOverlap rejects updates whose paths overlap each other
func CheckOverlap(paths []string) error {
	for i := range paths {
		for j := i + 1; j < len(paths); j++ {
			if Related(paths[i], paths[j]) {
				return fmt.Errorf("%w: overlapping paths %q and %q", ErrInvalidPath, paths[i], paths[j])
			}
		}
	}
	return nil
}
