package lca

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrTooFewPaths is returned when fewer than two paths are supplied.
var ErrTooFewPaths = errors.New("at least two paths are required")

// Find returns the least common ancestor of the given paths: the deepest
// path that is a segment-wise prefix of every input. Comparison is per
// segment, not per character, so /foo/ba and /foo/bar share /foo rather
// than /foo/ba.
func Find(paths []string) (string, error) {
	if len(paths) < 2 {
		return "", ErrTooFewPaths
	}

	sep := string(filepath.Separator)

	// Split each normalized path into segments, tracking the smallest
	// segment count as the upper bound on comparison depth.
	split := make([][]string, len(paths))
	smallest := -1
	for i, p := range paths {
		split[i] = strings.Split(filepath.Clean(p), sep)
		if smallest == -1 || len(split[i]) < smallest {
			smallest = len(split[i])
		}
	}

	var common []string
	if strings.HasPrefix(paths[0], sep) {
		// Seed with the separator so absolute inputs join back to an
		// absolute result.
		common = append(common, sep)
	}

	for i := 0; i < smallest; i++ {
		segment := split[0][i]
		allMatch := true
		for _, s := range split[1:] {
			if s[i] != segment {
				allMatch = false
				break
			}
		}
		if !allMatch {
			break
		}
		common = append(common, segment)
	}

	return filepath.Join(common...), nil
}
