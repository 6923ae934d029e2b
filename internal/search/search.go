// Package search resolves a multiline search-path expression into the
// set of artifact files to process and the root directory their
// relative structure is preserved against.
package search

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/harwoodcs/lacquer/internal/glob"
	"github.com/harwoodcs/lacquer/internal/lca"
	"github.com/harwoodcs/lacquer/internal/metrics"
)

// Result is the outcome of resolving a search expression.
type Result struct {
	// FilesToSign holds the matched non-directory paths in expansion
	// order. Empty when nothing matched; callers treat that as a
	// failure outcome, not an error.
	FilesToSign []string

	// RootDirectory is the directory relative paths are computed
	// against. Unset when FilesToSign is empty.
	RootDirectory string
}

// Resolver expands search expressions against a filesystem.
type Resolver struct {
	FS      billy.Filesystem
	Workdir string
	Log     zerolog.Logger
}

// Resolve expands the expression (one pattern per line, blank lines
// ignored) and determines the matched files and their root directory.
//
// The root is chosen by three rules: multiple search paths take the
// least common ancestor of all of them; a single pattern that named one
// literal file takes that file's parent directory, discarding structure;
// anything else takes the pattern's own search path.
func (r *Resolver) Resolve(expression string) (Result, error) {
	patterns := splitLines(expression)

	g, err := glob.New(r.FS, patterns, r.Workdir, glob.DefaultOptions())
	if err != nil {
		return Result{}, err
	}

	raw, err := g.Glob()
	if err != nil {
		return Result{}, err
	}

	// Lower-cased paths seen so far, for collision detection. Local to
	// this invocation.
	seen := make(map[string]struct{}, len(raw))

	files := make([]string, 0, len(raw))
	for _, path := range raw {
		// Stat, not Lstat: a symlink to a file must be classified by
		// its target, or it would be dropped as a directory here.
		info, err := r.FS.Stat(path)
		if err != nil {
			return Result{}, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}

		lower := strings.ToLower(path)
		if _, collision := seen[lower]; collision {
			// Both files stay in the result. The downstream artifact
			// store is case-insensitive, so one would overwrite the
			// other there.
			metrics.CollisionDetected()
			r.Log.Warn().
				Str("path", path).
				Msg("uploaded artifacts are case insensitive: a matched file collides with a previous match and would overwrite it")
		} else {
			seen[lower] = struct{}{}
		}

		files = append(files, path)
		metrics.FileMatched()
	}

	if len(files) == 0 {
		return Result{FilesToSign: files}, nil
	}

	searchPaths := g.SearchPaths()

	var root string
	switch {
	case len(searchPaths) > 1:
		root, err = lca.Find(searchPaths)
		if err != nil {
			return Result{}, err
		}
	case len(files) == 1 && filepath.Clean(files[0]) == filepath.Clean(searchPaths[0]):
		// A literal single-file pattern preserves no directory
		// structure.
		root = filepath.Dir(files[0])
	default:
		root = searchPaths[0]
	}

	return Result{FilesToSign: files, RootDirectory: root}, nil
}

func splitLines(expression string) []string {
	var out []string
	for _, line := range strings.Split(expression, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
