// Package glob expands glob-style search patterns against a
// billy.Filesystem. It supports globstar segments, exclusion patterns,
// symlink-following traversal, and reports the literal search path each
// pattern was rooted at.
package glob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// maxLinkDepth bounds symlink chain resolution.
const maxLinkDepth = 40

// Options control how patterns are expanded against the filesystem.
type Options struct {
	// FollowSymbolicLinks descends into directories reached through
	// symbolic links. Without it, links are reported but never traversed.
	FollowSymbolicLinks bool

	// ImplicitDescendants treats a pattern that matches a directory as if
	// it also matched everything below that directory.
	ImplicitDescendants bool

	// OmitBrokenSymbolicLinks silently skips links whose target does not
	// exist instead of failing the expansion.
	OmitBrokenSymbolicLinks bool
}

// DefaultOptions is the configuration artifact search uses: symlinks are
// followed, directory patterns include their descendants, and dangling
// links are skipped silently.
func DefaultOptions() Options {
	return Options{
		FollowSymbolicLinks:     true,
		ImplicitDescendants:     true,
		OmitBrokenSymbolicLinks: true,
	}
}

// Globber expands a fixed set of parsed patterns against a filesystem.
type Globber struct {
	fs      billy.Filesystem
	opts    Options
	include []*Pattern
	exclude []*Pattern
	roots   []string
}

// New parses the given pattern lines and returns a Globber over fs.
// Relative patterns are rooted against workdir.
func New(fs billy.Filesystem, patterns []string, workdir string, opts Options) (*Globber, error) {
	g := &Globber{fs: fs, opts: opts}

	for _, raw := range patterns {
		p, err := Parse(raw, workdir)
		if err != nil {
			return nil, err
		}

		variants := []*Pattern{p}
		if opts.ImplicitDescendants && !p.endsWithGlobstar() {
			variants = append(variants, p.withDescendants())
		}

		if p.Negate() {
			g.exclude = append(g.exclude, variants...)
			continue
		}
		g.include = append(g.include, variants...)
		g.addRoot(p.SearchPath())
	}

	return g, nil
}

// SearchPaths returns the distinct search paths of the include patterns,
// in original order. A path that duplicates or descends from an earlier
// one is omitted.
func (g *Globber) SearchPaths() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Glob walks the filesystem below every search path and returns the
// paths matching at least one include pattern and no exclude pattern, in
// traversal order. Directories that match are included; callers decide
// what to do with them.
func (g *Globber) Glob() ([]string, error) {
	st := &walkState{
		seen:    make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}

	for _, root := range g.roots {
		info, err := g.fs.Lstat(root)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("lstat %s: %w", root, err)
		}
		if err := g.visit(root, info, st); err != nil {
			return nil, err
		}
	}

	return st.matches, nil
}

type walkState struct {
	seen    map[string]struct{} // paths already reported
	visited map[string]struct{} // canonical directories already descended
	matches []string
}

func (g *Globber) visit(path string, info os.FileInfo, st *walkState) error {
	canonical := path

	if info.Mode()&os.ModeSymlink != 0 {
		if !g.opts.FollowSymbolicLinks {
			g.report(path, st)
			return nil
		}

		resolved, err := g.fs.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && g.opts.OmitBrokenSymbolicLinks {
				return nil
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}
		info = resolved

		if info.IsDir() {
			canonical, err = g.resolveLink(path)
			if err != nil {
				return err
			}
		}
	}

	g.report(path, st)

	if !info.IsDir() {
		return nil
	}
	if _, ok := st.visited[canonical]; ok {
		return nil
	}
	st.visited[canonical] = struct{}{}

	if !g.shouldDescend(path) {
		return nil
	}

	entries, err := g.fs.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", path, err)
	}
	for _, entry := range entries {
		child := g.fs.Join(path, entry.Name())
		if err := g.visit(child, entry, st); err != nil {
			return err
		}
	}
	return nil
}

func (g *Globber) report(path string, st *walkState) {
	if _, ok := st.seen[path]; ok {
		return
	}
	parts := splitPath(path)
	if !g.matched(parts) {
		return
	}
	st.seen[path] = struct{}{}
	st.matches = append(st.matches, path)
}

func (g *Globber) matched(parts []string) bool {
	included := false
	for _, p := range g.include {
		if p.matchParts(parts) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range g.exclude {
		if p.matchParts(parts) {
			return false
		}
	}
	return true
}

func (g *Globber) shouldDescend(dir string) bool {
	parts := splitPath(dir)
	for _, p := range g.include {
		if p.couldMatchBelow(parts) {
			return true
		}
	}
	return false
}

// resolveLink follows a symlink chain to its final target path.
func (g *Globber) resolveLink(path string) (string, error) {
	current := path
	for i := 0; i < maxLinkDepth; i++ {
		info, err := g.fs.Lstat(current)
		if err != nil {
			return "", fmt.Errorf("lstat %s: %w", current, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}
		target, err := g.fs.Readlink(current)
		if err != nil {
			return "", fmt.Errorf("readlink %s: %w", current, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = target
	}
	return "", fmt.Errorf("too many levels of symbolic links: %s", path)
}

func (g *Globber) addRoot(root string) {
	for _, existing := range g.roots {
		if existing == root || isAncestor(existing, root) {
			return
		}
	}
	g.roots = append(g.roots, root)
}

func isAncestor(dir, path string) bool {
	sep := string(filepath.Separator)
	if dir == sep {
		return path != sep && strings.HasPrefix(path, sep)
	}
	return strings.HasPrefix(path, dir+sep)
}

func splitPath(path string) []string {
	return strings.Split(filepath.Clean(path), string(filepath.Separator))
}
