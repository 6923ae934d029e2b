package glob

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Pattern is a single parsed search pattern. Patterns are rooted against
// a working directory and cleaned at parse time, so matching always
// operates on absolute, normalized paths.
type Pattern struct {
	raw        string
	negate     bool
	segments   []string
	searchPath string
}

// Parse parses one pattern line. A leading "!" marks the pattern as an
// exclusion. Relative patterns are rooted against workdir.
func Parse(raw, workdir string) (*Pattern, error) {
	p := &Pattern{raw: raw}

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "!") {
		p.negate = true
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "!"))
	}
	if trimmed == "" {
		return nil, fmt.Errorf("empty search pattern %q", raw)
	}

	if filepath.IsAbs(trimmed) {
		trimmed = filepath.Clean(trimmed)
	} else {
		trimmed = filepath.Join(workdir, trimmed)
	}

	p.segments = strings.Split(trimmed, string(filepath.Separator))

	// Validate wildcard segments up front so a malformed pattern fails
	// at parse time instead of mid-traversal.
	for _, seg := range p.segments {
		if seg == "**" {
			continue
		}
		if _, err := path.Match(seg, "probe"); err != nil {
			return nil, fmt.Errorf("search pattern %q: %w", raw, err)
		}
	}

	p.searchPath = searchPathOf(p.segments)
	return p, nil
}

// Negate reports whether the pattern is an exclusion.
func (p *Pattern) Negate() bool { return p.negate }

// SearchPath returns the literal path prefix preceding the first
// wildcard segment. For a pattern without wildcards this is the whole
// pattern.
func (p *Pattern) SearchPath() string { return p.searchPath }

func (p *Pattern) String() string { return p.raw }

// Match reports whether the cleaned absolute path matches the pattern.
func (p *Pattern) Match(target string) bool {
	parts := strings.Split(filepath.Clean(target), string(filepath.Separator))
	return p.matchParts(parts)
}

func (p *Pattern) matchParts(parts []string) bool {
	return matchSegments(p.segments, parts)
}

// couldMatchBelow reports whether some descendant of the directory with
// the given segments could still match. Used to prune traversal.
func (p *Pattern) couldMatchBelow(parts []string) bool {
	return partialMatch(p.segments, parts)
}

// withDescendants returns a copy of the pattern extended with a trailing
// globstar, used for implicit-descendant expansion of directory matches.
func (p *Pattern) withDescendants() *Pattern {
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	segments = append(segments, "**")
	return &Pattern{
		raw:        p.raw,
		negate:     p.negate,
		segments:   segments,
		searchPath: p.searchPath,
	}
}

func (p *Pattern) endsWithGlobstar() bool {
	return len(p.segments) > 0 && p.segments[len(p.segments)-1] == "**"
}

// matchSegments matches pattern segments against path segments. "**"
// matches zero or more whole segments; every other segment is matched
// with path.Match.
func matchSegments(pattern, parts []string) bool {
	if len(pattern) == 0 {
		return len(parts) == 0
	}
	if pattern[0] == "**" {
		if matchSegments(pattern[1:], parts) {
			return true
		}
		if len(parts) > 0 && matchSegments(pattern, parts[1:]) {
			return true
		}
		return false
	}
	if len(parts) == 0 {
		return false
	}
	if ok, err := path.Match(pattern[0], parts[0]); err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], parts[1:])
}

// partialMatch reports whether the path segments are a valid prefix of
// something the pattern could match.
func partialMatch(pattern, parts []string) bool {
	if len(parts) == 0 {
		return true
	}
	if len(pattern) == 0 {
		return false
	}
	if pattern[0] == "**" {
		return true
	}
	if ok, err := path.Match(pattern[0], parts[0]); err != nil || !ok {
		return false
	}
	return partialMatch(pattern[1:], parts[1:])
}

// searchPathOf joins the literal segments preceding the first wildcard.
func searchPathOf(segments []string) string {
	sep := string(filepath.Separator)

	literal := make([]string, 0, len(segments))
	for _, seg := range segments {
		if hasWildcard(seg) {
			break
		}
		literal = append(literal, seg)
	}

	if len(literal) > 0 && literal[0] == "" {
		// Leading empty segment came from the root separator.
		return sep + strings.Join(literal[1:], sep)
	}
	return strings.Join(literal, sep)
}

func hasWildcard(segment string) bool {
	return strings.ContainsAny(segment, "*?[")
}
