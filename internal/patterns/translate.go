// Package patterns translates gitignore-style lines into globs, expands them against the filesystem
// and decides which traversal entries are excluded.
package patterns

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	negationPrefix      = "!"
	rootAnchor          = "/"
	anyDepthPrefix      = "**/"
	descendantsSuffix   = "/**"
	doubleWildcardToken = "**"
	wildcardCharacters  = "*?["
)

// Pattern is one translated ignore rule.
type Pattern struct {
	// Raw is the line the pattern was translated from.
	Raw string
	// Glob is the translated expression; negated globs keep their leading "!".
	Glob string
	// Negated reports a leading "!" in the source line.
	Negated bool
	// DirectoryOnly reports a trailing "/" in the source line.
	DirectoryOnly bool
	// Anchored reports a leading "/" in the source line.
	Anchored bool
	// HasWildcard reports glob meta characters in the source line.
	HasWildcard bool
}

// Translate converts one trimmed, non-comment ignore line into a Pattern.
// Malformed input never fails here; it yields a glob that matches nothing.
func Translate(line string) Pattern {
	if strings.HasPrefix(line, negationPrefix) {
		translated := Translate(strings.TrimPrefix(line, negationPrefix))
		translated.Raw = line
		translated.Negated = true
		if translated.Glob != "" {
			translated.Glob = negationPrefix + translated.Glob
		}
		return translated
	}

	if strings.HasSuffix(line, rootAnchor) {
		translated := Translate(strings.TrimSuffix(line, rootAnchor))
		translated.Raw = line
		translated.DirectoryOnly = true
		if translated.Glob != "" {
			translated.Glob += descendantsSuffix
		}
		return translated
	}

	pattern := Pattern{
		Raw:         line,
		Anchored:    strings.HasPrefix(line, rootAnchor),
		HasWildcard: strings.ContainsAny(line, wildcardCharacters),
	}
	if strings.Trim(line, rootAnchor) == "" {
		return pattern
	}

	if strings.HasPrefix(line, "*") && !strings.Contains(line, rootAnchor) {
		pattern.Glob = anyDepthPrefix + line
		return pattern
	}

	glob := strings.Join(strings.Split(line, doubleWildcardToken), doubleWildcardToken)
	if !pattern.Anchored && !strings.HasPrefix(glob, "*") {
		glob = anyDepthPrefix + glob
	}
	pattern.Glob = glob
	return pattern
}

// RootRelativeGlob returns the glob evaluated against paths relative to the scan root:
// without the negation marker and without the root anchor.
func (pattern Pattern) RootRelativeGlob() string {
	glob := strings.TrimPrefix(pattern.Glob, negationPrefix)
	return strings.TrimLeft(glob, rootAnchor)
}

// expansionGlob is the glob expanded against the filesystem. Directory-only patterns expand the
// directory name alone; their descendants are covered by ancestor exclusion.
func (pattern Pattern) expansionGlob() string {
	glob := pattern.RootRelativeGlob()
	if pattern.DirectoryOnly {
		glob = strings.TrimSuffix(glob, descendantsSuffix)
	}
	return glob
}

// Matches reports whether the forward-slash path relative to the scan root matches the pattern's glob.
// Negation is not applied; callers decide what a negated match means.
func (pattern Pattern) Matches(relativePath string) bool {
	glob := pattern.RootRelativeGlob()
	if glob == "" {
		return false
	}
	matched, matchError := doublestar.Match(glob, strings.TrimLeft(relativePath, rootAnchor))
	return matchError == nil && matched
}
