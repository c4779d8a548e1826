package patterns

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/temirov/dumpfiles/internal/utils"
)

// Filter decides whether a traversal entry is excluded. Excluded directories are not descended into.
type Filter interface {
	Excluded(absolutePath string, isDirectory bool) bool
}

// SetFilter excludes entries found in an ExclusionSet directly or through an ancestor.
type SetFilter struct {
	set *ExclusionSet
}

// NewSetFilter wraps an exclusion set as a traversal filter.
func NewSetFilter(set *ExclusionSet) *SetFilter {
	return &SetFilter{set: set}
}

// Excluded implements Filter.
func (filter *SetFilter) Excluded(absolutePath string, isDirectory bool) bool {
	return filter.set.Excludes(absolutePath)
}

// GitignoreFilter evaluates raw ignore lines with gitignore semantics, including negation,
// against paths relative to the root. Protected paths stay excluded regardless of the rules.
type GitignoreFilter struct {
	root      string
	matcher   *ignore.GitIgnore
	protected *ExclusionSet
}

// NewGitignoreFilter compiles the raw lines for root. protected usually holds the output artifact.
func NewGitignoreFilter(root string, lines []string, protected *ExclusionSet) *GitignoreFilter {
	return &GitignoreFilter{
		root:      filepath.Clean(root),
		matcher:   ignore.CompileIgnoreLines(lines...),
		protected: protected,
	}
}

// Excluded implements Filter.
func (filter *GitignoreFilter) Excluded(absolutePath string, isDirectory bool) bool {
	if filter.protected.Excludes(absolutePath) {
		return true
	}
	relativePath := utils.RelativePathOrSelf(absolutePath, filter.root)
	if relativePath == "." || filepath.IsAbs(relativePath) || strings.HasPrefix(relativePath, "../") {
		return false
	}
	if isDirectory {
		relativePath += "/"
	}
	return filter.matcher.MatchesPath(relativePath)
}
