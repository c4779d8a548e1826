package patterns

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/temirov/dumpfiles/internal/utils"
)

const (
	errorEmptyRootMessage   = "exclusion root path is empty"
	errorRelativeRootFormat = "exclusion root %s is not absolute"

	warningInvalidPatternMessage = "Invalid glob pattern, skipping"
	warningExpansionMessage      = "Error expanding glob pattern, continuing"
	warningEmptyPatternMessage   = "Pattern translates to an empty glob, skipping"
)

// ExclusionOptions describes one exclusion set build.
type ExclusionOptions struct {
	// Root is the absolute, canonical scan root.
	Root string
	// Patterns are applied in order; negated patterns re-include what earlier patterns excluded.
	Patterns []Pattern
	// ProtectedPaths are always excluded and never re-included, such as the output artifact.
	// Relative paths are joined with Root.
	ProtectedPaths []string
	Logger         *zap.Logger
}

// ExclusionSet is an immutable set of absolute paths excluded from traversal.
type ExclusionSet struct {
	paths map[string]struct{}
}

// BuildExclusionSet expands every pattern against the filesystem below Root.
// Pattern failures are logged and skipped; only invalid options return an error.
func BuildExclusionSet(options ExclusionOptions) (*ExclusionSet, error) {
	if options.Root == "" {
		return nil, errors.New(errorEmptyRootMessage)
	}
	if !filepath.IsAbs(options.Root) {
		return nil, fmt.Errorf(errorRelativeRootFormat, options.Root)
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	set := &ExclusionSet{paths: make(map[string]struct{})}
	protected := make(map[string]struct{}, len(options.ProtectedPaths))
	for _, protectedPath := range options.ProtectedPaths {
		if protectedPath == "" {
			continue
		}
		if !filepath.IsAbs(protectedPath) {
			protectedPath = filepath.Join(options.Root, protectedPath)
		}
		canonical := utils.CanonicalPath(protectedPath)
		protected[canonical] = struct{}{}
		set.paths[canonical] = struct{}{}
		logger.Debug("Added protected path to exclusion set", zap.String("path", canonical))
	}

	rootFileSystem := os.DirFS(options.Root)
	for _, pattern := range options.Patterns {
		glob := pattern.expansionGlob()
		if glob == "" {
			logger.Warn(warningEmptyPatternMessage, zap.String("pattern", pattern.Raw))
			continue
		}
		if !doublestar.ValidatePattern(glob) {
			logger.Warn(warningInvalidPatternMessage, zap.String("pattern", pattern.Raw), zap.String("glob", glob))
			continue
		}
		logger.Debug("Checking glob pattern",
			zap.String("pattern", pattern.Raw),
			zap.String("glob", glob),
			zap.Bool("anchored", pattern.Anchored),
			zap.Bool("wildcard", pattern.HasWildcard),
		)

		walkError := doublestar.GlobWalk(rootFileSystem, glob, func(matchedPath string, directoryEntry fs.DirEntry) error {
			if pattern.DirectoryOnly && !directoryEntry.IsDir() {
				return nil
			}
			absolutePath := filepath.Join(options.Root, filepath.FromSlash(matchedPath))
			if pattern.Negated {
				if _, isProtected := protected[absolutePath]; isProtected {
					return nil
				}
				delete(set.paths, absolutePath)
				logger.Debug("Re-included by negated pattern", zap.String("path", absolutePath))
				return nil
			}
			set.paths[absolutePath] = struct{}{}
			logger.Debug("Adding to exclusion set", zap.String("path", absolutePath))
			return nil
		})
		if walkError != nil {
			logger.Warn(warningExpansionMessage, zap.String("pattern", pattern.Raw), zap.Error(walkError))
		}
	}

	return set, nil
}

// Contains reports direct membership of the cleaned absolute path.
func (set *ExclusionSet) Contains(absolutePath string) bool {
	if set == nil {
		return false
	}
	_, exists := set.paths[filepath.Clean(absolutePath)]
	return exists
}

// Excludes reports whether the path or any of its ancestors up to the filesystem root is in the set.
func (set *ExclusionSet) Excludes(absolutePath string) bool {
	if set == nil || len(set.paths) == 0 {
		return false
	}
	currentPath := filepath.Clean(absolutePath)
	for {
		if set.Contains(currentPath) {
			return true
		}
		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			return false
		}
		currentPath = parentPath
	}
}

// Len returns the number of excluded paths.
func (set *ExclusionSet) Len() int {
	if set == nil {
		return 0
	}
	return len(set.paths)
}

// Paths returns the excluded paths in lexical order.
func (set *ExclusionSet) Paths() []string {
	if set == nil {
		return nil
	}
	sortedPaths := make([]string, 0, len(set.paths))
	for excludedPath := range set.paths {
		sortedPaths = append(sortedPaths, excludedPath)
	}
	sort.Strings(sortedPaths)
	return sortedPaths
}
