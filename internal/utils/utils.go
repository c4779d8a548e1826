// Package utils contains general helper functions used across the dumpfiles tool.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

// File and directory name constants used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = ".dumpfiles.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding the global configuration.
	GlobalConfigDirectoryName = ".dumpfiles"
	// LockFilePrefix starts the name of every output lock file in the temporary directory.
	LockFilePrefix = "dumpfiles-"
	// LockFileSuffix ends the name of every output lock file.
	LockFileSuffix = ".lock"
)

const lockKeyLength = 16

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the forward-slash relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// NormalizeExclusionPattern converts backslashes to forward slashes and strips trailing separators,
// the way patterns given on the command line are prepared before translation.
func NormalizeExclusionPattern(pattern string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(pattern), "\\", pathSegmentSeparator)
	return strings.TrimRight(normalized, pathSegmentSeparator)
}

// CanonicalPath returns an absolute, cleaned path with symlinks resolved.
// When the path does not exist yet, its parent directory is resolved instead and the base name kept.
func CanonicalPath(path string) string {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return filepath.Clean(path)
	}
	if resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath); resolveError == nil {
		return resolvedPath
	}
	parentDirectory := filepath.Dir(absolutePath)
	if resolvedParent, resolveError := filepath.EvalSymlinks(parentDirectory); resolveError == nil {
		return filepath.Join(resolvedParent, filepath.Base(absolutePath))
	}
	return absolutePath
}

// OutputLockPath returns the lock file guarding outputPath. It lives in the temporary directory,
// keyed by the canonical output path, so it never collides with files in the scanned tree.
func OutputLockPath(outputPath string) string {
	digest := sha256.Sum256([]byte(CanonicalPath(outputPath)))
	lockKey := hex.EncodeToString(digest[:])[:lockKeyLength]
	return filepath.Join(os.TempDir(), LockFilePrefix+lockKey+LockFileSuffix)
}
