package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/temirov/dumpfiles/internal/config"
	"github.com/temirov/dumpfiles/internal/output"
	"github.com/temirov/dumpfiles/internal/patterns"
	"github.com/temirov/dumpfiles/internal/types"
	"github.com/temirov/dumpfiles/internal/utils"
)

const (
	errorCanonicalRootFormat  = "canonicalizing root %s: %w"
	errorRootNotDirectory     = "root %s is not a directory"
	errorAcquireLockFormat    = "acquiring lock %s: %w"
	errorLockHeldFormat       = "another run is writing %s"
	errorOpenOutputFormat     = "opening output %s: %w"
	errorCloseOutputFormat    = "closing output %s: %w"
	errorFlushOutputFormat    = "flushing output %s: %w"
	errorLoadIgnoreFileFormat = "loading ignore file: %w"
	errorBuildExclusionFormat = "building exclusion set: %w"
	errorUnknownMatchMode     = "unsupported match mode %q"

	outputFilePermissions = 0o644
)

// DumpOptions describes one dump run.
type DumpOptions struct {
	// Root is the directory to serialize.
	Root string
	// OutputPath is the artifact to write. A relative path is resolved against Root.
	OutputPath string
	// IgnorePatterns are explicit patterns applied before the ignore file.
	IgnorePatterns []string
	// IgnoreFilePath names a gitignore-style file. Empty disables it; a relative path is resolved against Root.
	IgnoreFilePath string
	// IgnoreFileRequired makes a missing ignore file fatal instead of skipped.
	IgnoreFileRequired bool
	// MatchMode selects glob expansion or gitignore matching. Empty means glob.
	MatchMode string
	Logger    *zap.Logger
}

// WriteDirectoryContents serializes the tree and the nested file contents of Root into OutputPath.
func WriteDirectoryContents(options DumpOptions) (types.RunSummary, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	root, rootError := canonicalRoot(options.Root)
	if rootError != nil {
		return types.RunSummary{}, rootError
	}

	outputPath := options.OutputPath
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(root, outputPath)
	}
	outputPath = utils.CanonicalPath(outputPath)
	lockPath := utils.OutputLockPath(outputPath)

	outputLock := flock.New(lockPath)
	locked, lockError := outputLock.TryLock()
	if lockError != nil {
		return types.RunSummary{}, fmt.Errorf(errorAcquireLockFormat, lockPath, lockError)
	}
	if !locked {
		return types.RunSummary{}, fmt.Errorf(errorLockHeldFormat, outputPath)
	}
	defer func() {
		if unlockError := outputLock.Unlock(); unlockError != nil {
			logger.Warn("Failed to release output lock", zap.String("path", lockPath), zap.Error(unlockError))
		}
	}()

	logger.Info("Starting dump", zap.String("root", root), zap.String("output", outputPath))

	filter, filterError := buildFilter(options, root, []string{outputPath}, logger)
	if filterError != nil {
		return types.RunSummary{}, filterError
	}

	outputFile, openError := os.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, outputFilePermissions)
	if openError != nil {
		return types.RunSummary{}, fmt.Errorf(errorOpenOutputFormat, outputPath, openError)
	}
	summary, writeError := writeArtifact(outputFile, root, filter)
	closeError := outputFile.Close()
	if writeError != nil {
		return types.RunSummary{}, writeError
	}
	if closeError != nil {
		return types.RunSummary{}, fmt.Errorf(errorCloseOutputFormat, outputPath, closeError)
	}

	logger.Info("Finished dump",
		zap.String("output", outputPath),
		zap.Int("directories", summary.Directories),
		zap.Int("files", summary.Files),
		zap.Int("binary_files", summary.BinaryFiles),
		zap.String("size", utils.FormatFileSize(summary.BytesWritten)),
	)
	return summary, nil
}

func canonicalRoot(root string) (string, error) {
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return "", fmt.Errorf(errorCanonicalRootFormat, root, absoluteError)
	}
	resolvedRoot, resolveError := filepath.EvalSymlinks(absoluteRoot)
	if resolveError != nil {
		return "", fmt.Errorf(errorCanonicalRootFormat, root, resolveError)
	}
	info, statError := os.Stat(resolvedRoot)
	if statError != nil {
		return "", fmt.Errorf(errorCanonicalRootFormat, root, statError)
	}
	if !info.IsDir() {
		return "", fmt.Errorf(errorRootNotDirectory, resolvedRoot)
	}
	return resolvedRoot, nil
}

// buildFilter assembles the traversal filter for the configured match mode.
// Explicit patterns come first and ignore-file patterns after them.
func buildFilter(options DumpOptions, root string, protectedPaths []string, logger *zap.Logger) (patterns.Filter, error) {
	var orderedPatterns []patterns.Pattern
	for _, rawPattern := range options.IgnorePatterns {
		normalized := utils.NormalizeExclusionPattern(rawPattern)
		if normalized == "" {
			continue
		}
		orderedPatterns = append(orderedPatterns, patterns.Translate(normalized))
	}

	ignoreFilePatterns, ignoreError := loadIgnoreFile(options, root, logger)
	if ignoreError != nil {
		return nil, ignoreError
	}
	orderedPatterns = append(orderedPatterns, ignoreFilePatterns...)

	switch options.MatchMode {
	case "", types.MatchModeGlob:
		exclusionSet, buildError := patterns.BuildExclusionSet(patterns.ExclusionOptions{
			Root:           root,
			Patterns:       orderedPatterns,
			ProtectedPaths: protectedPaths,
			Logger:         logger,
		})
		if buildError != nil {
			return nil, fmt.Errorf(errorBuildExclusionFormat, buildError)
		}
		logger.Debug("Built exclusion set", zap.Int("count", exclusionSet.Len()), zap.Strings("paths", exclusionSet.Paths()))
		return patterns.NewSetFilter(exclusionSet), nil
	case types.MatchModeGitignore:
		protectedSet, buildError := patterns.BuildExclusionSet(patterns.ExclusionOptions{
			Root:           root,
			ProtectedPaths: protectedPaths,
			Logger:         logger,
		})
		if buildError != nil {
			return nil, fmt.Errorf(errorBuildExclusionFormat, buildError)
		}
		rawLines := make([]string, 0, len(orderedPatterns))
		for _, pattern := range orderedPatterns {
			rawLines = append(rawLines, pattern.Raw)
		}
		return patterns.NewGitignoreFilter(root, rawLines, protectedSet), nil
	default:
		return nil, fmt.Errorf(errorUnknownMatchMode, options.MatchMode)
	}
}

func loadIgnoreFile(options DumpOptions, root string, logger *zap.Logger) ([]patterns.Pattern, error) {
	if options.IgnoreFilePath == "" {
		return nil, nil
	}
	ignoreFilePath := options.IgnoreFilePath
	if !filepath.IsAbs(ignoreFilePath) {
		ignoreFilePath = filepath.Join(root, ignoreFilePath)
	}
	loadedPatterns, loadError := config.LoadIgnoreFilePatterns(ignoreFilePath, logger)
	if loadError != nil {
		if errors.Is(loadError, fs.ErrNotExist) && !options.IgnoreFileRequired {
			logger.Debug("Ignore file not found, continuing without it", zap.String("path", ignoreFilePath))
			return nil, nil
		}
		return nil, fmt.Errorf(errorLoadIgnoreFileFormat, loadError)
	}
	return loadedPatterns, nil
}

// writeArtifact walks root once and writes both sections through a single buffered writer.
func writeArtifact(outputFile *os.File, root string, filter patterns.Filter) (types.RunSummary, error) {
	entries, collectError := CollectEntries(root, filter)
	if collectError != nil {
		return types.RunSummary{}, collectError
	}

	counter := &countingWriter{writer: outputFile}
	bufferedWriter := bufio.NewWriter(counter)
	if treeError := output.WriteTree(bufferedWriter, entries); treeError != nil {
		return types.RunSummary{}, treeError
	}
	contentWriter := output.NewContentWriter(bufferedWriter)
	for _, entry := range entries {
		if entryError := contentWriter.WriteEntry(entry); entryError != nil {
			return types.RunSummary{}, entryError
		}
	}
	if drainError := contentWriter.Drain(); drainError != nil {
		return types.RunSummary{}, drainError
	}
	if flushError := bufferedWriter.Flush(); flushError != nil {
		return types.RunSummary{}, fmt.Errorf(errorFlushOutputFormat, outputFile.Name(), flushError)
	}

	summary := types.RunSummary{BytesWritten: counter.count}
	for _, entry := range entries[1:] {
		if entry.IsDir() {
			summary.Directories++
		}
	}
	stats := contentWriter.Stats()
	summary.Files = stats.Files
	summary.BinaryFiles = stats.BinaryFiles
	return summary, nil
}

type countingWriter struct {
	writer io.Writer
	count  int64
}

func (counter *countingWriter) Write(data []byte) (int, error) {
	written, err := counter.writer.Write(data)
	counter.count += int64(written)
	return written, err
}
