// Package config loads ignore files and application configuration.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/dumpfiles/internal/patterns"
)

const (
	commentPrefix = "#"

	errorOpenIgnoreFileFormat = "open ignore file %s: %w"
	errorScanIgnoreFileFormat = "read ignore file %s: %w"
)

// LoadIgnoreFilePatterns reads an ignore file and returns its translated patterns in file order.
// Blank lines and lines starting with "#" are skipped. Each raw line and its glob are logged at debug level.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string, logger *zap.Logger) ([]patterns.Pattern, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		return nil, fmt.Errorf(errorOpenIgnoreFileFormat, ignoreFilePath, openFileError)
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			logger.Warn("Failed to close ignore file", zap.String("path", ignoreFilePath), zap.Error(closeError))
		}
	}()

	var translatedPatterns []patterns.Pattern
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		pattern := patterns.Translate(trimmedLine)
		logger.Debug("Converted ignore pattern", zap.String("pattern", trimmedLine), zap.String("glob", pattern.Glob))
		translatedPatterns = append(translatedPatterns, pattern)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorScanIgnoreFileFormat, ignoreFilePath, scanError)
	}
	return translatedPatterns, nil
}
