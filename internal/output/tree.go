// Package output renders collected entries into the dump artifact.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/dumpfiles/internal/types"
)

const (
	indentUnit           = "    "
	treeOpeningMarker    = "<tree>"
	treeClosingMarker    = "</tree>"
	directorySuffix      = "/"
	errorWriteTreeFormat = "writing tree section: %w"
)

// WriteTree writes the tree section: one line per entry indented by depth, directories suffixed
// with a slash, wrapped in tree markers and followed by a blank line.
// Entries must be ordered parents before children.
func WriteTree(writer io.Writer, entries []types.Entry) error {
	var builder strings.Builder
	builder.WriteString(treeOpeningMarker)
	builder.WriteString("\n")
	for _, entry := range entries {
		builder.WriteString(indentation(entry.Depth))
		builder.WriteString(entry.Name)
		if entry.IsDir() {
			builder.WriteString(directorySuffix)
		}
		builder.WriteString("\n")
	}
	builder.WriteString(treeClosingMarker)
	builder.WriteString("\n\n")
	if _, err := io.WriteString(writer, builder.String()); err != nil {
		return fmt.Errorf(errorWriteTreeFormat, err)
	}
	return nil
}

func indentation(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(indentUnit, level)
}
