package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/dumpfiles/internal/types"
	"github.com/temirov/dumpfiles/internal/utils"
)

const (
	// placeholderFormat replaces the content of files that cannot be emitted as text.
	placeholderFormat         = "Binary or inaccessible file: %s"
	errorWriteContentFormat   = "writing content for %s: %w"
	errorCloseDirectoryFormat = "closing directory block %s: %w"
)

// directoryFrame is one open directory block. Path is relative to the root with forward slashes.
type directoryFrame struct {
	path  string
	name  string
	depth int
}

// ContentStats counts what the content section emitted.
type ContentStats struct {
	Files       int
	BinaryFiles int
}

// ContentWriter emits the nested content section. Directory blocks are opened lazily for the
// ancestors of each visited entry and closed once the walk leaves them.
type ContentWriter struct {
	writer io.Writer
	frames []directoryFrame
	stats  ContentStats
}

// NewContentWriter returns a ContentWriter writing to writer.
func NewContentWriter(writer io.Writer) *ContentWriter {
	return &ContentWriter{writer: writer}
}

// WriteEntry processes one entry in walk order.
func (contentWriter *ContentWriter) WriteEntry(entry types.Entry) error {
	if entry.RelativePath == "" {
		return nil
	}
	if err := contentWriter.closeUnrelated(entry.RelativePath); err != nil {
		return err
	}
	if err := contentWriter.openAncestors(entry.RelativePath); err != nil {
		return err
	}
	if !entry.IsRegularFile() {
		return nil
	}
	if err := contentWriter.writeFile(entry); err != nil {
		return fmt.Errorf(errorWriteContentFormat, entry.Path, err)
	}
	return nil
}

// Drain closes every directory block still open. It must be called once after the last entry.
func (contentWriter *ContentWriter) Drain() error {
	for len(contentWriter.frames) > 0 {
		if err := contentWriter.popFrame(); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports the files emitted so far.
func (contentWriter *ContentWriter) Stats() ContentStats {
	return contentWriter.stats
}

func (contentWriter *ContentWriter) closeUnrelated(relativePath string) error {
	for len(contentWriter.frames) > 0 {
		top := contentWriter.frames[len(contentWriter.frames)-1]
		if hasComponentPrefix(relativePath, top.path) {
			return nil
		}
		if err := contentWriter.popFrame(); err != nil {
			return err
		}
	}
	return nil
}

func (contentWriter *ContentWriter) openAncestors(relativePath string) error {
	components := strings.Split(relativePath, "/")
	for index := 0; index < len(components)-1; index++ {
		ancestorPath := strings.Join(components[:index+1], "/")
		if contentWriter.isOpen(ancestorPath) {
			continue
		}
		frame := directoryFrame{path: ancestorPath, name: components[index], depth: index + 1}
		if err := contentWriter.writeLine(frame.depth-1, "<"+frame.name+">"); err != nil {
			return err
		}
		contentWriter.frames = append(contentWriter.frames, frame)
	}
	return nil
}

func (contentWriter *ContentWriter) isOpen(path string) bool {
	for _, frame := range contentWriter.frames {
		if frame.path == path {
			return true
		}
	}
	return false
}

func (contentWriter *ContentWriter) popFrame() error {
	last := len(contentWriter.frames) - 1
	frame := contentWriter.frames[last]
	contentWriter.frames = contentWriter.frames[:last]
	if err := contentWriter.writeLine(frame.depth-1, "</"+frame.name+">\n"); err != nil {
		return fmt.Errorf(errorCloseDirectoryFormat, frame.path, err)
	}
	return nil
}

func (contentWriter *ContentWriter) writeFile(entry types.Entry) error {
	level := entry.Depth - 1
	if err := contentWriter.writeLine(level, "<"+entry.Name+">"); err != nil {
		return err
	}
	contentWriter.stats.Files++
	data, readErr := os.ReadFile(entry.Path)
	if readErr != nil || utils.IsBinary(data) {
		contentWriter.stats.BinaryFiles++
		if err := contentWriter.writeLine(level, fmt.Sprintf(placeholderFormat, entry.Path)); err != nil {
			return err
		}
	} else {
		for _, line := range SplitLines(string(data)) {
			if err := contentWriter.writeLine(level, line); err != nil {
				return err
			}
		}
	}
	return contentWriter.writeLine(level, "</"+entry.Name+">")
}

func (contentWriter *ContentWriter) writeLine(level int, text string) error {
	_, err := io.WriteString(contentWriter.writer, indentation(level)+text+"\n")
	return err
}

// hasComponentPrefix reports whether prefix names path itself or one of its ancestors.
func hasComponentPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// SplitLines splits text on newlines. A carriage return preceding a newline is dropped and a final
// newline does not produce an empty trailing line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	terminated := len(lines)
	if !strings.HasSuffix(text, "\n") {
		terminated--
	}
	for index := 0; index < terminated; index++ {
		lines[index] = strings.TrimSuffix(lines[index], "\r")
	}
	return lines
}
