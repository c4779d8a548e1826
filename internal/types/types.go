// Package types defines the data structures shared across dumpfiles packages.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
	NodeTypeOther     = "other"

	MatchModeGlob      = "glob"
	MatchModeGitignore = "gitignore"
)

// Entry is one filesystem entry that survived exclusion filtering.
// RelativePath uses forward slashes and is empty for the scan root.
type Entry struct {
	Path         string
	RelativePath string
	Name         string
	Depth        int
	Type         string
}

// IsDir reports whether the entry is a directory.
func (entry Entry) IsDir() bool {
	return entry.Type == NodeTypeDirectory
}

// IsRegularFile reports whether the entry is a regular file whose content is emitted.
func (entry Entry) IsRegularFile() bool {
	return entry.Type == NodeTypeFile
}

// RunSummary captures aggregate information about a finished run.
type RunSummary struct {
	Directories  int
	Files        int
	BinaryFiles  int
	BytesWritten int64
}
