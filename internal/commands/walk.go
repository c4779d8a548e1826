// Package commands collects directory entries and drives a dump run.
package commands

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/dumpfiles/internal/patterns"
	"github.com/temirov/dumpfiles/internal/types"
	"github.com/temirov/dumpfiles/internal/utils"
)

const (
	// errorReadEntryFormat is used when the walk cannot read a directory entry.
	errorReadEntryFormat = "reading directory entry %s: %w"
)

// CollectEntries walks root once in lexical order and returns every entry the filter keeps,
// parents before children. The root itself is the first entry at depth zero.
// Excluded directories are not descended into and symbolic links are never followed.
func CollectEntries(root string, filter patterns.Filter) ([]types.Entry, error) {
	cleanRoot := filepath.Clean(root)
	var entries []types.Entry

	walkError := filepath.WalkDir(cleanRoot, func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		if accessError != nil {
			return fmt.Errorf(errorReadEntryFormat, walkedPath, accessError)
		}

		entry := types.Entry{
			Path: walkedPath,
			Name: directoryEntry.Name(),
			Type: entryType(directoryEntry),
		}
		if walkedPath == cleanRoot {
			entry.Name = filepath.Base(cleanRoot)
			entries = append(entries, entry)
			return nil
		}

		if filter != nil && filter.Excluded(walkedPath, directoryEntry.IsDir()) {
			if directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entry.RelativePath = utils.RelativePathOrSelf(walkedPath, cleanRoot)
		entry.Depth = strings.Count(entry.RelativePath, "/") + 1
		entries = append(entries, entry)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return entries, nil
}

func entryType(directoryEntry fs.DirEntry) string {
	switch {
	case directoryEntry.IsDir():
		return types.NodeTypeDirectory
	case directoryEntry.Type().IsRegular():
		return types.NodeTypeFile
	default:
		return types.NodeTypeOther
	}
}
