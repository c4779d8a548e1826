package commands_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/temirov/dumpfiles/internal/commands"
	"github.com/temirov/dumpfiles/internal/types"
	"github.com/temirov/dumpfiles/internal/utils"
)

const outputFileName = "output.txt"

func runDump(t *testing.T, options commands.DumpOptions) (string, types.RunSummary) {
	t.Helper()
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	summary, err := commands.WriteDirectoryContents(options)
	if err != nil {
		t.Fatalf("WriteDirectoryContents error: %v", err)
	}
	outputPath := options.OutputPath
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(options.Root, outputPath)
	}
	content, readErr := os.ReadFile(outputPath)
	if readErr != nil {
		t.Fatalf("read output: %v", readErr)
	}
	return string(content), summary
}

func flockFor(t *testing.T, lockPath string) func() {
	t.Helper()
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire test lock: locked=%t err=%v", locked, err)
	}
	return func() {
		_ = lock.Unlock()
	}
}

func TestWriteDirectoryContentsExcludesGitDirectories(t *testing.T) {
	root := canonicalTempDir(t)
	writeTree(t, root, map[string]string{
		"a/b.txt":       "hi",
		"a/.git/config": "[core]",
	})

	rendered, summary := runDump(t, commands.DumpOptions{
		Root:           root,
		OutputPath:     outputFileName,
		IgnorePatterns: []string{".git*"},
		IgnoreFilePath: ".gitignore",
	})

	expected := "<tree>\n" +
		filepath.Base(root) + "/\n" +
		"    a/\n" +
		"        b.txt\n" +
		"</tree>\n\n" +
		"<a>\n" +
		"    <b.txt>\n" +
		"    hi\n" +
		"    </b.txt>\n" +
		"</a>\n\n"
	if rendered != expected {
		t.Fatalf("unexpected artifact:\n%q\nexpected:\n%q", rendered, expected)
	}
	if summary.Directories != 1 || summary.Files != 1 || summary.BinaryFiles != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.BytesWritten != int64(len(expected)) {
		t.Fatalf("expected %d bytes written, got %d", len(expected), summary.BytesWritten)
	}
}

func TestWriteDirectoryContentsAppliesIgnoreFile(t *testing.T) {
	root := canonicalTempDir(t)
	writeTree(t, root, map[string]string{
		".gitignore":       "build/\n\n#comment\n",
		"build/out.bin":    "binary",
		"build/sub/x.txt":  "x",
		"src/build.go":     "package src\n",
		"src/build/gen.go": "package gen\n",
	})

	rendered, _ := runDump(t, commands.DumpOptions{
		Root:           root,
		OutputPath:     outputFileName,
		IgnorePatterns: []string{".git*"},
		IgnoreFilePath: ".gitignore",
	})

	for _, absent := range []string{"out.bin", "x.txt", "gen.go", "<build>", "build/\n", ".gitignore", "#comment"} {
		if strings.Contains(rendered, absent) {
			t.Fatalf("expected %q to be absent from artifact:\n%s", absent, rendered)
		}
	}
	if !strings.Contains(rendered, "    <build.go>\n    package src\n    </build.go>\n") {
		t.Fatalf("expected src/build.go content in artifact:\n%s", rendered)
	}
}

func TestWriteDirectoryContentsWritesPlaceholderForInvalidText(t *testing.T) {
	root := canonicalTempDir(t)
	writeTree(t, root, map[string]string{
		"data/blob.bin": "\xff\xfe\xfd",
		"data/ok.txt":   "fine",
	})

	rendered, summary := runDump(t, commands.DumpOptions{Root: root, OutputPath: outputFileName})

	placeholder := "    Binary or inaccessible file: " + filepath.Join(root, "data", "blob.bin") + "\n"
	if !strings.Contains(rendered, placeholder) {
		t.Fatalf("expected placeholder %q in artifact:\n%s", placeholder, rendered)
	}
	if !strings.Contains(rendered, "    fine\n") {
		t.Fatalf("expected readable file content after the placeholder:\n%s", rendered)
	}
	if summary.Files != 2 || summary.BinaryFiles != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestWriteDirectoryContentsIsIdempotent(t *testing.T) {
	root := canonicalTempDir(t)
	writeTree(t, root, map[string]string{
		"one/two/three.txt": "3\n",
		"one/four.md":       "# four\n",
		"five.txt":          "5",
	})
	options := commands.DumpOptions{Root: root, OutputPath: outputFileName, IgnorePatterns: []string{".git*"}}

	first, _ := runDump(t, options)
	second, _ := runDump(t, options)
	if !bytes.Equal([]byte(first), []byte(second)) {
		t.Fatalf("expected identical artifacts:\n%s\n---\n%s", first, second)
	}
	if strings.Contains(second, outputFileName) {
		t.Fatalf("expected output artifact to be excluded from itself:\n%s", second)
	}
	if _, err := os.Stat(filepath.Join(root, outputFileName+".lock")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected no lock file inside the scanned tree, stat error: %v", err)
	}
	if strings.Count(second, "<one>\n") != strings.Count(second, "</one>\n\n") {
		t.Fatalf("unbalanced directory markers:\n%s", second)
	}
}

func TestWriteDirectoryContentsHandlesIgnoreFileAvailability(t *testing.T) {
	testCases := []struct {
		name        string
		required    bool
		expectError bool
	}{
		{name: "implied_default_missing", required: false, expectError: false},
		{name: "explicit_missing", required: true, expectError: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			root := canonicalTempDir(t)
			writeTree(t, root, map[string]string{"file.txt": "content"})
			_, err := commands.WriteDirectoryContents(commands.DumpOptions{
				Root:               root,
				OutputPath:         outputFileName,
				IgnoreFilePath:     "missing.ignore",
				IgnoreFileRequired: testCase.required,
				Logger:             zap.NewNop(),
			})
			if testCase.expectError && err == nil {
				t.Fatalf("expected error for missing ignore file")
			}
			if !testCase.expectError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWriteDirectoryContentsSupportsNegation(t *testing.T) {
	for _, matchMode := range []string{types.MatchModeGlob, types.MatchModeGitignore} {
		t.Run(matchMode, func(t *testing.T) {
			root := canonicalTempDir(t)
			writeTree(t, root, map[string]string{
				"rules.ignore": "*.log\n!keep.log\n",
				"debug.log":    "noise",
				"keep.log":     "kept",
				"main.go":      "package main",
			})
			rendered, _ := runDump(t, commands.DumpOptions{
				Root:           root,
				OutputPath:     outputFileName,
				IgnoreFilePath: "rules.ignore",
				MatchMode:      matchMode,
			})
			if strings.Contains(rendered, "debug.log") {
				t.Fatalf("expected debug.log to be excluded:\n%s", rendered)
			}
			if !strings.Contains(rendered, "<keep.log>\nkept\n</keep.log>\n") {
				t.Fatalf("expected keep.log to be re-included:\n%s", rendered)
			}
			if strings.Contains(rendered, outputFileName) {
				t.Fatalf("expected output artifact to stay excluded:\n%s", rendered)
			}
		})
	}
}

func TestWriteDirectoryContentsRejectsInvalidRoots(t *testing.T) {
	root := canonicalTempDir(t)
	writeTree(t, root, map[string]string{"plain.txt": "x"})
	testCases := []struct {
		name string
		root string
	}{
		{name: "missing_directory", root: filepath.Join(root, "absent")},
		{name: "regular_file", root: filepath.Join(root, "plain.txt")},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := commands.WriteDirectoryContents(commands.DumpOptions{
				Root:       testCase.root,
				OutputPath: filepath.Join(t.TempDir(), outputFileName),
			})
			if err == nil {
				t.Fatalf("expected error for root %s", testCase.root)
			}
		})
	}
}

func TestWriteDirectoryContentsRejectsConcurrentRun(t *testing.T) {
	root := canonicalTempDir(t)
	writeTree(t, root, map[string]string{"file.txt": "content"})
	outputPath := filepath.Join(t.TempDir(), outputFileName)

	holder := flockFor(t, utils.OutputLockPath(outputPath))
	defer holder()

	_, err := commands.WriteDirectoryContents(commands.DumpOptions{Root: root, OutputPath: outputPath})
	if err == nil || !strings.Contains(err.Error(), "another run") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestWriteDirectoryContentsPreservesExistingLockNamedFiles(t *testing.T) {
	root := canonicalTempDir(t)
	userLockName := outputFileName + ".lock"
	writeTree(t, root, map[string]string{
		"keep.txt":   "keep",
		userLockName: "important user data",
	})

	rendered, _ := runDump(t, commands.DumpOptions{Root: root, OutputPath: outputFileName})

	content, err := os.ReadFile(filepath.Join(root, userLockName))
	if err != nil {
		t.Fatalf("expected %s to survive the run: %v", userLockName, err)
	}
	if string(content) != "important user data" {
		t.Fatalf("expected %s to be unchanged, got %q", userLockName, content)
	}
	expectedTreeLine := "    " + userLockName + "\n"
	if !strings.Contains(rendered, expectedTreeLine) {
		t.Fatalf("expected tree to list %s:\n%s", userLockName, rendered)
	}
	if !strings.Contains(rendered, "<"+userLockName+">\nimportant user data\n</"+userLockName+">\n") {
		t.Fatalf("expected content block for %s:\n%s", userLockName, rendered)
	}
}
