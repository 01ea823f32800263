package walker_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/ingest/internal/types"
	"github.com/temirov/ingest/internal/walker"
)

// newWalker returns a walker with the run defaults used across these tests.
func newWalker() *walker.TreeWalker {
	return &walker.TreeWalker{
		IncludePatterns:    []string{"*"},
		RespectIgnoreFiles: true,
		SkipBinaryFiles:    true,
	}
}

func writeFile(testingHandle *testing.T, path string, content string) {
	testingHandle.Helper()
	if makeDirError := os.MkdirAll(filepath.Dir(path), 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir for %s: %v", path, makeDirError)
	}
	if writeError := os.WriteFile(path, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("writing %s: %v", path, writeError)
	}
}

func relativePaths(entries []types.FileEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.RelativePath)
	}
	return paths
}

// TestCollectMissingRoot verifies the NotFound classification.
func TestCollectMissingRoot(testingHandle *testing.T) {
	treeWalker := newWalker()
	_, _, collectError := treeWalker.Collect(filepath.Join(testingHandle.TempDir(), "absent"))
	if !errors.Is(collectError, types.ErrNotFound) {
		testingHandle.Fatalf("expected ErrNotFound, got %v", collectError)
	}
}

// TestCollectSingleFileRoot verifies the one-element walk and that filters
// still apply to a single-file root.
func TestCollectSingleFileRoot(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	filePath := filepath.Join(rootDirectory, "notes.txt")
	writeFile(testingHandle, filePath, "hello\n")

	treeWalker := newWalker()
	entries, isDirectory, collectError := treeWalker.Collect(filePath)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	if isDirectory {
		testingHandle.Fatalf("expected file root not to be a directory")
	}
	if len(entries) != 1 || entries[0].RelativePath != "notes.txt" {
		testingHandle.Fatalf("unexpected entries: %v", relativePaths(entries))
	}

	treeWalker.ExcludePatterns = []string{"*.txt"}
	entries, _, collectError = treeWalker.Collect(filePath)
	if collectError != nil {
		testingHandle.Fatalf("Collect with exclusion error: %v", collectError)
	}
	if len(entries) != 0 {
		testingHandle.Fatalf("expected rejected single-file root to yield empty result, got %v", relativePaths(entries))
	}
}

// TestCollectOrdering verifies the deterministic case-insensitive descent and
// that every relative path stays under the root with forward slashes.
func TestCollectOrdering(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, "Beta.txt"), "b\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "alpha.txt"), "a\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "sub", "inner.txt"), "i\n")

	treeWalker := newWalker()
	entries, isDirectory, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	if !isDirectory {
		testingHandle.Fatalf("expected directory root")
	}
	expected := []string{"alpha.txt", "Beta.txt", "sub/inner.txt"}
	actual := relativePaths(entries)
	if len(actual) != len(expected) {
		testingHandle.Fatalf("expected %v, got %v", expected, actual)
	}
	for index := range expected {
		if actual[index] != expected[index] {
			testingHandle.Fatalf("expected %v, got %v", expected, actual)
		}
	}
	for _, relativePath := range actual {
		if strings.Contains(relativePath, "..") || strings.Contains(relativePath, "\\") {
			testingHandle.Fatalf("relative path escapes root or uses backslashes: %q", relativePath)
		}
	}
}

// TestExcludedDirectoryIsPruned verifies that no entry resurrects files
// inside an excluded directory even when they match an include pattern.
func TestExcludedDirectoryIsPruned(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, "keep.py"), "print()\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "build", "generated.py"), "print()\n")

	treeWalker := newWalker()
	treeWalker.IncludePatterns = []string{"*.py"}
	treeWalker.ExcludePatterns = []string{"build"}
	entries, _, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.RelativePath, "build") {
			testingHandle.Fatalf("pruned directory leaked entry %q", entry.RelativePath)
		}
	}
	if len(entries) != 1 || entries[0].RelativePath != "keep.py" {
		testingHandle.Fatalf("unexpected entries: %v", relativePaths(entries))
	}
}

// TestIgnoreFileOverride verifies layered ignore resolution: a child scope
// un-ignores a file the parent scope ignored.
func TestIgnoreFileOverride(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, ".gitignore"), "*.log\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "childdir", ".gitignore"), "!debug.log\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "childdir", "debug.log"), "dbg\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "childdir", "other.log"), "other\n")

	treeWalker := newWalker()
	entries, _, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	actual := relativePaths(entries)
	if len(actual) != 1 || actual[0] != "childdir/debug.log" {
		testingHandle.Fatalf("expected only childdir/debug.log, got %v", actual)
	}
}

// TestLeadingSlashIgnoreRuleStaysAnchored verifies that a root .gitignore
// rule written as /build.txt excludes only the root-level file, leaving a
// same-named file in a subdirectory selected.
func TestLeadingSlashIgnoreRuleStaysAnchored(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, ".gitignore"), "/build.txt\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "build.txt"), "root\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "sub", "build.txt"), "nested\n")

	treeWalker := newWalker()
	entries, _, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	actual := relativePaths(entries)
	if len(actual) != 1 || actual[0] != "sub/build.txt" {
		testingHandle.Fatalf("expected only sub/build.txt kept, got %v", actual)
	}
}

// TestIgnoreFilesDisabled verifies that respect_ignore_files=false bypasses
// ignore rules entirely.
func TestIgnoreFilesDisabled(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, ".gitignore"), "*.log\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "trace.log"), "t\n")

	treeWalker := newWalker()
	treeWalker.RespectIgnoreFiles = false
	entries, _, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	actual := relativePaths(entries)
	foundLog := false
	for _, relativePath := range actual {
		if relativePath == "trace.log" {
			foundLog = true
		}
	}
	if !foundLog {
		testingHandle.Fatalf("expected trace.log collected when ignore files are disabled, got %v", actual)
	}
}

// TestSizeLimitBoundary verifies that a file of exactly the limit is kept and
// one byte over is excluded.
func TestSizeLimitBoundary(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, "exact.txt"), strings.Repeat("a", 10))
	writeFile(testingHandle, filepath.Join(rootDirectory, "over.txt"), strings.Repeat("a", 11))

	treeWalker := newWalker()
	treeWalker.MaxFileSizeBytes = 10
	entries, _, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	actual := relativePaths(entries)
	if len(actual) != 1 || actual[0] != "exact.txt" {
		testingHandle.Fatalf("expected only exact.txt, got %v", actual)
	}
}

// TestBinarySkipToggle verifies NUL-prefix classification in both modes.
func TestBinarySkipToggle(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, "data.bin"), "head\x00tail")
	writeFile(testingHandle, filepath.Join(rootDirectory, "plain.txt"), "text\n")

	treeWalker := newWalker()
	entries, _, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	if actual := relativePaths(entries); len(actual) != 1 || actual[0] != "plain.txt" {
		testingHandle.Fatalf("expected binary file skipped, got %v", actual)
	}

	treeWalker.SkipBinaryFiles = false
	entries, _, collectError = treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	if actual := relativePaths(entries); len(actual) != 2 {
		testingHandle.Fatalf("expected binary file included when skip disabled, got %v", actual)
	}
}

// TestGitDirectoryPruned verifies that .git metadata is skipped by default
// and restored when ignore processing is disabled.
func TestGitDirectoryPruned(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, ".git", "HEAD"), "ref: refs/heads/main\n")
	writeFile(testingHandle, filepath.Join(rootDirectory, "main.go"), "package main\n")

	treeWalker := newWalker()
	entries, _, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	if actual := relativePaths(entries); len(actual) != 1 || actual[0] != "main.go" {
		testingHandle.Fatalf("expected .git pruned, got %v", actual)
	}

	treeWalker.RespectIgnoreFiles = false
	entries, _, collectError = treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	foundHead := false
	for _, relativePath := range relativePaths(entries) {
		if relativePath == ".git/HEAD" {
			foundHead = true
		}
	}
	if !foundHead {
		testingHandle.Fatalf("expected .git/HEAD collected when ignore processing is disabled, got %v", relativePaths(entries))
	}
}

// TestSymlinkedDirectoryNotEntered verifies cycle prevention.
func TestSymlinkedDirectoryNotEntered(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFile(testingHandle, filepath.Join(rootDirectory, "real", "file.txt"), "x\n")
	linkPath := filepath.Join(rootDirectory, "loop")
	if symlinkError := os.Symlink(rootDirectory, linkPath); symlinkError != nil {
		testingHandle.Skipf("symlinks not supported: %v", symlinkError)
	}

	treeWalker := newWalker()
	entries, _, collectError := treeWalker.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	actual := relativePaths(entries)
	if len(actual) != 1 || actual[0] != "real/file.txt" {
		testingHandle.Fatalf("expected symlinked directory to be skipped, got %v", actual)
	}
}
