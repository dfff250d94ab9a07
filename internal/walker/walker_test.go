package walker_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jefffleurima/treesnap/internal/walker"
)

const (
	sourceDirectoryName   = "src"
	nestedDirectoryName   = "deep"
	excludedDirectoryName = "venv"
	rootFileName          = "manage.py"
	sourceFileName        = "main.py"
	nestedFileName        = "config.py"
	excludedFileName      = "activate"
	fileContent           = "print('hello')\n"
)

// makeTestDirectory creates a directory, failing the test on error.
func makeTestDirectory(testingHandle *testing.T, directoryPath string) {
	testingHandle.Helper()
	if makeDirError := os.MkdirAll(directoryPath, 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir %s: %v", directoryPath, makeDirError)
	}
}

// writeTestFile creates a file with fixed content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(fileContent), 0o644); writeError != nil {
		testingHandle.Fatalf("write %s: %v", filePath, writeError)
	}
}

// collectEvents runs a walk and records every delivered event.
func collectEvents(testingHandle *testing.T, rootPath string) ([]walker.Event, walker.Summary) {
	testingHandle.Helper()
	var events []walker.Event
	summary, walkError := walker.Walk(rootPath, func(event walker.Event) error {
		events = append(events, event)
		return nil
	})
	if walkError != nil {
		testingHandle.Fatalf("Walk failed: %v", walkError)
	}
	return events, summary
}

// TestWalkExcludesFixedDirectoryNames verifies that excluded subtrees are never visited or listed.
func TestWalkExcludesFixedDirectoryNames(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	makeTestDirectory(testingHandle, filepath.Join(rootDirectory, sourceDirectoryName))
	makeTestDirectory(testingHandle, filepath.Join(rootDirectory, excludedDirectoryName))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, sourceDirectoryName, sourceFileName))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, excludedDirectoryName, excludedFileName))

	events, summary := collectEvents(testingHandle, rootDirectory)

	for _, event := range events {
		var eventPath string
		switch {
		case event.Directory != nil:
			eventPath = event.Directory.Path
		case event.File != nil:
			eventPath = event.File.Path
		}
		if strings.Contains(eventPath, excludedDirectoryName) {
			testingHandle.Fatalf("excluded subtree appeared in events: %s", eventPath)
		}
	}
	if summary.Directories != 2 {
		testingHandle.Fatalf("expected 2 directories, got %d", summary.Directories)
	}
	if summary.Files != 1 {
		testingHandle.Fatalf("expected 1 file, got %d", summary.Files)
	}
}

// TestWalkEmitsFilesBeforeSubdirectories verifies listing order and depth values.
func TestWalkEmitsFilesBeforeSubdirectories(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	makeTestDirectory(testingHandle, filepath.Join(rootDirectory, sourceDirectoryName, nestedDirectoryName))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, rootFileName))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, sourceDirectoryName, sourceFileName))
	writeTestFile(testingHandle, filepath.Join(rootDirectory, sourceDirectoryName, nestedDirectoryName, nestedFileName))

	events, _ := collectEvents(testingHandle, rootDirectory)

	type expectation struct {
		kind  walker.EventKind
		name  string
		depth int
	}
	expectations := []expectation{
		{walker.EventEnterDirectory, filepath.Base(rootDirectory), 0},
		{walker.EventFile, rootFileName, 0},
		{walker.EventEnterDirectory, sourceDirectoryName, 1},
		{walker.EventFile, sourceFileName, 1},
		{walker.EventEnterDirectory, nestedDirectoryName, 2},
		{walker.EventFile, nestedFileName, 2},
		{walker.EventLeaveDirectory, nestedDirectoryName, 2},
		{walker.EventLeaveDirectory, sourceDirectoryName, 1},
		{walker.EventLeaveDirectory, filepath.Base(rootDirectory), 0},
	}
	if len(events) != len(expectations) {
		testingHandle.Fatalf("expected %d events, got %d", len(expectations), len(events))
	}
	for eventIndex, expected := range expectations {
		event := events[eventIndex]
		if event.Kind != expected.kind {
			testingHandle.Fatalf("event %d: expected kind %d, got %d", eventIndex, expected.kind, event.Kind)
		}
		var name string
		var depth int
		if event.Directory != nil {
			name = event.Directory.Name
			depth = event.Directory.Depth
		} else if event.File != nil {
			name = event.File.Name
			depth = event.File.Depth
		}
		if name != expected.name || depth != expected.depth {
			testingHandle.Fatalf("event %d: expected %s at depth %d, got %s at depth %d",
				eventIndex, expected.name, expected.depth, name, depth)
		}
	}
}

// TestWalkDoesNotFollowDirectorySymlinks verifies that symlinked directories are neither listed nor descended.
func TestWalkDoesNotFollowDirectorySymlinks(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	targetDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(targetDirectory, sourceFileName))

	linkPath := filepath.Join(rootDirectory, "linked")
	if symlinkError := os.Symlink(targetDirectory, linkPath); symlinkError != nil {
		testingHandle.Skipf("symlinks not supported: %v", symlinkError)
	}

	events, summary := collectEvents(testingHandle, rootDirectory)
	for _, event := range events {
		if event.File != nil && event.File.Path == linkPath {
			testingHandle.Fatalf("symlinked directory listed as file: %s", linkPath)
		}
		if event.Directory != nil && event.Directory.Path == linkPath {
			testingHandle.Fatalf("symlinked directory was visited: %s", linkPath)
		}
	}
	if summary.Directories != 1 || summary.Files != 0 {
		testingHandle.Fatalf("unexpected summary: %+v", summary)
	}
}

// TestWalkPropagatesUnreadableDirectory verifies that read errors abort the walk.
func TestWalkPropagatesUnreadableDirectory(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("directory permissions are not enforced for root")
	}
	rootDirectory := testingHandle.TempDir()
	lockedDirectoryPath := filepath.Join(rootDirectory, "locked")
	makeTestDirectory(testingHandle, lockedDirectoryPath)
	if chmodError := os.Chmod(lockedDirectoryPath, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod: %v", chmodError)
	}
	testingHandle.Cleanup(func() {
		_ = os.Chmod(lockedDirectoryPath, 0o755)
	})

	_, walkError := walker.Walk(rootDirectory, func(event walker.Event) error {
		return nil
	})
	if walkError == nil {
		testingHandle.Fatalf("expected error for unreadable directory")
	}
}

// TestWalkRejectsNilHandler verifies the handler guard.
func TestWalkRejectsNilHandler(testingHandle *testing.T) {
	if _, walkError := walker.Walk(testingHandle.TempDir(), nil); walkError == nil {
		testingHandle.Fatalf("expected error for nil handler")
	}
}

// TestIsExcludedDirectoryName verifies membership checks against the fixed set.
func TestIsExcludedDirectoryName(testingHandle *testing.T) {
	for _, excludedName := range []string{"__pycache__", "migrations", "venv", "env", "static", "media"} {
		if !walker.IsExcludedDirectoryName(excludedName) {
			testingHandle.Fatalf("expected %s to be excluded", excludedName)
		}
	}
	for _, includedName := range []string{"src", "environment", "staticfiles", ".git"} {
		if walker.IsExcludedDirectoryName(includedName) {
			testingHandle.Fatalf("expected %s not to be excluded", includedName)
		}
	}
}
