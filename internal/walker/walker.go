// Package walker implements the synchronous top-down directory traversal that
// feeds snapshot rendering.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// errorReadDirectoryFormat is used when a directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
	// errorStatEntryFormat is used when file information cannot be retrieved.
	errorStatEntryFormat = "stat failed for %s: %w"
	// errorStatRootFormat is used when the traversal root cannot be inspected.
	errorStatRootFormat = "stat failed for root %s: %w"
	// errorRootNotDirectoryFormat is used when the traversal root is not a directory.
	errorRootNotDirectoryFormat = "root %s is not a directory"
	// errorNilHandlerMessage reports a missing event handler.
	errorNilHandlerMessage = "walk handler is nil"
)

// excludedDirectoryNames lists directory base names that are never descended
// into or listed. The set is fixed; it is not configurable at run time.
var excludedDirectoryNames = map[string]struct{}{
	"__pycache__": {},
	"migrations":  {},
	"venv":        {},
	"env":         {},
	"static":      {},
	"media":       {},
}

// IsExcludedDirectoryName reports whether a directory base name belongs to the
// fixed exclusion set.
func IsExcludedDirectoryName(directoryName string) bool {
	_, excluded := excludedDirectoryNames[directoryName]
	return excluded
}

// EventKind identifies the type of a traversal event.
type EventKind int

const (
	// EventEnterDirectory is emitted once per visited directory, before its entries.
	EventEnterDirectory EventKind = iota
	// EventFile is emitted once per file directly inside the current directory.
	EventFile
	// EventLeaveDirectory is emitted after a directory and all its descendants.
	EventLeaveDirectory
)

// DirectoryEvent describes a directory being entered or left.
type DirectoryEvent struct {
	Path  string
	Name  string
	Depth int
}

// FileEvent describes a file encountered during the walk.
type FileEvent struct {
	Path      string
	Name      string
	Depth     int
	SizeBytes int64
}

// Event is a single traversal occurrence delivered to the handler.
type Event struct {
	Kind      EventKind
	Directory *DirectoryEvent
	File      *FileEvent
}

// Summary aggregates counts for a completed walk.
type Summary struct {
	Directories int
	Files       int
	Bytes       int64
}

// Handler consumes walk events in traversal order. A non-nil return aborts
// the walk and propagates to the caller.
type Handler func(Event) error

// Walk traverses the tree rooted at rootPath top-down on the calling
// goroutine and delivers events to handler in listing order: the directory
// itself, its files in sorted order, then each non-excluded subdirectory in
// sorted order. Subdirectories whose base name is in the fixed exclusion set
// are filtered out before descent, so excluded subtrees are never visited.
// Read errors abort the walk; there is no per-directory recovery.
func Walk(rootPath string, handler Handler) (Summary, error) {
	if handler == nil {
		return Summary{}, fmt.Errorf(errorNilHandlerMessage)
	}
	rootInfo, rootStatError := os.Stat(rootPath)
	if rootStatError != nil {
		return Summary{}, fmt.Errorf(errorStatRootFormat, rootPath, rootStatError)
	}
	if !rootInfo.IsDir() {
		return Summary{}, fmt.Errorf(errorRootNotDirectoryFormat, rootPath)
	}
	summary := Summary{}
	walkError := walkDirectory(rootPath, 0, handler, &summary)
	return summary, walkError
}

// walkDirectory visits one directory: enter event, file events, recursion
// into non-excluded subdirectories, leave event.
func walkDirectory(directoryPath string, depth int, handler Handler, summary *Summary) error {
	enterEvent := DirectoryEvent{
		Path:  directoryPath,
		Name:  filepath.Base(directoryPath),
		Depth: depth,
	}
	if handlerError := handler(Event{Kind: EventEnterDirectory, Directory: &enterEvent}); handlerError != nil {
		return handlerError
	}
	summary.Directories++

	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, directoryPath, readDirectoryError)
	}

	var subdirectoryPaths []string
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(directoryPath, directoryEntry.Name())

		if directoryEntry.IsDir() {
			if IsExcludedDirectoryName(directoryEntry.Name()) {
				continue
			}
			subdirectoryPaths = append(subdirectoryPaths, childPath)
			continue
		}

		if directoryEntry.Type()&os.ModeSymlink != 0 {
			targetInfo, targetStatError := os.Stat(childPath)
			if targetStatError == nil && targetInfo.IsDir() {
				// Symlinked directories are never followed and never listed.
				continue
			}
		}

		entryInfo, entryInfoError := directoryEntry.Info()
		if entryInfoError != nil {
			return fmt.Errorf(errorStatEntryFormat, childPath, entryInfoError)
		}
		fileEvent := FileEvent{
			Path:      childPath,
			Name:      directoryEntry.Name(),
			Depth:     depth,
			SizeBytes: entryInfo.Size(),
		}
		if handlerError := handler(Event{Kind: EventFile, File: &fileEvent}); handlerError != nil {
			return handlerError
		}
		summary.Files++
		summary.Bytes += entryInfo.Size()
	}

	for _, subdirectoryPath := range subdirectoryPaths {
		if walkError := walkDirectory(subdirectoryPath, depth+1, handler, summary); walkError != nil {
			return walkError
		}
	}

	leaveEvent := enterEvent
	return handler(Event{Kind: EventLeaveDirectory, Directory: &leaveEvent})
}
