// Package snapshot renders the indented project structure listing and writes
// it to the fixed output file.
package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jefffleurima/treesnap/internal/walker"
)

const (
	// OutputFileName is the fixed file the snapshot is written to.
	OutputFileName = "project_structure.txt"

	// indentUnit is the indentation added per traversal depth level.
	indentUnit = "  "
	// directorySuffix terminates every directory line.
	directorySuffix = "/"

	// errorCreateOutputFormat is used when the output file cannot be created.
	errorCreateOutputFormat = "creating %s: %w"
	// errorCloseOutputFormat is used when the output file cannot be closed.
	errorCloseOutputFormat = "closing %s: %w"
	// errorRenderFormat is used when rendering the listing fails.
	errorRenderFormat = "rendering listing for %s: %w"
)

// Options controls optional destinations for a snapshot run.
type Options struct {
	// Mirror receives a copy of every rendered byte when non-nil.
	Mirror io.Writer
}

// Render streams the indented listing for rootPath into destination,
// interleaving traversal and writes line by line. Directories produce
// `<indent><name>/` lines indented two spaces per depth level; files produce
// `<indent><name>` lines indented one level deeper than their directory.
func Render(rootPath string, destination io.Writer) (walker.Summary, error) {
	return walker.Walk(rootPath, func(event walker.Event) error {
		switch event.Kind {
		case walker.EventEnterDirectory:
			_, writeError := fmt.Fprintf(
				destination,
				"%s%s%s\n",
				strings.Repeat(indentUnit, event.Directory.Depth),
				event.Directory.Name,
				directorySuffix,
			)
			return writeError
		case walker.EventFile:
			_, writeError := fmt.Fprintf(
				destination,
				"%s%s\n",
				strings.Repeat(indentUnit, event.File.Depth+1),
				event.File.Name,
			)
			return writeError
		}
		return nil
	})
}

// Write creates or truncates OutputFileName inside rootPath and renders the
// listing into it. The handle is opened before the walk starts, so an already
// existing snapshot file shows up in the listing like any other file, and it
// is closed via defer once the walk finishes or fails.
func Write(rootPath string, options Options) (summary walker.Summary, err error) {
	outputPath := filepath.Join(rootPath, OutputFileName)
	outputFile, createError := os.Create(outputPath)
	if createError != nil {
		return walker.Summary{}, fmt.Errorf(errorCreateOutputFormat, outputPath, createError)
	}
	defer func() {
		closeError := outputFile.Close()
		if closeError != nil && err == nil {
			err = fmt.Errorf(errorCloseOutputFormat, outputPath, closeError)
		}
	}()

	destination := io.Writer(outputFile)
	if options.Mirror != nil {
		destination = io.MultiWriter(outputFile, options.Mirror)
	}

	summary, renderError := Render(rootPath, destination)
	if renderError != nil {
		return summary, fmt.Errorf(errorRenderFormat, rootPath, renderError)
	}
	return summary, nil
}
