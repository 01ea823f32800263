// Package ingest wires the walk, render, and packaging stages of one run.
package ingest

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/ingest/internal/packager"
	"github.com/temirov/ingest/internal/render"
	"github.com/temirov/ingest/internal/tokenizer"
	"github.com/temirov/ingest/internal/types"
	"github.com/temirov/ingest/internal/walker"
)

// Run executes one ingest run: collect the selection under the configured
// root, render its tree, and stream tree plus file bodies to the output
// artifact. The token counter is constructed by the caller and passed down;
// a nil counter disables token estimation. Both empty-selection outcomes
// (types.ErrEmptySelection) and missing or invalid roots abort before any
// output file is created.
func Run(configuration types.IngestConfig, tokenCounter tokenizer.Counter, logger *zap.Logger) (types.IngestResult, error) {
	treeWalker := walker.NewTreeWalker(configuration, logger)
	entries, isDirectory, walkError := treeWalker.Collect(configuration.InputPath)
	if walkError != nil {
		return types.IngestResult{}, walkError
	}
	if len(entries) == 0 {
		return types.IngestResult{}, fmt.Errorf("%w under %s", types.ErrEmptySelection, configuration.InputPath)
	}

	rootDisplayName := displayName(configuration.InputPath)
	orderedEntries := entries
	if isDirectory {
		orderedEntries = render.OrderedEntries(rootDisplayName, entries)
	}
	treeLines := render.Render(rootDisplayName, entries, isDirectory)

	contentPackager := &packager.ContentPackager{TokenCounter: tokenCounter, Logger: logger}
	return contentPackager.Package(configuration, orderedEntries, treeLines, isDirectory)
}

// displayName derives the root label used in the tree block from the input path.
func displayName(inputPath string) string {
	absoluteInputPath, absolutePathError := filepath.Abs(inputPath)
	if absolutePathError != nil {
		return filepath.Base(filepath.Clean(inputPath))
	}
	return filepath.Base(filepath.Clean(absoluteInputPath))
}
