// Package packager streams the rendered tree and selected file bodies into
// the output artifact, accumulating run statistics as it writes.
package packager

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ingest/internal/tokenizer"
	"github.com/temirov/ingest/internal/types"
)

const (
	treeBlockHeader = "DIRECTORY TREE:"
	separatorLine   = "======================================================================"
	fileHeaderLabel = "FILE: "

	readErrorMarkerFormat = "[Error reading file: %v]"

	warningTokenCountMessage = "token counting failed"
	warningFileReadMessage   = "failed to read selected file"

	errorCreateOutputDirectoryFormat = "creating output directory %s: %w"
	errorCreateOutputFileFormat      = "creating output file %s: %w"
	errorWriteOutputFormat           = "writing output to %s: %w"
)

// ContentPackager writes one ingest artifact. The token counter is an
// injected strategy; statistics are derived strictly from text actually
// written, never from filtered-out content.
type ContentPackager struct {
	TokenCounter tokenizer.Counter
	Logger       *zap.Logger
}

// statistics accumulates packaging bookkeeping for one run. It is the only
// mutable state shared across the packaging pass.
type statistics struct {
	fileNames      []string
	fileLineCounts map[string]int
	tokenCount     int
}

// Package streams the tree block and every entry's content to the configured
// output path, creating parent directories as needed. Entries must already be
// in renderer order; the artifact's FILE headers and the result's file list
// follow that order exactly. A read failure on one file substitutes an inline
// error marker and never aborts the run.
func (contentPackager *ContentPackager) Package(configuration types.IngestConfig, orderedEntries []types.FileEntry, treeLines []string, isDirectory bool) (types.IngestResult, error) {
	outputDirectory := filepath.Dir(configuration.OutputPath)
	if makeDirectoryError := os.MkdirAll(outputDirectory, 0o755); makeDirectoryError != nil {
		return types.IngestResult{}, fmt.Errorf(errorCreateOutputDirectoryFormat, outputDirectory, makeDirectoryError)
	}
	outputFile, createError := os.Create(configuration.OutputPath)
	if createError != nil {
		return types.IngestResult{}, fmt.Errorf(errorCreateOutputFileFormat, configuration.OutputPath, createError)
	}
	defer outputFile.Close()

	bufferedWriter := bufio.NewWriter(outputFile)
	runStatistics := &statistics{fileLineCounts: make(map[string]int, len(orderedEntries))}

	treeBlock := treeBlockHeader + "\n" + strings.Join(treeLines, "\n") + "\n\n"
	if writeError := contentPackager.writeCounted(bufferedWriter, treeBlock, runStatistics); writeError != nil {
		return types.IngestResult{}, fmt.Errorf(errorWriteOutputFormat, configuration.OutputPath, writeError)
	}

	for _, entry := range orderedEntries {
		if writeError := contentPackager.writeEntry(bufferedWriter, entry, runStatistics); writeError != nil {
			return types.IngestResult{}, fmt.Errorf(errorWriteOutputFormat, configuration.OutputPath, writeError)
		}
	}

	if flushError := bufferedWriter.Flush(); flushError != nil {
		return types.IngestResult{}, fmt.Errorf(errorWriteOutputFormat, configuration.OutputPath, flushError)
	}
	if closeError := outputFile.Close(); closeError != nil {
		return types.IngestResult{}, fmt.Errorf(errorWriteOutputFormat, configuration.OutputPath, closeError)
	}

	tokenizerName := ""
	if contentPackager.TokenCounter != nil {
		tokenizerName = contentPackager.TokenCounter.Name()
	}
	return types.IngestResult{
		OutputPath:     configuration.OutputPath,
		IsDirectory:    isDirectory,
		Files:          runStatistics.fileNames,
		FileLineCounts: runStatistics.fileLineCounts,
		TokenCount:     runStatistics.tokenCount,
		TokenizerName:  tokenizerName,
	}, nil
}

// writeEntry writes one file section: separator, FILE header, separator, the
// decoded body normalized to exactly one trailing newline, and a spacer line.
func (contentPackager *ContentPackager) writeEntry(bufferedWriter *bufio.Writer, entry types.FileEntry, runStatistics *statistics) error {
	header := separatorLine + "\n" + fileHeaderLabel + entry.RelativePath + "\n" + separatorLine + "\n"
	if writeError := contentPackager.writeCounted(bufferedWriter, header, runStatistics); writeError != nil {
		return writeError
	}

	body, lineCount := contentPackager.loadBody(entry)
	if writeError := contentPackager.writeCounted(bufferedWriter, body+"\n", runStatistics); writeError != nil {
		return writeError
	}

	runStatistics.fileNames = append(runStatistics.fileNames, entry.RelativePath)
	runStatistics.fileLineCounts[entry.RelativePath] = lineCount
	return nil
}

// loadBody reads and decodes one entry, returning the normalized body and its
// line count. Invalid byte sequences are replaced, never fatal. A failed read
// degrades to an inline marker with a zero line count so a single unreadable
// file cannot abort the run.
func (contentPackager *ContentPackager) loadBody(entry types.FileEntry) (string, int) {
	fileBytes, readError := os.ReadFile(entry.AbsolutePath)
	if readError != nil {
		if contentPackager.Logger != nil {
			contentPackager.Logger.Warn(warningFileReadMessage, zap.String("path", entry.RelativePath), zap.Error(readError))
		}
		return fmt.Sprintf(readErrorMarkerFormat, readError) + "\n", 0
	}
	content := strings.ToValidUTF8(string(fileBytes), string('�'))
	content = strings.TrimRight(content, "\n") + "\n"
	return content, strings.Count(content, "\n")
}

// writeCounted writes text and feeds it to the token accumulator. Token
// estimation failures degrade to an uncounted chunk; they never fail a write.
func (contentPackager *ContentPackager) writeCounted(bufferedWriter *bufio.Writer, text string, runStatistics *statistics) error {
	if _, writeError := bufferedWriter.WriteString(text); writeError != nil {
		return writeError
	}
	if contentPackager.TokenCounter == nil {
		return nil
	}
	chunkTokens, countError := contentPackager.TokenCounter.CountString(text)
	if countError != nil {
		if contentPackager.Logger != nil {
			contentPackager.Logger.Warn(warningTokenCountMessage, zap.Error(countError))
		}
		return nil
	}
	runStatistics.tokenCount += chunkTokens
	return nil
}
