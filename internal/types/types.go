// Package types defines every cross-package data structure used by the ingest tool.
package types

import "strings"

// DefaultIncludePattern matches every candidate path when no include patterns are configured.
const DefaultIncludePattern = "*"

// FileEntry describes one selected file by absolute and root-relative path.
// RelativePath always uses forward slashes regardless of host operating system.
type FileEntry struct {
	AbsolutePath string
	RelativePath string
}

// IngestConfig holds the immutable parameters of one ingest run.
// Callers construct it through NewIngestConfig so defaults and pattern
// normalization are applied exactly once.
type IngestConfig struct {
	InputPath          string
	OutputPath         string
	IncludePatterns    []string
	ExcludePatterns    []string
	RespectIgnoreFiles bool
	MaxFileSizeBytes   int64
	SkipBinaryFiles    bool
}

// NewIngestConfig builds an IngestConfig from caller-supplied parameters.
// Blank patterns are dropped, an empty include list defaults to matching
// everything, and a non-positive size limit disables size filtering.
func NewIngestConfig(inputPath string, outputPath string, includePatterns []string, excludePatterns []string, respectIgnoreFiles bool, maxFileSizeBytes int64, skipBinaryFiles bool) IngestConfig {
	normalizedIncludes := normalizePatterns(includePatterns)
	if len(normalizedIncludes) == 0 {
		normalizedIncludes = []string{DefaultIncludePattern}
	}
	normalizedExcludes := normalizePatterns(excludePatterns)
	if maxFileSizeBytes < 0 {
		maxFileSizeBytes = 0
	}
	return IngestConfig{
		InputPath:          inputPath,
		OutputPath:         outputPath,
		IncludePatterns:    normalizedIncludes,
		ExcludePatterns:    normalizedExcludes,
		RespectIgnoreFiles: respectIgnoreFiles,
		MaxFileSizeBytes:   maxFileSizeBytes,
		SkipBinaryFiles:    skipBinaryFiles,
	}
}

// normalizePatterns trims each pattern and drops blank entries while preserving order.
func normalizePatterns(patterns []string) []string {
	var normalized []string
	for _, patternValue := range patterns {
		trimmedPattern := strings.TrimSpace(patternValue)
		if trimmedPattern == "" {
			continue
		}
		normalized = append(normalized, trimmedPattern)
	}
	return normalized
}

// IngestResult summarizes one completed ingest run. It is the only value
// surviving the call.
type IngestResult struct {
	OutputPath     string
	IsDirectory    bool
	Files          []string
	FileLineCounts map[string]int
	TokenCount     int
	TokenizerName  string
}
