// Package walker performs the pruning filesystem traversal that selects the
// files of one ingest run.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ingest/internal/ignore"
	"github.com/temirov/ingest/internal/matcher"
	"github.com/temirov/ingest/internal/types"
	"github.com/temirov/ingest/internal/utils"
)

const (
	warningSkipDirectoryMessage  = "skipping unreadable directory"
	warningSkipIgnoreFileMessage = "skipping unreadable ignore file"
	warningStatFailedMessage     = "unable to stat entry"

	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	errorStatRootFormat     = "stat %s: %w"
)

// serviceFiles are rule carriers consumed by the traversal itself. They are
// omitted from the selection whenever ignore files are being honored.
var serviceFiles = map[string]struct{}{
	utils.IgnoreFileName:    {},
	utils.GitIgnoreFileName: {},
}

// skipReason classifies why a candidate was rejected. The predicates return
// reasons; any logging happens at the call site.
type skipReason int

const (
	skipReasonNone skipReason = iota
	skipReasonExcludePattern
	skipReasonIgnoreRule
	skipReasonFileSize
	skipReasonBinary
	skipReasonIncludeMiss
	skipReasonServiceFile
	skipReasonGitDirectory
	skipReasonSymlink
)

// String names the reason for diagnostics.
func (reason skipReason) String() string {
	switch reason {
	case skipReasonExcludePattern:
		return "exclude pattern"
	case skipReasonIgnoreRule:
		return "ignore rule"
	case skipReasonFileSize:
		return "file size limit"
	case skipReasonBinary:
		return "binary content"
	case skipReasonIncludeMiss:
		return "no include pattern match"
	case skipReasonServiceFile:
		return "ignore service file"
	case skipReasonGitDirectory:
		return "git metadata directory"
	case skipReasonSymlink:
		return "symlinked directory"
	default:
		return "none"
	}
}

// TreeWalker collects FileEntry values under a root using configured filters.
type TreeWalker struct {
	IncludePatterns    []string
	ExcludePatterns    []string
	RespectIgnoreFiles bool
	MaxFileSizeBytes   int64
	SkipBinaryFiles    bool
	Logger             *zap.Logger
}

// NewTreeWalker builds a walker from the run configuration.
func NewTreeWalker(configuration types.IngestConfig, logger *zap.Logger) *TreeWalker {
	return &TreeWalker{
		IncludePatterns:    configuration.IncludePatterns,
		ExcludePatterns:    configuration.ExcludePatterns,
		RespectIgnoreFiles: configuration.RespectIgnoreFiles,
		MaxFileSizeBytes:   configuration.MaxFileSizeBytes,
		SkipBinaryFiles:    configuration.SkipBinaryFiles,
		Logger:             logger,
	}
}

// Collect walks rootPath and returns the ordered selected entries together
// with whether the root is a directory. A missing root yields
// types.ErrNotFound; a root that is neither a regular file nor a directory
// yields types.ErrInvalidPath. A root whose contents are entirely filtered
// out returns an empty slice, not an error.
func (treeWalker *TreeWalker) Collect(rootPath string) ([]types.FileEntry, bool, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, false, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	cleanedRootPath := filepath.Clean(absoluteRootPath)

	rootInfo, statError := os.Stat(cleanedRootPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return nil, false, fmt.Errorf("%w: %s", types.ErrNotFound, rootPath)
		}
		return nil, false, fmt.Errorf(errorStatRootFormat, rootPath, statError)
	}

	if rootInfo.Mode().IsRegular() {
		entries := treeWalker.collectSingleFile(cleanedRootPath, rootInfo)
		return entries, false, nil
	}
	if !rootInfo.IsDir() {
		return nil, false, fmt.Errorf("%w: %s", types.ErrInvalidPath, rootPath)
	}

	ignoreChain := &ignore.Chain{}
	var entries []types.FileEntry
	treeWalker.walkDirectory(cleanedRootPath, cleanedRootPath, ignoreChain, &entries)
	return entries, true, nil
}

// collectSingleFile applies the file filters to a single-file root. The
// candidate path is the file's base name; its directory's ignore files still
// apply when configured.
func (treeWalker *TreeWalker) collectSingleFile(absoluteFilePath string, fileInfo os.FileInfo) []types.FileEntry {
	baseName := filepath.Base(absoluteFilePath)
	ignoreChain := &ignore.Chain{}
	if treeWalker.RespectIgnoreFiles {
		scope, scopeError := ignore.LoadScope(filepath.Dir(absoluteFilePath), "")
		if scopeError != nil {
			treeWalker.warn(warningSkipIgnoreFileMessage, filepath.Dir(absoluteFilePath), scopeError)
		}
		ignoreChain.Push(scope)
	}
	reason := treeWalker.fileSkipReason(absoluteFilePath, baseName, fileInfo.Size(), ignoreChain)
	if reason != skipReasonNone {
		treeWalker.debugSkip(baseName, reason)
		return nil
	}
	return []types.FileEntry{{AbsolutePath: absoluteFilePath, RelativePath: baseName}}
}

// walkDirectory descends into currentDirectoryPath, appending selected files
// to entries. Directory entries are visited in case-insensitive name order so
// output is reproducible across platforms.
func (treeWalker *TreeWalker) walkDirectory(currentDirectoryPath string, rootDirectoryPath string, ignoreChain *ignore.Chain, entries *[]types.FileEntry) {
	relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath)

	if treeWalker.RespectIgnoreFiles {
		scope, scopeError := ignore.LoadScope(currentDirectoryPath, relativeDirectory)
		if scopeError != nil {
			treeWalker.warn(warningSkipIgnoreFileMessage, currentDirectoryPath, scopeError)
		}
		ignoreChain.Push(scope)
		defer ignoreChain.Pop(scopeDirectory(relativeDirectory))
	}

	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		treeWalker.warn(warningSkipDirectoryMessage, currentDirectoryPath, readDirectoryError)
		return
	}
	sort.Slice(directoryEntries, func(firstIndex, secondIndex int) bool {
		firstName := directoryEntries[firstIndex].Name()
		secondName := directoryEntries[secondIndex].Name()
		firstLower := strings.ToLower(firstName)
		secondLower := strings.ToLower(secondName)
		if firstLower == secondLower {
			return firstName < secondName
		}
		return firstLower < secondLower
	})

	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(currentDirectoryPath, directoryEntry.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)

		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			targetInfo, targetStatError := os.Stat(childPath)
			if targetStatError != nil || targetInfo.IsDir() {
				treeWalker.debugSkip(relativeChildPath, skipReasonSymlink)
				continue
			}
			reason := treeWalker.fileSkipReason(childPath, relativeChildPath, targetInfo.Size(), ignoreChain)
			if reason != skipReasonNone {
				treeWalker.debugSkip(relativeChildPath, reason)
				continue
			}
			*entries = append(*entries, types.FileEntry{AbsolutePath: childPath, RelativePath: relativeChildPath})
			continue
		}

		if directoryEntry.IsDir() {
			reason := treeWalker.directorySkipReason(relativeChildPath, ignoreChain)
			if reason != skipReasonNone {
				treeWalker.debugSkip(relativeChildPath, reason)
				continue
			}
			treeWalker.walkDirectory(childPath, rootDirectoryPath, ignoreChain, entries)
			continue
		}

		entryInfo, infoError := directoryEntry.Info()
		if infoError != nil {
			treeWalker.warn(warningStatFailedMessage, childPath, infoError)
			continue
		}
		reason := treeWalker.fileSkipReason(childPath, relativeChildPath, entryInfo.Size(), ignoreChain)
		if reason != skipReasonNone {
			treeWalker.debugSkip(relativeChildPath, reason)
			continue
		}
		*entries = append(*entries, types.FileEntry{AbsolutePath: childPath, RelativePath: relativeChildPath})
	}
}

// directorySkipReason decides whether a directory subtree is pruned before
// descent. A pruned directory contributes zero descendants; include patterns
// never resurrect files inside an excluded directory.
func (treeWalker *TreeWalker) directorySkipReason(relativeDirectoryPath string, ignoreChain *ignore.Chain) skipReason {
	if treeWalker.RespectIgnoreFiles && filepath.Base(relativeDirectoryPath) == utils.GitDirectoryName {
		return skipReasonGitDirectory
	}
	if matcher.MatchesExclude(relativeDirectoryPath, treeWalker.ExcludePatterns) {
		return skipReasonExcludePattern
	}
	if treeWalker.RespectIgnoreFiles && ignoreChain.Ignored(relativeDirectoryPath, true) {
		return skipReasonIgnoreRule
	}
	return skipReasonNone
}

// fileSkipReason evaluates the per-file filters in their fixed order:
// exclude pattern, ignore rules, size limit, binary check, include pattern.
// The first rejection short-circuits, keeping I/O-bound checks last.
func (treeWalker *TreeWalker) fileSkipReason(absoluteFilePath string, relativeFilePath string, fileSizeBytes int64, ignoreChain *ignore.Chain) skipReason {
	if treeWalker.RespectIgnoreFiles {
		if _, isServiceFile := serviceFiles[filepath.Base(relativeFilePath)]; isServiceFile {
			return skipReasonServiceFile
		}
	}
	if matcher.MatchesExclude(relativeFilePath, treeWalker.ExcludePatterns) {
		return skipReasonExcludePattern
	}
	if treeWalker.RespectIgnoreFiles && ignoreChain.Ignored(relativeFilePath, false) {
		return skipReasonIgnoreRule
	}
	if treeWalker.MaxFileSizeBytes > 0 && fileSizeBytes > treeWalker.MaxFileSizeBytes {
		return skipReasonFileSize
	}
	if treeWalker.SkipBinaryFiles && utils.IsFileBinary(absoluteFilePath) {
		return skipReasonBinary
	}
	if !matcher.MatchesInclude(relativeFilePath, treeWalker.IncludePatterns) {
		return skipReasonIncludeMiss
	}
	return skipReasonNone
}

func scopeDirectory(relativeDirectory string) string {
	if relativeDirectory == "." {
		return ""
	}
	return relativeDirectory
}

func (treeWalker *TreeWalker) warn(message string, pathValue string, failure error) {
	if treeWalker.Logger == nil {
		return
	}
	treeWalker.Logger.Warn(message, zap.String("path", pathValue), zap.Error(failure))
}

func (treeWalker *TreeWalker) debugSkip(relativePath string, reason skipReason) {
	if treeWalker.Logger == nil {
		return
	}
	treeWalker.Logger.Debug("skipping entry", zap.String("path", relativePath), zap.String("reason", reason.String()))
}
