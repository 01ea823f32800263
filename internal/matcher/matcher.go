// Package matcher evaluates relative paths against include and exclude pattern lists.
package matcher

import (
	"path"
	"strings"
)

// MatchesInclude reports whether relativePath matches at least one include pattern.
// An empty pattern list matches everything.
func MatchesInclude(relativePath string, includePatterns []string) bool {
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAny(relativePath, includePatterns)
}

// MatchesExclude reports whether relativePath matches at least one exclude pattern.
// An empty pattern list matches nothing.
func MatchesExclude(relativePath string, excludePatterns []string) bool {
	return matchesAny(relativePath, excludePatterns)
}

// matchesAny reports whether any pattern matches the candidate path.
// A pattern matches when it is a glob match against the full forward-slash
// path or its final segment, or when it occurs verbatim anywhere in the path.
// The substring fallback lets bare folder-name excludes such as "build" work
// without glob syntax; it is intentionally more permissive than glob
// semantics and is preserved for behavioral compatibility. Unparsable globs
// degrade to substring-only matching rather than being rejected.
func matchesAny(relativePath string, patterns []string) bool {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", "/")
	lastSegment := normalizedPath
	if separatorIndex := strings.LastIndex(normalizedPath, "/"); separatorIndex >= 0 {
		lastSegment = normalizedPath[separatorIndex+1:]
	}
	for _, patternValue := range patterns {
		normalizedPattern := strings.ReplaceAll(patternValue, "\\", "/")

		isMatched, matchError := path.Match(normalizedPattern, normalizedPath)
		if matchError == nil && isMatched {
			return true
		}
		if matchError == nil {
			isMatched, _ = path.Match(normalizedPattern, lastSegment)
			if isMatched {
				return true
			}
		}

		if strings.Contains(normalizedPath, normalizedPattern) {
			return true
		}
	}
	return false
}
