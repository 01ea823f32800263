// Package ignore parses ignore files and resolves layered ignore rules
// during directory traversal. One Scope holds the rules of one directory's
// ignore files; a Chain stacks scopes from the walk root down to the
// directory currently being visited.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/temirov/ingest/internal/utils"
)

const (
	commentPrefix  = "#"
	negationPrefix = "!"
	pathSeparator  = "/"
)

// Rule is one parsed ignore-file line.
type Rule struct {
	Pattern       string
	Negated       bool
	DirectoryOnly bool
	Anchored      bool
}

// Scope holds the ordered rules loaded from one directory's ignore files,
// anchored at that directory. Directory is the forward-slash path of the
// scope directory relative to the walk root; the root scope uses "".
type Scope struct {
	Directory string
	Rules     []Rule
}

// ParseRules parses ignore-file content into ordered rules. Blank lines and
// comment lines are skipped. A leading "!" negates, a trailing "/" restricts
// the rule to directories, and any remaining "/", leading or interior,
// anchors the rule to the scope directory.
func ParseRules(content []byte) []Rule {
	var rules []Rule
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		rule := Rule{}
		if strings.HasPrefix(trimmedLine, negationPrefix) {
			rule.Negated = true
			trimmedLine = strings.TrimSpace(strings.TrimPrefix(trimmedLine, negationPrefix))
			if trimmedLine == "" {
				continue
			}
		}
		if strings.HasSuffix(trimmedLine, pathSeparator) {
			rule.DirectoryOnly = true
			trimmedLine = strings.TrimSuffix(trimmedLine, pathSeparator)
		}
		// Anchoring is decided before the leading slash is stripped: a
		// pattern like /build.txt anchors to the scope directory even
		// though its stored form carries no separator.
		rule.Anchored = strings.Contains(trimmedLine, pathSeparator)
		trimmedLine = strings.TrimPrefix(trimmedLine, pathSeparator)
		if trimmedLine == "" {
			continue
		}
		rule.Pattern = trimmedLine
		rules = append(rules, rule)
	}
	return rules
}

// LoadScope reads the ignore files of one directory and returns the resulting
// scope. The .ignore file is read before .gitignore, matching the loading
// order used for combined pattern aggregation. A missing or empty ignore file
// contributes no rules; when no rules remain the scope is nil, not an error.
func LoadScope(absoluteDirectoryPath string, relativeDirectory string) (*Scope, error) {
	var rules []Rule
	for _, ignoreFileName := range []string{utils.IgnoreFileName, utils.GitIgnoreFileName} {
		ignoreFilePath := filepath.Join(absoluteDirectoryPath, ignoreFileName)
		content, readError := os.ReadFile(ignoreFilePath)
		if readError != nil {
			if os.IsNotExist(readError) {
				continue
			}
			return nil, fmt.Errorf("loading %s from %s: %w", ignoreFileName, absoluteDirectoryPath, readError)
		}
		rules = append(rules, ParseRules(content)...)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	if relativeDirectory == "." {
		relativeDirectory = ""
	}
	return &Scope{Directory: relativeDirectory, Rules: rules}, nil
}

// Match evaluates a scope-relative candidate path against the scope's rules
// in file order. The last matching rule wins; its negation flag determines
// whether the candidate is ignored. The second return value reports whether
// any rule matched at all.
func (scope *Scope) Match(scopeRelativePath string, isDirectory bool) (bool, bool) {
	ignored := false
	matched := false
	for _, rule := range scope.Rules {
		if rule.matches(scopeRelativePath, isDirectory) {
			matched = true
			ignored = !rule.Negated
		}
	}
	return ignored, matched
}

// matches reports whether the rule applies to the candidate. Directory-only
// rules match only directory candidates, which are evaluated as if they
// carried a trailing slash. Unanchored rules match the candidate's final
// segment at any depth; anchored rules match segment-wise from the scope
// directory, with directory rules also covering every descendant.
func (rule Rule) matches(scopeRelativePath string, isDirectory bool) bool {
	if rule.DirectoryOnly && !isDirectory {
		return false
	}
	pathSegments := strings.Split(scopeRelativePath, pathSeparator)
	lastSegment := pathSegments[len(pathSegments)-1]

	if !rule.Anchored {
		isMatched, matchError := path.Match(rule.Pattern, lastSegment)
		return matchError == nil && isMatched
	}

	patternSegments := strings.Split(rule.Pattern, pathSeparator)
	if rule.DirectoryOnly {
		if len(pathSegments) < len(patternSegments) {
			return false
		}
		return segmentsMatch(pathSegments[:len(patternSegments)], patternSegments)
	}
	if len(pathSegments) != len(patternSegments) {
		return false
	}
	return segmentsMatch(pathSegments, patternSegments)
}

// segmentsMatch reports whether each pattern segment matches the
// corresponding path segment using path.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		isMatched, matchError := path.Match(patternSegment, pathSegments[segmentIndex])
		if matchError != nil || !isMatched {
			return false
		}
	}
	return true
}
