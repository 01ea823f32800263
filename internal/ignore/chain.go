package ignore

import "strings"

// Chain is an ordered stack of scopes from the walk root (index zero) to the
// directory currently being traversed. The walker pushes a scope when it
// enters a directory carrying ignore rules and pops it when the directory's
// subtree is done.
type Chain struct {
	scopes []*Scope
}

// Push appends a scope to the chain. Nil scopes are dropped so callers can
// push the result of LoadScope unconditionally.
func (chain *Chain) Push(scope *Scope) {
	if scope == nil {
		return
	}
	chain.scopes = append(chain.scopes, scope)
}

// Pop removes the most specific scope if it belongs to the provided relative
// directory. Directories without ignore files never pushed a scope, so the
// pop is conditional.
func (chain *Chain) Pop(relativeDirectory string) {
	if relativeDirectory == "." {
		relativeDirectory = ""
	}
	if len(chain.scopes) == 0 {
		return
	}
	if chain.scopes[len(chain.scopes)-1].Directory == relativeDirectory {
		chain.scopes = chain.scopes[:len(chain.scopes)-1]
	}
}

// Len returns the number of scopes currently on the chain.
func (chain *Chain) Len() int {
	return len(chain.scopes)
}

// Ignored resolves the chain's verdict for a candidate path relative to the
// walk root. Scopes are consulted from root-most to most specific; a more
// specific scope overrides less specific ones only when one of its rules
// actually matches the candidate. When no rule in any scope matches, the
// candidate is kept.
func (chain *Chain) Ignored(rootRelativePath string, isDirectory bool) bool {
	finalVerdict := false
	for _, scope := range chain.scopes {
		scopeRelativePath, applies := scope.relativize(rootRelativePath)
		if !applies {
			continue
		}
		verdict, matched := scope.Match(scopeRelativePath, isDirectory)
		if matched {
			finalVerdict = verdict
		}
	}
	return finalVerdict
}

// relativize converts a root-relative candidate path into the scope's own
// coordinate space. The scope applies only to candidates strictly below its
// directory.
func (scope *Scope) relativize(rootRelativePath string) (string, bool) {
	if scope.Directory == "" {
		return rootRelativePath, true
	}
	prefix := scope.Directory + pathSeparator
	if !strings.HasPrefix(rootRelativePath, prefix) {
		return "", false
	}
	return strings.TrimPrefix(rootRelativePath, prefix), true
}
