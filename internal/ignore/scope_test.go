package ignore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/ingest/internal/ignore"
)

// TestParseRules verifies comment and blank handling plus the rule flags.
func TestParseRules(testingHandle *testing.T) {
	content := []byte("# comment\n\n*.log\n!debug.log\nbuild/\n/anchored.txt\nsub/dir.txt\n")
	rules := ignore.ParseRules(content)
	if len(rules) != 5 {
		testingHandle.Fatalf("expected 5 rules, got %d", len(rules))
	}
	if rules[0].Pattern != "*.log" || rules[0].Negated || rules[0].DirectoryOnly || rules[0].Anchored {
		testingHandle.Fatalf("unexpected first rule: %+v", rules[0])
	}
	if rules[1].Pattern != "debug.log" || !rules[1].Negated {
		testingHandle.Fatalf("expected negated second rule, got %+v", rules[1])
	}
	if rules[2].Pattern != "build" || !rules[2].DirectoryOnly {
		testingHandle.Fatalf("expected directory-only third rule, got %+v", rules[2])
	}
	if rules[3].Pattern != "anchored.txt" || !rules[3].Anchored {
		testingHandle.Fatalf("expected leading slash stripped but anchoring kept on fourth rule, got %+v", rules[3])
	}
	if rules[4].Pattern != "sub/dir.txt" || !rules[4].Anchored {
		testingHandle.Fatalf("expected anchored fifth rule, got %+v", rules[4])
	}
}

// TestScopeMatchLastRuleWins verifies in-scope ordering: the last matching
// rule determines the verdict, enabling un-ignore via negation.
func TestScopeMatchLastRuleWins(testingHandle *testing.T) {
	scope := &ignore.Scope{Rules: ignore.ParseRules([]byte("*.log\n!debug.log\n"))}

	ignored, matched := scope.Match("other.log", false)
	if !matched || !ignored {
		testingHandle.Fatalf("expected other.log ignored, got ignored=%v matched=%v", ignored, matched)
	}
	ignored, matched = scope.Match("debug.log", false)
	if !matched || ignored {
		testingHandle.Fatalf("expected debug.log kept by negation, got ignored=%v matched=%v", ignored, matched)
	}
	_, matched = scope.Match("readme.md", false)
	if matched {
		testingHandle.Fatalf("expected no rule to match readme.md")
	}
}

// TestScopeDirectoryOnlyRules verifies that trailing-slash rules apply only
// to directory candidates, which carry an implicit trailing slash.
func TestScopeDirectoryOnlyRules(testingHandle *testing.T) {
	scope := &ignore.Scope{Rules: ignore.ParseRules([]byte("build/\n"))}

	ignored, matched := scope.Match("build", true)
	if !matched || !ignored {
		testingHandle.Fatalf("expected directory candidate to match directory-only rule")
	}
	_, matched = scope.Match("build", false)
	if matched {
		testingHandle.Fatalf("expected file candidate not to match directory-only rule")
	}
}

// TestScopeAnchoredDirectoryRuleCoversDescendants verifies that an anchored
// directory rule matches the directory and everything below it.
func TestScopeAnchoredDirectoryRuleCoversDescendants(testingHandle *testing.T) {
	scope := &ignore.Scope{Rules: ignore.ParseRules([]byte("sub/cache/\n"))}

	ignored, matched := scope.Match("sub/cache", true)
	if !matched || !ignored {
		testingHandle.Fatalf("expected sub/cache directory to match")
	}
	ignored, matched = scope.Match("sub/cache/deep", true)
	if !matched || !ignored {
		testingHandle.Fatalf("expected descendant directory to match")
	}
	_, matched = scope.Match("sub/other", true)
	if matched {
		testingHandle.Fatalf("expected sibling directory not to match")
	}
}

// TestScopeLeadingSlashAnchorsToScopeDirectory verifies that a leading-slash
// pattern matches only directly inside the scope directory, never deeper.
func TestScopeLeadingSlashAnchorsToScopeDirectory(testingHandle *testing.T) {
	scope := &ignore.Scope{Rules: ignore.ParseRules([]byte("/build.txt\n"))}

	ignored, matched := scope.Match("build.txt", false)
	if !matched || !ignored {
		testingHandle.Fatalf("expected build.txt at scope root to match")
	}
	_, matched = scope.Match("sub/build.txt", false)
	if matched {
		testingHandle.Fatalf("expected nested build.txt not to match anchored rule")
	}
}

// TestChainChildScopeOverridesParent verifies the cross-scope precedence: the
// most specific scope's verdict overrides less specific ones only when one of
// its rules actually matches.
func TestChainChildScopeOverridesParent(testingHandle *testing.T) {
	chain := &ignore.Chain{}
	chain.Push(&ignore.Scope{Directory: "", Rules: ignore.ParseRules([]byte("*.log\n"))})
	chain.Push(&ignore.Scope{Directory: "childdir", Rules: ignore.ParseRules([]byte("!debug.log\n"))})

	if chain.Ignored("childdir/debug.log", false) {
		testingHandle.Fatalf("expected child scope to un-ignore childdir/debug.log")
	}
	if !chain.Ignored("childdir/other.log", false) {
		testingHandle.Fatalf("expected parent scope to keep childdir/other.log ignored")
	}
	if !chain.Ignored("trace.log", false) {
		testingHandle.Fatalf("expected root-level log ignored by parent scope")
	}
	if chain.Ignored("notes.txt", false) {
		testingHandle.Fatalf("expected unmatched candidate to be kept")
	}
}

// TestChainPushPop verifies that nil scopes are dropped and pops are
// conditional on the scope's directory.
func TestChainPushPop(testingHandle *testing.T) {
	chain := &ignore.Chain{}
	chain.Push(nil)
	if chain.Len() != 0 {
		testingHandle.Fatalf("expected nil push to be dropped")
	}
	chain.Push(&ignore.Scope{Directory: "sub", Rules: ignore.ParseRules([]byte("*.tmp\n"))})
	chain.Pop("other")
	if chain.Len() != 1 {
		testingHandle.Fatalf("expected pop of foreign directory to be a no-op")
	}
	chain.Pop("sub")
	if chain.Len() != 0 {
		testingHandle.Fatalf("expected scope popped for its own directory")
	}
}

// TestLoadScope verifies loading from both ignore files and the nil result
// for directories without rules.
func TestLoadScope(testingHandle *testing.T) {
	scopeDirectory := testingHandle.TempDir()
	writeError := os.WriteFile(filepath.Join(scopeDirectory, ".gitignore"), []byte("*.log\n"), 0o644)
	if writeError != nil {
		testingHandle.Fatalf("writing .gitignore: %v", writeError)
	}
	writeError = os.WriteFile(filepath.Join(scopeDirectory, ".ignore"), []byte("secret.txt\n"), 0o644)
	if writeError != nil {
		testingHandle.Fatalf("writing .ignore: %v", writeError)
	}

	scope, loadError := ignore.LoadScope(scopeDirectory, ".")
	if loadError != nil {
		testingHandle.Fatalf("LoadScope error: %v", loadError)
	}
	if scope == nil || len(scope.Rules) != 2 {
		testingHandle.Fatalf("expected scope with 2 rules, got %+v", scope)
	}
	if scope.Directory != "" {
		testingHandle.Fatalf("expected root scope directory normalized to empty, got %q", scope.Directory)
	}

	emptyDirectory := testingHandle.TempDir()
	scope, loadError = ignore.LoadScope(emptyDirectory, "")
	if loadError != nil {
		testingHandle.Fatalf("LoadScope on empty directory: %v", loadError)
	}
	if scope != nil {
		testingHandle.Fatalf("expected nil scope for directory without ignore files")
	}
}
