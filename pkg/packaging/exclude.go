package packaging

import "github.com/bmatcuk/doublestar/v4"

// DefaultExcludePatterns is the explicit denylist of VCS/editor/build
// artifacts skipped during enumeration. Exclusion is always driven by
// this list (plus any user-supplied patterns), never by OS hidden-file
// semantics, which differ across platforms. Patterns match against
// slash-separated paths relative to the skill root.
var DefaultExcludePatterns = []string{
	".*",              // top-level dotfiles and dot-directories (.git, .DS_Store, ...)
	"**/.*",           // nested dotfiles and dot-directories
	"__pycache__",     // Python bytecode caches
	"**/__pycache__",  //
	"node_modules",    // vendored JS dependencies
	"**/node_modules", //
	"**/*.pyc",
	"**/*.pyo",
	"**/Thumbs.db",
	"**/desktop.ini",
}

// excluder matches relative paths against a set of doublestar patterns.
type excluder struct {
	patterns []string
}

func newExcluder(extra []string) *excluder {
	patterns := make([]string, 0, len(DefaultExcludePatterns)+len(extra))
	patterns = append(patterns, DefaultExcludePatterns...)
	patterns = append(patterns, extra...)
	return &excluder{patterns: patterns}
}

// matches reports whether the slash-relative path is excluded. Matching
// a directory path prunes the whole subtree.
func (e *excluder) matches(relPath string) bool {
	for _, pattern := range e.patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
