package dupdir

import (
	"path/filepath"
	"strings"
)

// ValidatePath enforces the path rules every ingestion boundary relies on.
// The line formats cannot represent a path that breaks them.
func ValidatePath(p string) error {
	switch {
	case p == "":
		return &PathError{Path: p, Reason: "empty path"}
	case strings.ContainsRune(p, '\r'):
		return &PathError{Path: p, Reason: "contains carriage return"}
	case strings.ContainsRune(p, '\n'):
		return &PathError{Path: p, Reason: "contains line feed"}
	case strings.TrimSpace(p) != p:
		return &PathError{Path: p, Reason: "leading or trailing whitespace"}
	case strings.Contains(p, UniqueSeparator):
		return &PathError{Path: p, Reason: "contains reserved separator " + UniqueSeparator}
	}
	return nil
}

// isRootSentinel reports whether dir terminates an ancestor chain: the
// filesystem root, the empty or current-directory path, or (when set) the
// search root and anything outside it.
func isRootSentinel(dir, root string) bool {
	if dir == "" || dir == "." || dir == string(filepath.Separator) {
		return true
	}
	if root != "" {
		return !isPathUnder(dir, root)
	}
	return false
}

// Ancestors returns dir followed by each of its parents, stopping before the
// first root sentinel. Returns nil if dir is itself a sentinel.
func Ancestors(dir, root string) []string {
	if root != "" {
		root = filepath.Clean(root)
	}

	var ancestors []string
	for d := dir; !isRootSentinel(d, root); {
		ancestors = append(ancestors, d)
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return ancestors
}

// isPathUnder checks if childPath is strictly under parentPath, component-wise
func isPathUnder(childPath, parentPath string) bool {
	childPath = filepath.Clean(childPath)
	parentPath = filepath.Clean(parentPath)

	if childPath == parentPath {
		return false
	}

	// "/" already ends in a separator
	parentWithSep := parentPath
	if !strings.HasSuffix(parentWithSep, string(filepath.Separator)) {
		parentWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(childPath, parentWithSep)
}

// pathDepth counts the components of a cleaned path
func pathDepth(p string) int {
	p = filepath.Clean(p)
	if p == "." || p == string(filepath.Separator) {
		return 0
	}
	p = strings.Trim(p, string(filepath.Separator))
	return strings.Count(p, string(filepath.Separator)) + 1
}
