package dupdir

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreManager holds the regex patterns that exclude paths from enumeration.
// Patterns match paths relative to the search root with forward slashes.
// Directories are matched with a trailing slash, so "^build/$" skips a build
// directory but not a file called build.
type IgnoreManager struct {
	ignorePath string
	patterns   []*regexp.Regexp
	loaded     bool
}

// NewIgnoreManager creates an ignore manager reading <stateDir>/ignore
func NewIgnoreManager(stateDir string) *IgnoreManager {
	return &IgnoreManager{
		ignorePath: filepath.Join(stateDir, IgnoreFile),
	}
}

// LoadIgnorePatterns reads the ignore file once. Blank lines and lines
// starting with '#' are skipped. A missing file means no patterns.
func (im *IgnoreManager) LoadIgnorePatterns() error {
	if im.loaded {
		return nil
	}

	file, err := os.Open(im.ignorePath)
	if os.IsNotExist(err) {
		im.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer file.Close()

	patterns, err := ReadLines(file, parseIgnoreLine)
	if err != nil {
		return fmt.Errorf("%s: %w", im.ignorePath, err)
	}
	for _, pattern := range patterns {
		if pattern != nil {
			im.patterns = append(im.patterns, pattern)
		}
	}

	VerboseLog(2, "Loaded %d ignore patterns from %s", len(im.patterns), im.ignorePath)
	im.loaded = true
	return nil
}

// parseIgnoreLine returns nil for blank and comment lines
func parseIgnoreLine(line string) (*regexp.Regexp, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	pattern, err := regexp.Compile(line)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern %q: %w", line, err)
	}
	return pattern, nil
}

// ShouldIgnore reports whether a root-relative path matches any pattern
func (im *IgnoreManager) ShouldIgnore(relativePath string, isDir bool) bool {
	p := filepath.ToSlash(relativePath)
	if isDir {
		p += "/"
	}
	for _, pattern := range im.patterns {
		if pattern.MatchString(p) {
			return true
		}
	}
	return false
}

// AddPattern compiles and adds one pattern
func (im *IgnoreManager) AddPattern(patternStr string) error {
	pattern, err := parseIgnoreLine(patternStr)
	if err != nil {
		return err
	}
	if pattern != nil {
		im.patterns = append(im.patterns, pattern)
	}
	return nil
}

// HasPatterns returns true if there are any ignore patterns loaded
func (im *IgnoreManager) HasPatterns() bool {
	return len(im.patterns) > 0
}

// GetIgnoreFilePath returns the path to the ignore file
func (im *IgnoreManager) GetIgnoreFilePath() string {
	return im.ignorePath
}
