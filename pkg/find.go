package dupdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// TreeVisitor receives a depth-first walk in name order. Every EnterDir is
// matched by a LeaveDir for the same directory once its subtree is done.
type TreeVisitor interface {
	EnterDir(dir string) error
	VisitFile(path string) error
	LeaveDir(dir string) error
}

// Finder enumerates the regular files under a root. Symlinks and special
// files are skipped, as are the state directory and ignored paths.
type Finder struct {
	Root     string
	StateDir string
	Ignore   *IgnoreManager
}

// NewFinder resolves root and stateDir to absolute paths
func NewFinder(root, stateDir string, ignore *IgnoreManager) (*Finder, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", absRoot)
	}

	f := &Finder{Root: absRoot, Ignore: ignore}
	if stateDir != "" {
		if f.StateDir, err = filepath.Abs(stateDir); err != nil {
			return nil, fmt.Errorf("failed to resolve state directory %s: %w", stateDir, err)
		}
	}
	return f, nil
}

// Find returns every regular file under the root in walk order
func (f *Finder) Find(ctx context.Context) ([]string, error) {
	defer VerboseEnter()()

	collector := &fileCollector{}
	if err := f.Walk(ctx, collector); err != nil {
		return nil, err
	}
	VerboseLog(1, "Found %d files under %s", len(collector.files), f.Root)
	return collector.files, nil
}

// Walk visits the tree under the root. The root itself is entered and left
// like any other directory. Unreadable entries abort the walk.
func (f *Finder) Walk(ctx context.Context, visitor TreeVisitor) error {
	return f.walkDir(ctx, f.Root, visitor)
}

func (f *Finder) walkDir(ctx context.Context, dir string, visitor TreeVisitor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidatePath(dir); err != nil {
		return err
	}

	// os.ReadDir returns entries sorted by name
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	if err := visitor.EnterDir(dir); err != nil {
		return err
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())

		mode := entry.Type()
		if f.shouldSkip(fullPath, mode.IsDir()) {
			continue
		}
		switch {
		case mode&os.ModeSymlink != 0:
			if IsDebugEnabled("walk") {
				VerboseLog(2, "Skipping symlink %s", fullPath)
			}
		case mode.IsDir():
			if err := f.walkDir(ctx, fullPath, visitor); err != nil {
				return err
			}
		case mode.IsRegular():
			if err := ValidatePath(fullPath); err != nil {
				return err
			}
			if IsDebugEnabled("walk") {
				VerboseLog(3, "Found file %s", fullPath)
			}
			if err := visitor.VisitFile(fullPath); err != nil {
				return err
			}
		default:
			if IsDebugEnabled("walk") {
				VerboseLog(2, "Skipping special file %s", fullPath)
			}
		}
	}

	return visitor.LeaveDir(dir)
}

func (f *Finder) shouldSkip(fullPath string, isDir bool) bool {
	if f.StateDir != "" && fullPath == f.StateDir {
		return true
	}
	if f.Ignore == nil || !f.Ignore.HasPatterns() {
		return false
	}
	relPath, err := filepath.Rel(f.Root, fullPath)
	if err != nil {
		return false
	}
	return f.Ignore.ShouldIgnore(relPath, isDir)
}

type fileCollector struct {
	files []string
}

func (c *fileCollector) EnterDir(string) error { return nil }
func (c *fileCollector) LeaveDir(string) error { return nil }

func (c *fileCollector) VisitFile(path string) error {
	c.files = append(c.files, path)
	return nil
}
