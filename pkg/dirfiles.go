package dupdir

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DirFiles expands every file into one pair per ancestor directory, see
// Ancestors for where the chain stops. Pairs come out grouped by ancestor in
// ascending path order, with files in input order inside each group. A file
// whose parent already ends the chain contributes nothing. With a root, a
// relative root is resolved against the working directory for absolute
// files, and a file outside the root is an invalid path.
func DirFiles(files []string, root string) ([]DirFile, error) {
	defer VerboseEnter()()

	roots, err := newSearchRoot(root)
	if err != nil {
		return nil, err
	}

	index := newDirIndex()
	pairs := 0
	skipped := 0
	for _, file := range files {
		if err := ValidatePath(file); err != nil {
			return nil, err
		}

		fileRoot, err := roots.forFile(file)
		if err != nil {
			return nil, err
		}

		ancestors := Ancestors(filepath.Dir(file), fileRoot)
		if len(ancestors) == 0 {
			skipped++
			if IsDebugEnabled("ancestors") {
				VerboseLog(3, "No ancestors for %s", file)
			}
			continue
		}
		for _, ancestor := range ancestors {
			entry := index.Get(ancestor)
			entry.Files = append(entry.Files, file)
			pairs++
		}
	}

	result := make([]DirFile, 0, pairs)
	index.ForEach(func(entry *dirEntry) bool {
		for _, file := range entry.Files {
			result = append(result, DirFile{Ancestor: entry.Dir, File: file})
		}
		return true
	})

	VerboseLog(1, "Expanded %d files into %d pairs over %d directories (%d without ancestors)",
		len(files), len(result), index.Length(), skipped)
	return result, nil
}

// searchRoot holds a search root in the forms input files may be given in
type searchRoot struct {
	rel string
	abs string
}

func newSearchRoot(root string) (*searchRoot, error) {
	if root == "" {
		return &searchRoot{}, nil
	}
	if err := ValidatePath(root); err != nil {
		return nil, err
	}

	r := &searchRoot{}
	root = filepath.Clean(root)
	if filepath.IsAbs(root) {
		r.abs = root
		return r, nil
	}
	r.rel = root
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	r.abs = abs
	return r, nil
}

// forFile returns the root to stop file's ancestor chain at, in the same
// form as file. "" means only the sentinels end the chain.
func (r *searchRoot) forFile(file string) (string, error) {
	if r.abs == "" {
		return "", nil
	}

	root := r.abs
	if !filepath.IsAbs(file) {
		if r.rel == "" {
			return "", &PathError{Path: file, Reason: "relative path with absolute search root " + r.abs}
		}
		root = r.rel
	}

	clean := filepath.Clean(file)
	switch {
	case root == ".":
		// "." already ends every relative chain
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return "", &PathError{Path: file, Reason: "outside search root ."}
		}
		return "", nil
	case !isPathUnder(clean, root):
		return "", &PathError{Path: file, Reason: "outside search root " + root}
	}
	return root, nil
}
