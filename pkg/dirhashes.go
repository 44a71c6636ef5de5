package dupdir

import (
	"context"
	"sort"
)

// DirHashes computes one digest per ancestor directory from the dir-file
// pairs and the file digests. Each directory's digests are collected into a
// sorted set and finalized in one pass. A file with no digest is an invariant
// violation. The result is sorted by hash, then directory.
func DirHashes(algorithm *HashAlgorithm, dirFiles []DirFile, fileHashes []FileHash) ([]DirHash, error) {
	defer VerboseEnter()()

	digests := make(map[string]string, len(fileHashes))
	for _, fh := range fileHashes {
		if err := ValidatePath(fh.Path); err != nil {
			return nil, err
		}
		if prev, ok := digests[fh.Path]; ok && prev != fh.Hash {
			return nil, invariantf("conflicting digests for %s: %s and %s", fh.Path, prev, fh.Hash)
		}
		digests[fh.Path] = fh.Hash
	}

	index := newDirIndex()
	for _, df := range dirFiles {
		if err := ValidatePath(df.Ancestor); err != nil {
			return nil, err
		}
		digest, ok := digests[df.File]
		if !ok {
			return nil, invariantf("no digest for %s (member of %s)", df.File, df.Ancestor)
		}
		index.Get(df.Ancestor).digests.Add(digest)
	}

	result := make([]DirHash, 0, index.Length())
	index.ForEach(func(entry *dirEntry) bool {
		result = append(result, DirHash{Hash: entry.digests.Digest(algorithm), Dir: entry.Dir})
		return true
	})
	sortDirHashes(result)

	VerboseLog(1, "Computed %d directory digests", len(result))
	return result, nil
}

// WalkDirHashes computes the same digests as DirHashes in a single walk.
// One digest set is open per directory on the walk stack below the root,
// every file feeds all of them and a directory is finalized as it is left.
func WalkDirHashes(ctx context.Context, finder *Finder, hasher *Hasher, cache *HashCache) ([]DirHash, error) {
	defer VerboseEnter()()

	walker := &dirHashWalker{
		ctx:    ctx,
		root:   finder.Root,
		hasher: hasher,
		cache:  cache,
	}
	if err := finder.Walk(ctx, walker); err != nil {
		return nil, err
	}
	if len(walker.stack) != 0 {
		return nil, invariantf("%d directories still open after walk", len(walker.stack))
	}

	sortDirHashes(walker.result)
	VerboseLog(1, "Computed %d directory digests from %d files in one walk", len(walker.result), walker.files)
	return walker.result, nil
}

type dirFrame struct {
	dir     string
	digests *digestSet
}

type dirHashWalker struct {
	ctx    context.Context
	root   string
	hasher *Hasher
	cache  *HashCache

	stack  []dirFrame
	result []DirHash
	files  int
}

func (w *dirHashWalker) EnterDir(dir string) error {
	if isRootSentinel(dir, w.root) {
		return nil
	}
	w.stack = append(w.stack, dirFrame{dir: dir, digests: newDigestSet()})
	return nil
}

func (w *dirHashWalker) VisitFile(path string) error {
	digest, err := w.hasher.HashPath(w.ctx, path, w.cache)
	if err != nil {
		return err
	}
	w.files++
	for _, frame := range w.stack {
		frame.digests.Add(digest)
	}
	return nil
}

func (w *dirHashWalker) LeaveDir(dir string) error {
	if isRootSentinel(dir, w.root) {
		return nil
	}
	if len(w.stack) == 0 {
		return invariantf("leaving %s with no open directory", dir)
	}
	top := w.stack[len(w.stack)-1]
	if top.dir != dir {
		return invariantf("leaving %s but %s is open", dir, top.dir)
	}
	w.stack = w.stack[:len(w.stack)-1]

	if top.digests.Len() > 0 {
		w.result = append(w.result, DirHash{Hash: top.digests.Digest(w.hasher.Algorithm), Dir: dir})
	}
	return nil
}

func sortDirHashes(dirHashes []DirHash) {
	sort.Slice(dirHashes, func(i, j int) bool {
		if dirHashes[i].Hash != dirHashes[j].Hash {
			return dirHashes[i].Hash < dirHashes[j].Hash
		}
		return dirHashes[i].Dir < dirHashes[j].Dir
	})
}
