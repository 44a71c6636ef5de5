package dupdir

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DuplicateGroup is a set of directories sharing one digest, none of them
// inside another
type DuplicateGroup struct {
	Hash  string   `json:"hash" yaml:"hash"`
	Dirs  []string `json:"dirs" yaml:"dirs"`
	Count int      `json:"count" yaml:"count"`
}

// DupDirs reduces directory digests to the duplicate roots. Directories are
// grouped by digest and unique ones dropped. Each group is ordered (see
// sortMembers) and members inside an already kept one are removed, then
// groups left with one member are dropped. The result is sorted by directory.
func DupDirs(dirHashes []DirHash, order string) []DirHash {
	defer VerboseEnter()()

	byHash := make(map[string][]string)
	var hashes []string
	for _, dh := range dirHashes {
		if _, ok := byHash[dh.Hash]; !ok {
			hashes = append(hashes, dh.Hash)
		}
		byHash[dh.Hash] = append(byHash[dh.Hash], dh.Dir)
	}

	var candidates []string
	for _, hash := range hashes {
		if len(byHash[hash]) > 1 {
			candidates = append(candidates, hash)
		}
	}

	reduced := make([][]string, len(candidates))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, hash := range candidates {
		g.Go(func() error {
			reduced[i] = reduceGroup(byHash[hash], order)
			return nil
		})
	}
	// Group reduction cannot fail
	_ = g.Wait()

	var result []DirHash
	groups := 0
	for i, hash := range candidates {
		if len(reduced[i]) <= 1 {
			continue
		}
		groups++
		for _, dir := range reduced[i] {
			result = append(result, DirHash{Hash: hash, Dir: dir})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Dir != result[j].Dir {
			return result[i].Dir < result[j].Dir
		}
		return result[i].Hash < result[j].Hash
	})

	VerboseLog(1, "Reduced %d directory digests to %d duplicate directories in %d groups",
		len(dirHashes), len(result), groups)
	return result
}

// reduceGroup keeps members that are not inside an already kept member
func reduceGroup(members []string, order string) []string {
	sorted := append([]string(nil), members...)
	sortMembers(sorted, order)

	var kept []string
	for _, member := range sorted {
		covered := false
		for _, k := range kept {
			if member == k || isPathUnder(member, k) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, member)
		} else if IsDebugEnabled("reduce") {
			VerboseLog(3, "Suppressing %s", member)
		}
	}
	return kept
}

// sortMembers orders shortest paths first so ancestors precede descendants.
// OrderDepth compares component counts before length. Ties break by path.
func sortMembers(members []string, order string) {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if order == OrderDepth {
			if da, db := pathDepth(a), pathDepth(b); da != db {
				return da < db
			}
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}

// Groups regroups a dup-dir list by digest. Groups are ordered by their first
// directory and keep the input order of directories.
func Groups(dupDirs []DirHash) []DuplicateGroup {
	index := make(map[string]int)
	var groups []DuplicateGroup
	for _, dh := range dupDirs {
		i, ok := index[dh.Hash]
		if !ok {
			i = len(groups)
			index[dh.Hash] = i
			groups = append(groups, DuplicateGroup{Hash: dh.Hash})
		}
		groups[i].Dirs = append(groups[i].Dirs, dh.Dir)
		groups[i].Count++
	}
	return groups
}
