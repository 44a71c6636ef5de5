package dupdir

import (
	"encoding/hex"
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

const skiplistLevels = 16

// digestSet is a sorted set of hex digests. Iteration is always in ascending
// order, which is what makes a directory digest independent of discovery order.
type digestSet struct {
	skiplist *zcsl.ZeroCopySkiplist[string, string, string]
}

func newDigestSet() *digestSet {
	getKeyFromItem := func(digest *string) string {
		return *digest
	}
	getItemSize := func(digest *string) int {
		return len(*digest)
	}
	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &digestSet{
		skiplist: zcsl.MakeZeroCopySkiplist[string, string, string](
			skiplistLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Add inserts digest, returning false if it was already present
func (ds *digestSet) Add(digest string) bool {
	if item, _ := ds.skiplist.Find(digest); item != nil {
		return false
	}
	return ds.skiplist.Insert(&digest, "")
}

// Len returns the number of distinct digests
func (ds *digestSet) Len() int {
	return ds.skiplist.Length()
}

// ForEach visits digests in ascending order until callback returns false
func (ds *digestSet) ForEach(callback func(string) bool) {
	for current := ds.skiplist.First(); current != nil; current = current.Next() {
		if !callback(*current.Item()) {
			break
		}
	}
}

// Digest hashes the concatenation of the ordered digests
func (ds *digestSet) Digest(algorithm *HashAlgorithm) string {
	hasher := algorithm.NewFunc()
	ds.ForEach(func(digest string) bool {
		hasher.Write([]byte(digest))
		return true
	})
	return hex.EncodeToString(hasher.Sum(nil))
}

// dirEntry collects what is known about one directory while grouping
type dirEntry struct {
	Dir     string
	Files   []string
	digests *digestSet
}

// dirIndex keeps directories sorted by path
type dirIndex struct {
	skiplist *zcsl.ZeroCopySkiplist[dirEntry, string, string]
}

func newDirIndex() *dirIndex {
	getKeyFromItem := func(entry *dirEntry) string {
		return entry.Dir
	}
	getItemSize := func(entry *dirEntry) int {
		return len(entry.Dir)
	}
	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &dirIndex{
		skiplist: zcsl.MakeZeroCopySkiplist[dirEntry, string, string](
			skiplistLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Get returns the entry for dir, creating it if missing
func (di *dirIndex) Get(dir string) *dirEntry {
	if item, _ := di.skiplist.Find(dir); item != nil {
		return item.Item()
	}
	di.skiplist.Insert(&dirEntry{Dir: dir, digests: newDigestSet()}, "")
	item, _ := di.skiplist.Find(dir)
	return item.Item()
}

// Length returns the number of directories
func (di *dirIndex) Length() int {
	return di.skiplist.Length()
}

// ForEach visits entries in ascending path order until callback returns false
func (di *dirIndex) ForEach(callback func(*dirEntry) bool) {
	for current := di.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item()) {
			break
		}
	}
}
