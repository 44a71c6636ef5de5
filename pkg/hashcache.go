package dupdir

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"sync"
)

// HashCache maps absolute file paths to hex digests for one hash algorithm.
// It is loaded once, filled by the hasher and saved at the end of a run.
// Nothing is ever invalidated: a file changed since it was cached keeps its
// old digest.
type HashCache struct {
	mu        sync.RWMutex
	indexPath string
	algorithm *HashAlgorithm
	entries   map[string]string

	// foreign holds entries recorded under another algorithm. They are never
	// served but are written back so switching algorithms loses nothing.
	foreign []indexEntry
	dirty   bool
}

// NewHashCache creates an empty cache persisted at indexPath. An empty
// indexPath gives a cache that is never saved.
func NewHashCache(indexPath string, algorithm *HashAlgorithm) *HashCache {
	return &HashCache{
		indexPath: indexPath,
		algorithm: algorithm,
		entries:   make(map[string]string),
	}
}

// LoadHashCache reads the cache index at indexPath. A missing index yields an
// empty cache. A damaged one is an error wrapping ErrCorruptCache.
func LoadHashCache(indexPath string, algorithm *HashAlgorithm) (*HashCache, error) {
	defer VerboseEnter()()

	hc := NewHashCache(indexPath, algorithm)

	entries, err := readIndexFile(indexPath)
	if os.IsNotExist(err) {
		VerboseLog(1, "No hash cache at %s, starting empty", indexPath)
		return hc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hash cache %s: %w", indexPath, err)
	}

	for _, entry := range entries {
		if entry.HashType != algorithm.TypeID {
			hc.foreign = append(hc.foreign, entry)
			continue
		}
		if len(entry.Digest) != algorithm.Size {
			return nil, fmt.Errorf("%w: %s digest for %s has %d bytes, expected %d",
				ErrCorruptCache, algorithm.Name, entry.Path, len(entry.Digest), algorithm.Size)
		}
		hc.entries[entry.Path] = hex.EncodeToString(entry.Digest)
	}

	if len(hc.foreign) > 0 {
		VerboseLog(1, "Ignoring %d cache entries recorded with another hash algorithm", len(hc.foreign))
	}
	VerboseLog(1, "Loaded %d cached %s digests from %s", len(hc.entries), algorithm.Name, indexPath)
	return hc, nil
}

// Get returns the cached digest for an absolute path
func (hc *HashCache) Get(path string) (string, bool) {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	digest, ok := hc.entries[path]
	return digest, ok
}

// Put records the digest for an absolute path
func (hc *HashCache) Put(path, digest string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if old, ok := hc.entries[path]; ok && old == digest {
		return
	}
	hc.entries[path] = digest
	hc.dirty = true
}

// Len returns the number of digests usable with the current algorithm
func (hc *HashCache) Len() int {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return len(hc.entries)
}

// ForeignLen returns the number of entries recorded under other algorithms
func (hc *HashCache) ForeignLen() int {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return len(hc.foreign)
}

// Entries returns all usable entries sorted by path
func (hc *HashCache) Entries() []FileHash {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	result := make([]FileHash, 0, len(hc.entries))
	for path, digest := range hc.entries {
		result = append(result, FileHash{Hash: digest, Path: path})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

// Algorithm returns the algorithm the cache serves
func (hc *HashCache) Algorithm() *HashAlgorithm {
	return hc.algorithm
}

// IndexPath returns where the cache is persisted
func (hc *HashCache) IndexPath() string {
	return hc.indexPath
}

// Save persists the cache if anything changed since it was loaded
func (hc *HashCache) Save() error {
	defer VerboseEnter()()

	if hc.indexPath == "" {
		return nil
	}

	hc.mu.Lock()
	defer hc.mu.Unlock()

	if !hc.dirty {
		VerboseLog(2, "Hash cache unchanged, not rewriting %s", hc.indexPath)
		return nil
	}

	paths := make([]string, 0, len(hc.entries))
	for path := range hc.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	entries := make([]indexEntry, 0, len(paths)+len(hc.foreign))
	for _, path := range paths {
		digest, err := hex.DecodeString(hc.entries[path])
		if err != nil {
			return invariantf("cached digest for %s is not hex: %v", path, err)
		}
		entries = append(entries, indexEntry{
			HashType: hc.algorithm.TypeID,
			Digest:   digest,
			Path:     path,
		})
	}
	entries = append(entries, hc.foreign...)

	if err := writeIndexFile(hc.indexPath, entries); err != nil {
		return fmt.Errorf("failed to save hash cache: %w", err)
	}
	hc.dirty = false
	return nil
}
