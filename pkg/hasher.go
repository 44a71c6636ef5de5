package dupdir

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Hasher computes file digests through a HashCache
type Hasher struct {
	Algorithm  *HashAlgorithm
	Workers    int
	BufferSize int

	hits   atomic.Int64
	misses atomic.Int64
}

// NewHasher creates a hasher. workers and bufferSize fall back to defaults when <= 0.
func NewHasher(algorithm *HashAlgorithm, workers, bufferSize int) *Hasher {
	if workers <= 0 {
		workers = 4
	}
	if bufferSize <= 0 {
		bufferSize = defaultHashBuffer
	}
	return &Hasher{
		Algorithm:  algorithm,
		Workers:    workers,
		BufferSize: bufferSize,
	}
}

// HashFiles returns one FileHash per path, in input order. Cached digests are
// reused, everything else is read and stored in cache. The first failure
// stops the remaining workers and is returned. cache may be nil.
func (h *Hasher) HashFiles(ctx context.Context, paths []string, cache *HashCache) ([]FileHash, error) {
	defer VerboseEnter()()

	if err := h.checkCache(cache); err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := ValidatePath(p); err != nil {
			return nil, err
		}
	}

	results := make([]FileHash, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.Workers)

	for i, p := range paths {
		g.Go(func() error {
			digest, err := h.hashPath(gctx, p, cache)
			if err != nil {
				return err
			}
			results[i] = FileHash{Hash: digest, Path: p}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	VerboseLog(1, "Hashed %d files (%d cached, %d read) with %s", len(paths), h.hits.Load(), h.misses.Load(), h.Algorithm.Name)
	return results, nil
}

// HashPath returns the digest of a single file through cache
func (h *Hasher) HashPath(ctx context.Context, path string, cache *HashCache) (string, error) {
	if err := h.checkCache(cache); err != nil {
		return "", err
	}
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	return h.hashPath(ctx, path, cache)
}

// Stats returns the cache hit and miss counts so far
func (h *Hasher) Stats() (hits, misses int64) {
	return h.hits.Load(), h.misses.Load()
}

func (h *Hasher) checkCache(cache *HashCache) error {
	if cache != nil && cache.Algorithm().TypeID != h.Algorithm.TypeID {
		return invariantf("hash cache holds %s digests but hasher uses %s", cache.Algorithm().Name, h.Algorithm.Name)
	}
	return nil
}

func (h *Hasher) hashPath(ctx context.Context, path string, cache *HashCache) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	if cache != nil {
		if digest, ok := cache.Get(absPath); ok {
			h.hits.Add(1)
			if IsDebugEnabled("hash") {
				VerboseLog(3, "Cache hit for %s", absPath)
			}
			return digest, nil
		}
	}

	sum, err := HashFile(ctx, absPath, h.Algorithm, h.BufferSize)
	if err != nil {
		return "", err
	}
	h.misses.Add(1)

	digest := hex.EncodeToString(sum)
	if cache != nil {
		cache.Put(absPath, digest)
	}
	VerboseLog(2, "Hashed %s", absPath)
	return digest, nil
}
