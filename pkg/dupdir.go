package dupdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// Session owns everything one run needs: the state directory, its config,
// the selected algorithm, the hash cache and the ignore patterns. The cache
// is loaded by OpenSession and persisted by Close.
type Session struct {
	StateDir string

	config        *Config
	algorithm     *HashAlgorithm
	cache         *HashCache
	ignoreManager *IgnoreManager
	hasher        *Hasher
}

// OpenSession loads the state directory, creating it with a default config
// when missing. overrides are "key:value" strings applied on top of the
// config file.
func OpenSession(stateDir string, overrides []string) (*Session, error) {
	defer VerboseEnter()()

	config, err := LoadConfig(stateDir)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyOverrides(overrides); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	algorithm, err := GetHashAlgorithm(config.GetHashConfig().Default)
	if err != nil {
		return nil, err
	}
	bufferSize, err := config.HashBufferSize()
	if err != nil {
		return nil, err
	}

	s := &Session{
		StateDir:      stateDir,
		config:        config,
		algorithm:     algorithm,
		ignoreManager: NewIgnoreManager(stateDir),
		hasher:        NewHasher(algorithm, config.GetPerformanceConfig().HashWorkers, bufferSize),
	}

	if err := s.ignoreManager.LoadIgnorePatterns(); err != nil {
		return nil, err
	}
	if err := s.checkForOrphanedIndexFiles(); err != nil {
		return nil, err
	}

	s.cache, err = LoadHashCache(filepath.Join(stateDir, CacheIndex), algorithm)
	if err != nil {
		return nil, err
	}

	VerboseLog(1, "Session opened in %s (%s, %d workers)", stateDir, algorithm.Name, s.hasher.Workers)
	return s, nil
}

// Close persists the hash cache
func (s *Session) Close() error {
	return s.cache.Save()
}

// Config returns the effective configuration, overrides included
func (s *Session) Config() *Config {
	return s.config
}

// Algorithm returns the configured hash algorithm
func (s *Session) Algorithm() *HashAlgorithm {
	return s.algorithm
}

// Cache returns the session hash cache
func (s *Session) Cache() *HashCache {
	return s.cache
}

// Hasher returns the hasher shared by every stage of the session
func (s *Session) Hasher() *Hasher {
	return s.hasher
}

// IgnoreManager returns the loaded ignore patterns
func (s *Session) IgnoreManager() *IgnoreManager {
	return s.ignoreManager
}

// NewFinder returns an enumerator for root that skips this session's state
// directory and ignored paths
func (s *Session) NewFinder(root string) (*Finder, error) {
	return NewFinder(root, s.StateDir, s.ignoreManager)
}

// Find lists the regular files under root
func (s *Session) Find(ctx context.Context, root string) ([]string, error) {
	finder, err := s.NewFinder(root)
	if err != nil {
		return nil, err
	}
	return finder.Find(ctx)
}

// HashFiles hashes paths through the session cache
func (s *Session) HashFiles(ctx context.Context, paths []string) ([]FileHash, error) {
	return s.hasher.HashFiles(ctx, paths, s.cache)
}

// DirHashes computes directory digests with the session algorithm
func (s *Session) DirHashes(dirFiles []DirFile, fileHashes []FileHash) ([]DirHash, error) {
	return DirHashes(s.algorithm, dirFiles, fileHashes)
}

// DupDirs reduces directory digests with the configured member order
func (s *Session) DupDirs(dirHashes []DirHash) []DirHash {
	return DupDirs(dirHashes, s.config.GetReduceConfig().Order)
}

// Run executes every stage on root with the configured strategy
func (s *Session) Run(ctx context.Context, root string) (*Report, error) {
	defer VerboseEnter()()

	finder, err := s.NewFinder(root)
	if err != nil {
		return nil, err
	}

	strategy := s.config.GetDirHashConfig().Strategy
	hitsBefore, missesBefore := s.hasher.Stats()

	var dirHashes []DirHash
	switch strategy {
	case StrategyStreaming:
		VerboseLog(1, "Computing directory digests in one walk of %s", finder.Root)
		dirHashes, err = WalkDirHashes(ctx, finder, s.hasher, s.cache)
		if err != nil {
			return nil, err
		}
	case StrategyBatch:
		dirHashes, err = s.runBatch(ctx, finder)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ValidateStrategy(strategy)
	}

	hits, misses := s.hasher.Stats()
	report := NewReport(s.DupDirs(dirHashes))
	report.Root = finder.Root
	report.Algorithm = s.algorithm.Name
	report.Strategy = strategy
	report.Files = int(hits - hitsBefore + misses - missesBefore)
	report.Dirs = len(dirHashes)
	return report, nil
}

func (s *Session) runBatch(ctx context.Context, finder *Finder) ([]DirHash, error) {
	VerboseLog(1, "Enumerating files under %s", finder.Root)
	files, err := finder.Find(ctx)
	if err != nil {
		return nil, err
	}

	VerboseLog(1, "Hashing %d files", len(files))
	fileHashes, err := s.HashFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	VerboseLog(1, "Expanding ancestors")
	dirFiles, err := DirFiles(files, finder.Root)
	if err != nil {
		return nil, err
	}

	VerboseLog(1, "Computing directory digests")
	return s.DirHashes(dirFiles, fileHashes)
}

// checkForOrphanedIndexFiles warns about temporary cache files left by dead processes
func (s *Session) checkForOrphanedIndexFiles() error {
	entries, err := os.ReadDir(s.StateDir)
	if err != nil {
		return fmt.Errorf("failed to read state directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "hashes-") || !strings.HasSuffix(name, ".tmp") {
			continue
		}
		pid := extractPidFromTempName(name)
		if pid > 0 && !isProcessRunning(pid) {
			Warnf("found orphaned cache file from dead process: %s (PID %d no longer running)", name, pid)
		}
	}

	return nil
}

// extractPidFromTempName extracts the PID from names like "hashes-1234-5678.tmp"
func extractPidFromTempName(filename string) int {
	base := strings.TrimSuffix(filename, ".tmp")
	parts := strings.Split(base, "-")
	if len(parts) != 3 {
		return 0
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return pid
}

// isProcessRunning checks if a process with the given PID is currently running
func isProcessRunning(pid int) bool {
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}

	if errno, ok := err.(syscall.Errno); ok {
		// EPERM means the process exists but belongs to someone else
		return errno == syscall.EPERM
	}
	return false
}
