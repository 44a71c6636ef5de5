// Package dupdir finds directories whose file contents duplicate another
// directory elsewhere in a tree, even after renames and moves.
//
// # Pipeline
//
// Each stage consumes the output of the previous one and has a line format
// so stages can be run separately:
//
//	paths -> FileHash -> DirFile -> DirHash -> duplicate DirHash
//
// Finder enumerates regular files. Hasher digests them through a HashCache.
// DirFiles pairs every file with each of its ancestor directories. DirHashes
// (or WalkDirHashes in a single walk) aggregates the unique file digests under
// every directory into one order-independent digest. DupDirs groups the
// directories by digest and keeps only the outermost members of each group.
//
// # Core API
//
// A Session wires the stages to a state directory holding the config, ignore
// patterns and the persistent hash cache:
//
//	s, err := dupdir.OpenSession(".dupdir", nil)
//	if err != nil {
//		return err
//	}
//	report, err := s.Run(ctx, "/path/to/tree")
//	if err != nil {
//		return err
//	}
//	if err := s.Close(); err != nil {
//		return err
//	}
//	report.Render(os.Stdout, dupdir.FormatHuman)
//
// # Limitations
//
// A directory digest covers the set of distinct file digests under it, so
// two copies of a file count once. Cached digests are never invalidated: a
// file modified after it was cached keeps its old digest.
package dupdir
