package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

// runCLI executes the root command in-process and returns stdout
func runCLI(t *testing.T, stateDir string, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	root.SetArgs(append([]string{"--state-dir", stateDir}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range map[string]string{
		"x/foo/hello.txt": "hello",
		"y/bar/hello.txt": "hello",
		"z/other.txt":     "other",
	} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func writeStage(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAllReportsDuplicates(t *testing.T) {
	root := makeTree(t)
	stateDir := t.TempDir()

	out, err := runCLI(t, stateDir, "", "all", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], ";"+filepath.Join(root, "x")))
	assert.True(t, strings.HasSuffix(lines[1], ";"+filepath.Join(root, "y")))
	assert.FileExists(t, filepath.Join(stateDir, dupdir.CacheIndex))
}

func TestAllFormats(t *testing.T) {
	root := makeTree(t)
	stateDir := t.TempDir()

	out, err := runCLI(t, stateDir, "", "all", "--format", "json", root)
	require.NoError(t, err)
	assert.Contains(t, out, `"duplicates": 2`)

	out, err = runCLI(t, stateDir, "", "-c", "format:yaml", "all", root)
	require.NoError(t, err)
	assert.Contains(t, out, "duplicates: 2")

	_, err = runCLI(t, stateDir, "", "all", "-f", "xml", root)
	assert.Error(t, err)
}

func TestStagesMatchAll(t *testing.T) {
	root := makeTree(t)
	stateDir := t.TempDir()
	work := t.TempDir()

	files, err := runCLI(t, stateDir, "", "find", root)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(files, "\n"))
	filesPath := writeStage(t, work, "files.txt", files)

	// hash reads its file list from stdin
	hashes, err := runCLI(t, stateDir, files, "hash", "-")
	require.NoError(t, err)
	hashesPath := writeStage(t, work, "hashes.txt", hashes)

	dirFiles, err := runCLI(t, stateDir, "", "dir-files", "--root", root, filesPath)
	require.NoError(t, err)
	dirFilesPath := writeStage(t, work, "dirfiles.txt", dirFiles)

	dirHashes, err := runCLI(t, stateDir, "", "dir-hashes", dirFilesPath, hashesPath)
	require.NoError(t, err)
	dirHashesPath := writeStage(t, work, "dirhashes.txt", dirHashes)

	dupDirs, err := runCLI(t, stateDir, "", "dup-dirs", dirHashesPath)
	require.NoError(t, err)

	all, err := runCLI(t, stateDir, "", "all", root)
	require.NoError(t, err)
	assert.Equal(t, all, dupDirs)
}

func TestCacheStats(t *testing.T) {
	root := makeTree(t)
	stateDir := t.TempDir()

	_, err := runCLI(t, stateDir, "", "all", root)
	require.NoError(t, err)

	out, err := runCLI(t, stateDir, "", "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: sha256")
	assert.Contains(t, out, "entries:   3")
	assert.Contains(t, out, "other:     0")

	out, err = runCLI(t, stateDir, "", "cache", "show")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestConfigShowAppliesOverrides(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "", "-c", "strategy:streaming", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[dirhash]")
	assert.Contains(t, out, "streaming")
}

func TestHashAlgos(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "", "hashalgos")
	require.NoError(t, err)
	assert.Contains(t, out, "sha256")
	assert.Contains(t, out, "256 bits")
	assert.Equal(t, len(dupdir.HashAlgorithmNames()), strings.Count(out, "\n"))
}

func TestMalformedInputReportsLine(t *testing.T) {
	work := t.TempDir()
	path := writeStage(t, work, "dirhashes.txt", "abcd  /a\nnot a line\n")

	_, err := runCLI(t, t.TempDir(), "", "dup-dirs", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, dupdir.ErrMalformedLine)
	assert.Contains(t, err.Error(), "line 2")
}

func TestArgumentErrors(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "dir-hashes", "only-one")
	assert.Error(t, err)

	_, err = runCLI(t, t.TempDir(), "", "-c", "bogus:1", "find", t.TempDir())
	assert.Error(t, err)
}

func TestStagesWithRelativeRoot(t *testing.T) {
	tree := makeTree(t)
	stateDir := t.TempDir()
	t.Chdir(filepath.Dir(tree))
	rel := filepath.Base(tree)

	files, err := runCLI(t, stateDir, "", "find", rel)
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(files, "\n"))

	dirFiles, err := runCLI(t, stateDir, files, "dir-files", "--root", rel, "-")
	require.NoError(t, err)
	assert.Contains(t, dirFiles, filepath.Join(tree, "x/foo")+";")
	assert.Equal(t, 5, strings.Count(dirFiles, "\n"))
}

func TestDirHashesRejectsDoubleStdin(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "dir-hashes", "-", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most one input")
}
