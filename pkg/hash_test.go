package dupdir

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func mustAlgorithm(t *testing.T, name string) *HashAlgorithm {
	t.Helper()
	alg, err := GetHashAlgorithm(name)
	require.NoError(t, err)
	return alg
}

func TestHashAlgorithmSizes(t *testing.T) {
	for _, name := range HashAlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			alg := mustAlgorithm(t, name)
			assert.Equal(t, alg.Size, alg.NewFunc().Size(), "declared size must match the hash")

			byType, err := GetHashAlgorithmByType(alg.TypeID)
			require.NoError(t, err)
			assert.Equal(t, alg.Name, byType.Name)
		})
	}
}

func TestGetHashAlgorithmUnknown(t *testing.T) {
	_, err := GetHashAlgorithm("md5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported hash algorithm")

	alg, err := GetHashAlgorithm("SHA256")
	require.NoError(t, err)
	assert.Equal(t, "sha256", alg.Name)
}

func TestHashFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	alg := mustAlgorithm(t, "sha256")

	// A one byte buffer exercises the chunk loop
	for _, bufferSize := range []int{1, 3, 0, 1 << 20} {
		sum, err := HashFile(context.Background(), path, alg, bufferSize)
		require.NoError(t, err)
		assert.Equal(t, helloSHA256, hex.EncodeToString(sum), "buffer size %d", bufferSize)
	}
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(context.Background(), filepath.Join(t.TempDir(), "nope"), mustAlgorithm(t, "sha256"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHashFileCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HashFile(ctx, path, mustAlgorithm(t, "sha256"), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirectoryDigestOrderIndependence(t *testing.T) {
	alg := mustAlgorithm(t, "sha256")
	a := HashBytesToHexString([]byte("a"), alg)
	b := HashBytesToHexString([]byte("b"), alg)
	c := HashBytesToHexString([]byte("c"), alg)

	permutations := [][]string{
		{a, b, c},
		{a, c, b},
		{b, a, c},
		{b, c, a},
		{c, a, b},
		{c, b, a},
	}

	expected := DirectoryDigest(alg, permutations[0])
	for _, perm := range permutations[1:] {
		assert.Equal(t, expected, DirectoryDigest(alg, perm))
	}
}

func TestDirectoryDigestSetSemantics(t *testing.T) {
	alg := mustAlgorithm(t, "sha256")
	a := HashBytesToHexString([]byte("a"), alg)
	b := HashBytesToHexString([]byte("b"), alg)

	// Two copies of the same content count once
	assert.Equal(t, DirectoryDigest(alg, []string{a, b}), DirectoryDigest(alg, []string{a, a, b}))
	assert.NotEqual(t, DirectoryDigest(alg, []string{a}), DirectoryDigest(alg, []string{a, b}))
}

func TestDirectoryDigestIsHashOfSortedConcatenation(t *testing.T) {
	alg := mustAlgorithm(t, "sha256")
	a := HashBytesToHexString([]byte("a"), alg)
	b := HashBytesToHexString([]byte("b"), alg)

	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	expected := HashBytesToHexString([]byte(lo+hi), alg)
	assert.Equal(t, expected, DirectoryDigest(alg, []string{hi, lo}))
}
