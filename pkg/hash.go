package dupdir

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/fnv"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashAlgorithm is the content hash strategy selected once at startup.
// NewFunc returns a fresh accumulator: Write feeds bytes, Sum finalizes.
type HashAlgorithm struct {
	Name    string
	TypeID  uint16
	Size    int
	NewFunc func() hash.Hash
}

var hashAlgorithms = map[string]*HashAlgorithm{
	"sha1": {
		Name:    "sha1",
		TypeID:  HashTypeSHA1,
		Size:    HashSizeSHA1,
		NewFunc: sha1.New,
	},
	"sha256": {
		Name:    "sha256",
		TypeID:  HashTypeSHA256,
		Size:    HashSizeSHA256,
		NewFunc: sha256.New,
	},
	"sha512": {
		Name:    "sha512",
		TypeID:  HashTypeSHA512,
		Size:    HashSizeSHA512,
		NewFunc: sha512.New,
	},
	"sha3-256": {
		Name:    "sha3-256",
		TypeID:  HashTypeSHA3_256,
		Size:    HashSizeSHA3_256,
		NewFunc: func() hash.Hash { return sha3.New256() },
	},
	"blake2b-256": {
		Name:   "blake2b-256",
		TypeID: HashTypeBLAKE2b256,
		Size:   HashSizeBLAKE2b256,
		NewFunc: func() hash.Hash {
			// Only fails for keys longer than 64 bytes
			h, _ := blake2b.New256(nil)
			return h
		},
	},
	"fnv1a-64": {
		Name:    "fnv1a-64",
		TypeID:  HashTypeFNV1a64,
		Size:    HashSizeFNV1a64,
		NewFunc: func() hash.Hash { return fnv.New64a() },
	},
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	if alg, ok := hashAlgorithms[strings.ToLower(name)]; ok {
		return alg, nil
	}
	return nil, fmt.Errorf("unsupported hash algorithm: %s (supported: %s)", name, strings.Join(HashAlgorithmNames(), ", "))
}

// GetHashAlgorithmByType returns the hash algorithm configuration for the given type ID
func GetHashAlgorithmByType(typeID uint16) (*HashAlgorithm, error) {
	for _, alg := range hashAlgorithms {
		if alg.TypeID == typeID {
			return alg, nil
		}
	}
	return nil, fmt.Errorf("unsupported hash type ID: %d", typeID)
}

// HashAlgorithmNames returns the supported algorithm names in sorted order
func HashAlgorithmNames() []string {
	names := make([]string, 0, len(hashAlgorithms))
	for name := range hashAlgorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HashFile calculates the hash of a file, reading it in bufferSize chunks.
// The context is checked between chunks so sibling workers stop after a failure.
func HashFile(ctx context.Context, filePath string, algorithm *HashAlgorithm, bufferSize int) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	if bufferSize <= 0 {
		bufferSize = defaultHashBuffer
	}

	hasher := algorithm.NewFunc()
	buffer := make([]byte, bufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	return hasher.Sum(nil), nil
}

// HashBytesToHexString hashes data and returns the digest as a hex string
func HashBytesToHexString(data []byte, algorithm *HashAlgorithm) string {
	hasher := algorithm.NewFunc()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// DirectoryDigest aggregates a directory's member file digests into one digest.
// The digests are deduplicated and sorted before hashing, so the result does not
// depend on the order they were discovered in. Two copies of the same content
// count once.
func DirectoryDigest(algorithm *HashAlgorithm, hexDigests []string) string {
	set := newDigestSet()
	for _, d := range hexDigests {
		set.Add(d)
	}
	return set.Digest(algorithm)
}
