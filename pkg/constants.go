package dupdir

// State directory layout
const (
	DefaultStateDir = ".dupdir"
	StateDirEnv     = "DUPDIR_DIR"
	CacheIndex      = "hashes.idx"
	ConfigFile      = "config"
	IgnoreFile      = "ignore"
	TempIndex       = "hashes-%d-%d.tmp"
)

// Line format separators
const (
	// UniqueSeparator joins ancestor/file and digest/dir pairs. Paths are
	// validated to never contain it.
	UniqueSeparator = ";"

	// HashSeparator joins digest and path in hash and dir-hash lists.
	HashSeparator = "  "
)

// Header and file format constants
const (
	HeaderSize          = 56 // signature(4) + byte_order(8) + version(4) + entry_count(4) + flags(2) + checksum_type(2) + checksum(32)
	ChecksumSize        = 32 // SHA-256
	EntryHeaderSize     = 12 // size(4) + hash_type(2) + digest_len(2) + path_len(4)
	CurrentIndexVersion = 1
	MaxEntrySize        = 1 << 16
)

// Byte order magic for file format validation
const ByteOrderMagic uint64 = 0x0102030405060708

// Index header flags
const (
	IndexFlagClean uint16 = 1 << 1 // Index file was written completely
)

// Hash type constants
const (
	HashTypeSHA1       uint16 = 1 // SHA-1 (20 bytes)
	HashTypeSHA256     uint16 = 2 // SHA-256 (32 bytes)
	HashTypeSHA512     uint16 = 3 // SHA-512 (64 bytes)
	HashTypeSHA3_256   uint16 = 4 // SHA3-256 (32 bytes)
	HashTypeBLAKE2b256 uint16 = 5 // BLAKE2b-256 (32 bytes)
	HashTypeFNV1a64    uint16 = 6 // FNV-1a 64 (8 bytes)
)

// Hash size constants
const (
	HashSizeSHA1       = 20
	HashSizeSHA256     = 32
	HashSizeSHA512     = 64
	HashSizeSHA3_256   = 32
	HashSizeBLAKE2b256 = 32
	HashSizeFNV1a64    = 8
)

// Directory hash strategies
const (
	StrategyBatch     = "batch"
	StrategyStreaming = "streaming"
)

// Duplicate reducer member orderings
const (
	OrderLength = "length"
	OrderDepth  = "depth"
)

// Output formats
const (
	FormatLines = "lines"
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)
