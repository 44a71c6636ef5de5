package dupdir

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"

	"github.com/google/vectorio"
	"golang.org/x/sys/unix"
)

// indexSignature identifies a hash cache index file
var indexSignature = [4]byte{'d', 'd', 'h', 'c'}

// maxIovecs bounds a single writev call, conservative per golang/go#58623
const maxIovecs = 1024

// indexHeader is the fixed header at the start of a hash cache index.
// Fields are stored in host byte order, ByteOrder detects a foreign host.
type indexHeader struct {
	Signature    [4]byte
	ByteOrder    uint64
	Version      uint32
	EntryCount   uint32
	Flags        uint16
	ChecksumType uint16
	Checksum     [ChecksumSize]byte
}

func newIndexHeader(entryCount int) *indexHeader {
	return &indexHeader{
		Signature:    indexSignature,
		ByteOrder:    ByteOrderMagic,
		Version:      CurrentIndexVersion,
		EntryCount:   uint32(entryCount),
		ChecksumType: HashTypeSHA256,
	}
}

func (h *indexHeader) isClean() bool {
	return h.Flags&IndexFlagClean != 0
}

func (h *indexHeader) setClean() {
	h.Flags |= IndexFlagClean
}

// marshal encodes the header into buf, which must be HeaderSize bytes
func (h *indexHeader) marshal(buf []byte) {
	order := binary.NativeEndian
	copy(buf[0:4], h.Signature[:])
	order.PutUint64(buf[4:12], h.ByteOrder)
	order.PutUint32(buf[12:16], h.Version)
	order.PutUint32(buf[16:20], h.EntryCount)
	order.PutUint16(buf[20:22], h.Flags)
	order.PutUint16(buf[22:24], h.ChecksumType)
	copy(buf[24:HeaderSize], h.Checksum[:])
}

// parseIndexHeader decodes and validates everything in the header that does
// not depend on the entry data
func parseIndexHeader(data []byte) (*indexHeader, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: file too small for header (%d bytes)", ErrCorruptCache, len(data))
	}

	order := binary.NativeEndian
	h := &indexHeader{}
	copy(h.Signature[:], data[0:4])
	h.ByteOrder = order.Uint64(data[4:12])
	h.Version = order.Uint32(data[12:16])
	h.EntryCount = order.Uint32(data[16:20])
	h.Flags = order.Uint16(data[20:22])
	h.ChecksumType = order.Uint16(data[22:24])
	copy(h.Checksum[:], data[24:HeaderSize])

	if h.Signature != indexSignature {
		return nil, fmt.Errorf("%w: invalid signature %q", ErrCorruptCache, h.Signature[:])
	}
	if h.ByteOrder != ByteOrderMagic {
		return nil, fmt.Errorf("%w: byte order mismatch (0x%x)", ErrCorruptCache, h.ByteOrder)
	}
	if h.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptCache, h.Version)
	}
	if !h.isClean() {
		return nil, fmt.Errorf("%w: index was not written completely", ErrCorruptCache)
	}
	if h.ChecksumType != HashTypeSHA256 {
		return nil, fmt.Errorf("%w: unsupported checksum type %d", ErrCorruptCache, h.ChecksumType)
	}
	return h, nil
}

// indexEntry is one cached digest as stored on disk
type indexEntry struct {
	HashType uint16
	Digest   []byte
	Path     string
}

func (e *indexEntry) size() int {
	return alignTo8(EntryHeaderSize + len(e.Digest) + len(e.Path))
}

var zeroPadding [8]byte

func byteIovec(b []byte) syscall.Iovec {
	iov := syscall.Iovec{Base: &b[0]}
	iov.SetLen(len(b))
	return iov
}

// writeIndexFile writes entries to a temp file beside indexPath, syncs it
// and renames it into place
func writeIndexFile(indexPath string, entries []indexEntry) error {
	defer VerboseEnter()()

	var entryIovecs []syscall.Iovec
	checksum := sha256.New()
	totalEntrySize := 0

	for i := range entries {
		e := &entries[i]
		size := e.size()
		if size > MaxEntrySize {
			return fmt.Errorf("cache entry for %s too large (%d bytes)", e.Path, size)
		}

		entryHeader := make([]byte, EntryHeaderSize)
		binary.NativeEndian.PutUint32(entryHeader[0:4], uint32(size))
		binary.NativeEndian.PutUint16(entryHeader[4:6], e.HashType)
		binary.NativeEndian.PutUint16(entryHeader[6:8], uint16(len(e.Digest)))
		binary.NativeEndian.PutUint32(entryHeader[8:12], uint32(len(e.Path)))

		pathBytes := []byte(e.Path)
		parts := [][]byte{entryHeader, e.Digest, pathBytes}
		if pad := size - EntryHeaderSize - len(e.Digest) - len(e.Path); pad > 0 {
			parts = append(parts, zeroPadding[:pad])
		}
		for _, part := range parts {
			if len(part) == 0 {
				continue
			}
			checksum.Write(part)
			entryIovecs = append(entryIovecs, byteIovec(part))
		}
		totalEntrySize += size
	}

	tempPath := generateTempFileName(indexPath)
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp index file %s: %w", tempPath, err)
	}
	committed := false
	defer func() {
		file.Close()
		if !committed {
			os.Remove(tempPath)
		}
	}()

	// Header goes out unclean first and is rewritten once the entries are down
	header := newIndexHeader(len(entries))
	headerBytes := make([]byte, HeaderSize)
	header.marshal(headerBytes)
	headerIovec := byteIovec(headerBytes)

	if nw, err := vectorio.WritevRaw(uintptr(file.Fd()), []syscall.Iovec{headerIovec}); err != nil {
		return fmt.Errorf("failed to write header with vectorio: %w", err)
	} else if nw != HeaderSize {
		return fmt.Errorf("header write incomplete: wrote %d bytes, expected %d", nw, HeaderSize)
	}

	totalWritten := 0
	for offset := 0; offset < len(entryIovecs); offset += maxIovecs {
		end := offset + maxIovecs
		if end > len(entryIovecs) {
			end = len(entryIovecs)
		}
		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), entryIovecs[offset:end])
		if err != nil {
			return fmt.Errorf("failed to write entries chunk with vectorio: %w", err)
		}
		totalWritten += nw
	}
	if totalWritten != totalEntrySize {
		return fmt.Errorf("entries write incomplete: wrote %d bytes, expected %d", totalWritten, totalEntrySize)
	}

	header.setClean()
	copy(header.Checksum[:], checksum.Sum(nil))
	header.marshal(headerBytes)

	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to seek to beginning for final header: %w", err)
	}
	if nw, err := vectorio.WritevRaw(uintptr(file.Fd()), []syscall.Iovec{headerIovec}); err != nil {
		return fmt.Errorf("failed to write final header with vectorio: %w", err)
	} else if nw != HeaderSize {
		return fmt.Errorf("final header write incomplete: wrote %d bytes, expected %d", nw, HeaderSize)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp index: %w", err)
	}
	if err := os.Rename(tempPath, indexPath); err != nil {
		return fmt.Errorf("failed to rename temp index into place: %w", err)
	}
	committed = true

	VerboseLog(2, "Wrote %d cache entries (%d bytes) to %s", len(entries), HeaderSize+totalEntrySize, indexPath)
	return nil
}

// readIndexFile maps indexPath and decodes every entry. Any structural
// problem is reported as ErrCorruptCache. A missing file is returned as an
// error satisfying os.IsNotExist.
func readIndexFile(indexPath string) ([]indexEntry, error) {
	defer VerboseEnter()()

	file, err := os.Open(indexPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat index file: %w", err)
	}
	if stat.Size() < HeaderSize {
		return nil, fmt.Errorf("%w: file too small for header (%d bytes)", ErrCorruptCache, stat.Size())
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap index file: %w", err)
	}
	defer unix.Munmap(data)

	header, err := parseIndexHeader(data)
	if err != nil {
		return nil, err
	}

	entryData := data[HeaderSize:]
	sum := sha256.Sum256(entryData)
	if !bytes.Equal(sum[:], header.Checksum[:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptCache)
	}

	entries := make([]indexEntry, 0, header.EntryCount)
	offset := 0
	for i := 0; i < int(header.EntryCount); i++ {
		entry, size, err := decodeIndexEntry(entryData[offset:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d at offset %d: %w", ErrCorruptCache, i, offset, err)
		}
		entries = append(entries, entry)
		offset += size
	}
	if offset != len(entryData) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d entries", ErrCorruptCache, len(entryData)-offset, header.EntryCount)
	}

	return entries, nil
}

// decodeIndexEntry copies one entry out of mapped memory
func decodeIndexEntry(data []byte) (indexEntry, int, error) {
	if len(data) < EntryHeaderSize {
		return indexEntry{}, 0, fmt.Errorf("truncated entry header")
	}

	order := binary.NativeEndian
	size := int(order.Uint32(data[0:4]))
	hashType := order.Uint16(data[4:6])
	digestLen := int(order.Uint16(data[6:8]))
	pathLen := int(order.Uint32(data[8:12]))

	if size%8 != 0 || size > MaxEntrySize || size > len(data) {
		return indexEntry{}, 0, fmt.Errorf("invalid entry size %d", size)
	}
	if EntryHeaderSize+digestLen+pathLen > size {
		return indexEntry{}, 0, fmt.Errorf("digest length %d and path length %d exceed entry size %d", digestLen, pathLen, size)
	}

	digestStart := EntryHeaderSize
	pathStart := digestStart + digestLen
	entry := indexEntry{
		HashType: hashType,
		Digest:   bytes.Clone(data[digestStart:pathStart]),
		Path:     string(data[pathStart : pathStart+pathLen]),
	}
	if err := ValidatePath(entry.Path); err != nil {
		return indexEntry{}, 0, err
	}
	return entry, size, nil
}
