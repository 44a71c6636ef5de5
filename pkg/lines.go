package dupdir

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// FileHash is one entry of a hash list
type FileHash struct {
	Hash string
	Path string
}

// DirFile pairs a file with one of its ancestor directories
type DirFile struct {
	Ancestor string
	File     string
}

// DirHash is a directory digest. The dup-dir list reuses it.
type DirHash struct {
	Hash string
	Dir  string
}

// maxLineLength bounds a single intermediate line. Paths never get near it.
const maxLineLength = 1 << 20

// ReadLines parses r one line at a time. A parse failure is reported with the
// 1-based line number it came from.
func ReadLines[T any](r io.Reader, parse func(string) (T, error)) ([]T, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	scanner.Split(scanLinesLF)

	var items []T
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		item, err := parse(scanner.Text())
		if err != nil {
			if lineErr, ok := err.(*LineError); ok {
				lineErr.Line = lineNum
				return nil, lineErr
			}
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return items, nil
}

// scanLinesLF splits on '\n' only. Unlike bufio.ScanLines it keeps a
// trailing '\r' so path validation can reject it.
func scanLinesLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// WriteLines writes one formatted line per item
func WriteLines[T any](w io.Writer, items []T, format func(T) string) error {
	bw := bufio.NewWriter(w)
	for _, item := range items {
		if _, err := bw.WriteString(format(item)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseFileLine parses a file list line, which is the bare path
func ParseFileLine(line string) (string, error) {
	if err := ValidatePath(line); err != nil {
		return "", err
	}
	return line, nil
}

// FormatFileLine formats a file list line
func FormatFileLine(path string) string {
	return path
}

// ParseHashLine parses "<hex>  <path>"
func ParseHashLine(line string) (FileHash, error) {
	hash, path, err := splitDigestLine(line, HashSeparator)
	if err != nil {
		return FileHash{}, err
	}
	return FileHash{Hash: hash, Path: path}, nil
}

// FormatHashLine formats a hash list line
func FormatHashLine(fh FileHash) string {
	return fh.Hash + HashSeparator + fh.Path
}

// ParseDirFileLine parses "<ancestor>;<file>"
func ParseDirFileLine(line string) (DirFile, error) {
	ancestor, file, ok := strings.Cut(line, UniqueSeparator)
	if !ok {
		return DirFile{}, &LineError{Text: line, Reason: "missing " + UniqueSeparator + " separator"}
	}
	if err := ValidatePath(ancestor); err != nil {
		return DirFile{}, err
	}
	if err := ValidatePath(file); err != nil {
		return DirFile{}, err
	}
	return DirFile{Ancestor: ancestor, File: file}, nil
}

// FormatDirFileLine formats a dir-files line
func FormatDirFileLine(df DirFile) string {
	return df.Ancestor + UniqueSeparator + df.File
}

// ParseDirHashLine parses "<hex>  <dir>"
func ParseDirHashLine(line string) (DirHash, error) {
	hash, dir, err := splitDigestLine(line, HashSeparator)
	if err != nil {
		return DirHash{}, err
	}
	return DirHash{Hash: hash, Dir: dir}, nil
}

// FormatDirHashLine formats a dir-hash list line
func FormatDirHashLine(dh DirHash) string {
	return dh.Hash + HashSeparator + dh.Dir
}

// ParseDupDirLine parses "<hex>;<dir>"
func ParseDupDirLine(line string) (DirHash, error) {
	hash, dir, err := splitDigestLine(line, UniqueSeparator)
	if err != nil {
		return DirHash{}, err
	}
	return DirHash{Hash: hash, Dir: dir}, nil
}

// FormatDupDirLine formats a dup-dir list line
func FormatDupDirLine(dh DirHash) string {
	return dh.Hash + UniqueSeparator + dh.Dir
}

// splitDigestLine splits at the first separator. Hex digests never contain
// either separator, so everything after it is the path.
func splitDigestLine(line, sep string) (string, string, error) {
	digest, path, ok := strings.Cut(line, sep)
	if !ok {
		return "", "", &LineError{Text: line, Reason: fmt.Sprintf("missing %q separator", sep)}
	}
	if !isHexDigest(digest) {
		return "", "", &LineError{Text: line, Reason: "digest is not lowercase hex"}
	}
	if err := ValidatePath(path); err != nil {
		return "", "", err
	}
	return digest, path, nil
}

func isHexDigest(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
