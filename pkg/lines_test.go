package dupdir

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashLineRoundTrip(t *testing.T) {
	lines := []string{
		helloSHA256 + "  /x/foo/hello.txt",
		helloSHA256 + "  /x/with  double  spaces",
		"00ff  relative/path",
	}
	for _, line := range lines {
		fh, err := ParseHashLine(line)
		require.NoError(t, err)
		assert.Equal(t, line, FormatHashLine(fh))
	}

	fh, err := ParseHashLine(lines[1])
	require.NoError(t, err)
	assert.Equal(t, "/x/with  double  spaces", fh.Path)
}

func TestDirFileLineRoundTrip(t *testing.T) {
	line := "/x/foo;/x/foo/hello.txt"
	df, err := ParseDirFileLine(line)
	require.NoError(t, err)
	assert.Equal(t, DirFile{Ancestor: "/x/foo", File: "/x/foo/hello.txt"}, df)
	assert.Equal(t, line, FormatDirFileLine(df))
}

func TestDigestLineRoundTrip(t *testing.T) {
	dirHashLine := helloSHA256 + "  /x/foo"
	dh, err := ParseDirHashLine(dirHashLine)
	require.NoError(t, err)
	assert.Equal(t, dirHashLine, FormatDirHashLine(dh))

	dupDirLine := helloSHA256 + ";/x/foo"
	dd, err := ParseDupDirLine(dupDirLine)
	require.NoError(t, err)
	assert.Equal(t, dh, dd)
	assert.Equal(t, dupDirLine, FormatDupDirLine(dd))
}

func TestMalformedLines(t *testing.T) {
	testCases := []struct {
		name  string
		parse func(string) error
		line  string
	}{
		{"hash line without separator", parseErr(ParseHashLine), helloSHA256 + " /x"},
		{"hash line uppercase hex", parseErr(ParseHashLine), "ABCD  /x"},
		{"hash line odd hex", parseErr(ParseHashLine), "abc  /x"},
		{"hash line empty digest", parseErr(ParseHashLine), "  /x"},
		{"dir-files without separator", parseErr(ParseDirFileLine), "/x /x/f"},
		{"dup-dir without separator", parseErr(ParseDupDirLine), helloSHA256 + "  /x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.parse(tc.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedLine), "expected ErrMalformedLine, got %v", err)
		})
	}
}

func TestInvalidPathInLine(t *testing.T) {
	_, err := ParseHashLine(helloSHA256 + "  /x/trailing ")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = ParseDirFileLine("/x;/x/f;g")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = ParseFileLine("")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestReadLinesReportsLineNumber(t *testing.T) {
	input := helloSHA256 + "  /a\n" + helloSHA256 + "  /b\nbroken\n"
	_, err := ReadLines(strings.NewReader(input), ParseHashLine)
	require.Error(t, err)

	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 3, lineErr.Line)
	assert.Equal(t, "broken", lineErr.Text)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadLinesRejectsCarriageReturn(t *testing.T) {
	_, err := ReadLines(strings.NewReader("/a\r\n/b\n"), ParseFileLine)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.Contains(t, err.Error(), "line 1")
}

func TestWriteThenReadLines(t *testing.T) {
	hashes := []FileHash{
		{Hash: helloSHA256, Path: "/x/foo/hello.txt"},
		{Hash: "00ff", Path: "/y/bar/hello.txt"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, hashes, FormatHashLine))
	assert.Equal(t, helloSHA256+"  /x/foo/hello.txt\n00ff  /y/bar/hello.txt\n", buf.String())

	parsed, err := ReadLines(&buf, ParseHashLine)
	require.NoError(t, err)
	assert.Equal(t, hashes, parsed)
}

func TestReadLinesEmpty(t *testing.T) {
	files, err := ReadLines(strings.NewReader(""), ParseFileLine)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func parseErr[T any](parse func(string) (T, error)) func(string) error {
	return func(line string) error {
		_, err := parse(line)
		return err
	}
}
