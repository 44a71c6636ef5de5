package dupdir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	testCases := []struct {
		name  string
		path  string
		valid bool
	}{
		{"absolute", "/a/b/c.txt", true},
		{"relative", "a/b", true},
		{"inner spaces", "/a/my file.txt", true},
		{"empty", "", false},
		{"carriage return", "/a/b\r", false},
		{"embedded carriage return", "/a\rb", false},
		{"line feed", "/a\nb", false},
		{"leading space", " /a", false},
		{"trailing space", "/a ", false},
		{"trailing tab", "/a\t", false},
		{"separator", "/a;b", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPath), "expected ErrInvalidPath, got %v", err)

			var pathErr *PathError
			require.ErrorAs(t, err, &pathErr)
			assert.Equal(t, tc.path, pathErr.Path)
		})
	}
}

func TestAncestorsCompleteness(t *testing.T) {
	assert.Equal(t, []string{"/a/b/c", "/a/b", "/a"}, Ancestors("/a/b/c", ""))
	assert.Equal(t, []string{"a/b", "a"}, Ancestors("a/b", ""))
	assert.Empty(t, Ancestors("/", ""))
	assert.Empty(t, Ancestors(".", ""))
	assert.Empty(t, Ancestors("", ""))
}

func TestAncestorsStopBeforeRoot(t *testing.T) {
	assert.Equal(t, []string{"/t/x/foo", "/t/x"}, Ancestors("/t/x/foo", "/t"))
	assert.Equal(t, []string{"/t/x/foo", "/t/x"}, Ancestors("/t/x/foo", "/t/"))
	assert.Empty(t, Ancestors("/t", "/t"))

	// Outside the root nothing qualifies, and /tx is not under /t
	assert.Empty(t, Ancestors("/other/dir", "/t"))
	assert.Empty(t, Ancestors("/tx/y", "/t"))
}

func TestIsPathUnder(t *testing.T) {
	testCases := []struct {
		child, parent string
		expected      bool
	}{
		{"/a/b", "/a", true},
		{"/a/b/c", "/a", true},
		{"/a", "/a", false},
		{"/ab", "/a", false},
		{"/a", "/a/b", false},
		{"/a", "/", true},
		{"a/b", "a", true},
	}

	for _, tc := range testCases {
		if got := isPathUnder(tc.child, tc.parent); got != tc.expected {
			t.Errorf("isPathUnder(%q, %q): expected %v, got %v", tc.child, tc.parent, tc.expected, got)
		}
	}
}

func TestPathDepth(t *testing.T) {
	assert.Equal(t, 0, pathDepth("/"))
	assert.Equal(t, 1, pathDepth("/a"))
	assert.Equal(t, 3, pathDepth("/a/b/c/"))
	assert.Equal(t, 2, pathDepth("a/b"))
}
