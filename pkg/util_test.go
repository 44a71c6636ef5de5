package dupdir

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseHumanSize(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"64K", 64 * 1024, false},
		{"64k", 64 * 1024, false},
		{"2M", 2 * 1024 * 1024, false},
		{"1GB", 1024 * 1024 * 1024, false},
		{"512", 512, false},
		{"1.5K", 1536, false},
		{"", 0, true},
		{"K", 0, true},
		{"10X", 0, true},
		{"0", 0, true},
	}

	for _, tc := range testCases {
		result, err := ParseHumanSize(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseHumanSize(%q): expected error, got %d", tc.input, result)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHumanSize(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if result != tc.expected {
			t.Errorf("ParseHumanSize(%q): expected %d, got %d", tc.input, tc.expected, result)
		}
	}
}

func TestAlignTo8(t *testing.T) {
	for n, expected := range map[int]int{0: 0, 1: 8, 8: 8, 9: 16, 60: 64} {
		if got := alignTo8(n); got != expected {
			t.Errorf("alignTo8(%d): expected %d, got %d", n, expected, got)
		}
	}
}

func TestGenerateTempFileName(t *testing.T) {
	target := filepath.Join("/state", CacheIndex)
	name := generateTempFileName(target)

	if filepath.Dir(name) != "/state" {
		t.Errorf("Expected temp file in /state, got %s", name)
	}
	base := filepath.Base(name)
	if !strings.HasPrefix(base, "hashes-") || !strings.HasSuffix(base, ".tmp") {
		t.Errorf("Unexpected temp file name %s", base)
	}
	if extractPidFromTempName(base) <= 0 {
		t.Errorf("Expected a PID in %s", base)
	}
}
