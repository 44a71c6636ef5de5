package dupdir

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// generateTempFileName builds a temporary index name next to target,
// unique per process and instant
func generateTempFileName(target string) string {
	pid := os.Getpid()
	timestamp := time.Now().UnixNano()
	return filepath.Join(filepath.Dir(target), fmt.Sprintf(TempIndex, pid, timestamp))
}

// alignTo8 rounds n up to the next multiple of 8
func alignTo8(n int) int {
	return (n + 7) &^ 7
}

// sizeSuffixes maps a size suffix to its multiplier
var sizeSuffixes = map[string]float64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseHumanSize parses sizes like "64K", "1.5M" or "512". Suffixes are
// binary and case-insensitive.
func ParseHumanSize(sizeStr string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(sizeStr))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	numEnd := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if numEnd < 0 {
		numEnd = len(s)
	}
	if numEnd == 0 {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(s[:numEnd], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", sizeStr, err)
	}
	multiplier, ok := sizeSuffixes[s[numEnd:]]
	if !ok {
		return 0, fmt.Errorf("unknown size suffix: %s", s[numEnd:])
	}

	size := num * multiplier
	if size < 1 {
		return 0, fmt.Errorf("size must be positive: %s", sizeStr)
	}
	if size > float64(math.MaxInt32) {
		return 0, fmt.Errorf("size too large: %s", sizeStr)
	}
	return int(size), nil
}
