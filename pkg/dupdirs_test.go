package dupdir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDupDirsDropsSingletons(t *testing.T) {
	dirHashes := []DirHash{
		{Hash: "aa", Dir: "/x"},
		{Hash: "bb", Dir: "/y"},
	}
	assert.Empty(t, DupDirs(dirHashes, OrderLength))
}

func TestDupDirsNestedSuppression(t *testing.T) {
	dirHashes := []DirHash{
		{Hash: "aa", Dir: "/a/sub"},
		{Hash: "aa", Dir: "/a"},
		{Hash: "aa", Dir: "/b"},
	}

	result := DupDirs(dirHashes, OrderLength)
	assert.Equal(t, []DirHash{
		{Hash: "aa", Dir: "/a"},
		{Hash: "aa", Dir: "/b"},
	}, result)
}

func TestDupDirsCollapsedGroupDropped(t *testing.T) {
	// Only nesting, no real duplicate
	dirHashes := []DirHash{
		{Hash: "aa", Dir: "/a"},
		{Hash: "aa", Dir: "/a/sub"},
		{Hash: "aa", Dir: "/a/sub/deeper"},
	}
	assert.Empty(t, DupDirs(dirHashes, OrderLength))
}

func TestDupDirsPrefixIsComponentWise(t *testing.T) {
	dirHashes := []DirHash{
		{Hash: "aa", Dir: "/a"},
		{Hash: "aa", Dir: "/ab"},
	}
	assert.Equal(t, dirHashes, DupDirs(dirHashes, OrderLength))
}

func TestDupDirsSortedByDir(t *testing.T) {
	dirHashes := []DirHash{
		{Hash: "bb", Dir: "/q"},
		{Hash: "aa", Dir: "/z"},
		{Hash: "bb", Dir: "/c"},
		{Hash: "aa", Dir: "/m"},
	}
	assert.Equal(t, []DirHash{
		{Hash: "bb", Dir: "/c"},
		{Hash: "aa", Dir: "/m"},
		{Hash: "bb", Dir: "/q"},
		{Hash: "aa", Dir: "/z"},
	}, DupDirs(dirHashes, OrderLength))
}

func TestDupDirsIdempotent(t *testing.T) {
	dirHashes := []DirHash{
		{Hash: "aa", Dir: "/x"},
		{Hash: "aa", Dir: "/y"},
		{Hash: "aa", Dir: "/x/inner"},
		{Hash: "bb", Dir: "/x/inner/deep"},
		{Hash: "bb", Dir: "/w/deep"},
		{Hash: "cc", Dir: "/lonely"},
	}

	once := DupDirs(dirHashes, OrderLength)
	twice := DupDirs(once, OrderLength)
	assert.Equal(t, once, twice)
}

func TestSortMembersOrders(t *testing.T) {
	members := []string{"/aaaaaaaa", "/b/c", "/a"}

	byLength := append([]string(nil), members...)
	sortMembers(byLength, OrderLength)
	assert.Equal(t, []string{"/a", "/b/c", "/aaaaaaaa"}, byLength)

	byDepth := append([]string(nil), members...)
	sortMembers(byDepth, OrderDepth)
	assert.Equal(t, []string{"/a", "/aaaaaaaa", "/b/c"}, byDepth)
}

func TestGroups(t *testing.T) {
	dupDirs := []DirHash{
		{Hash: "bb", Dir: "/c"},
		{Hash: "aa", Dir: "/m"},
		{Hash: "bb", Dir: "/q"},
		{Hash: "aa", Dir: "/z"},
	}
	assert.Equal(t, []DuplicateGroup{
		{Hash: "bb", Dirs: []string{"/c", "/q"}, Count: 2},
		{Hash: "aa", Dirs: []string{"/m", "/z"}, Count: 2},
	}, Groups(dupDirs))
}
