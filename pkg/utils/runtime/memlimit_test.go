package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCgroupLimit(t *testing.T) {
	v, ok, err := parseCgroupLimit("536870912\n")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(512<<20), v)

	_, ok, err = parseCgroupLimit("max\n")
	require.NoError(t, err)
	require.False(t, ok)

	// cgroup v1 用接近 int64 上限的值表示无限制
	_, ok, err = parseCgroupLimit("9223372036854771712")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = parseCgroupLimit("lots")
	require.Error(t, err)
}

func TestApplyCgroupMemoryLimit_RespectsEnv(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "1GiB")
	applied, _, err := ApplyCgroupMemoryLimit(0.8)
	require.NoError(t, err)
	require.False(t, applied)
}
