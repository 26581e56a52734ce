package shuffle

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/splitproof/pkg/types"
)

func seedOf(b byte) types.Seed {
	var s types.Seed
	for i := range s {
		s[i] = b
	}
	return s
}

func TestPermute_Deterministic(t *testing.T) {
	seed := seedOf(1)
	p1, err := Permute(seed, 100)
	require.NoError(t, err)
	p2, err := Permute(seed, 100)
	require.NoError(t, err)
	require.Equal(t, p1, p2)
	require.True(t, IsPermutation(p1))
}

func TestPermute_SeedSensitive(t *testing.T) {
	p1, err := Permute(seedOf(1), 64)
	require.NoError(t, err)
	p2, err := Permute(seedOf(2), 64)
	require.NoError(t, err)
	require.NotEqual(t, p1, p2)
}

func TestPermute_InvalidParameter(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		_, err := Permute(seedOf(1), n)
		require.ErrorIs(t, err, ErrInvalidParameter, "n=%d", n)
	}
	_, err := Permute(seedOf(1), MaxRows+1)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSwaps_MatchPermute(t *testing.T) {
	seed := seedOf(7)
	swaps, err := Swaps(seed, 10)
	require.NoError(t, err)
	for i := 1; i < 10; i++ {
		require.LessOrEqual(t, swaps[i], uint32(i))
	}

	perm := make(types.Permutation, 10)
	for i := range perm {
		perm[i] = uint32(i)
	}
	for i := 9; i >= 1; i-- {
		perm[i], perm[swaps[i]] = perm[swaps[i]], perm[i]
	}
	expected, err := Permute(seed, 10)
	require.NoError(t, err)
	require.Equal(t, expected, perm)
}

// 固定向量：由独立的MiMC参考实现离线计算，锁定跨版本的洗牌算法
func TestPermute_KnownAnswer(t *testing.T) {
	cases := []struct {
		seed byte
		n    int
		want types.Permutation
	}{
		{seed: 1, n: 4, want: types.Permutation{3, 2, 0, 1}},
		{seed: 1, n: 10, want: types.Permutation{3, 5, 4, 7, 6, 2, 9, 1, 8, 0}},
		{seed: 7, n: 10, want: types.Permutation{0, 8, 9, 5, 2, 7, 4, 6, 3, 1}},
	}
	for _, tc := range cases {
		perm, err := Permute(seedOf(tc.seed), tc.n)
		require.NoError(t, err)
		require.Equal(t, tc.want, perm, "seed=%d n=%d", tc.seed, tc.n)
	}
}

func TestSplitPoint(t *testing.T) {
	cases := []struct {
		n     int
		ratio types.Ratio
		k     int
	}{
		{4, types.Ratio{Train: 75, Total: 100}, 3},
		{10, types.DefaultRatio, 8},
		{10000, types.DefaultRatio, 8000},
		{7, types.DefaultRatio, 5},
		// 钳制到 [1, n-1]
		{2, types.Ratio{Train: 1, Total: 10}, 1},
		{2, types.Ratio{Train: 99, Total: 100}, 1},
		{3, types.Ratio{Train: 99, Total: 100}, 2},
	}
	for _, c := range cases {
		k, err := SplitPoint(c.n, c.ratio)
		require.NoError(t, err)
		require.Equal(t, c.k, k, "n=%d ratio=%s", c.n, c.ratio)
	}

	_, err := SplitPoint(10, types.Ratio{Train: 10, Total: 10})
	require.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SplitPoint(1, types.DefaultRatio)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSplitPoint_RowLimit(t *testing.T) {
	// 上限取决于uint32索引编码
	require.EqualValues(t, uint64(math.MaxUint32), uint64(MaxRows))

	k, err := SplitPoint(MaxRows, types.DefaultRatio)
	require.NoError(t, err)
	require.Equal(t, 3435973836, k)

	_, err = SplitPoint(MaxRows+1, types.DefaultRatio)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSplit_DisjointAndCovering(t *testing.T) {
	n := 37
	perm, err := Permute(seedOf(3), n)
	require.NoError(t, err)
	split, err := Split(perm, n, types.DefaultRatio)
	require.NoError(t, err)
	require.Equal(t, 29, split.K)
	require.Len(t, split.TrainIndices, split.K)
	require.Len(t, split.TestIndices, n-split.K)

	seen := make(map[uint32]bool, n)
	for _, idx := range append(append([]uint32(nil), split.TrainIndices...), split.TestIndices...) {
		require.False(t, seen[idx], "index %d duplicated", idx)
		seen[idx] = true
	}
	require.Len(t, seen, n)
}

func TestSplit_Scenario4Rows(t *testing.T) {
	rows := []string{"h0", "h1", "h2", "h3"}
	perm, err := Permute(seedOf(0x5a), 4)
	require.NoError(t, err)
	split, err := Split(perm, 4, types.Ratio{Train: 75, Total: 100})
	require.NoError(t, err)
	require.Equal(t, 3, split.K)

	shuffled, err := Apply(perm, rows)
	require.NoError(t, err)
	require.ElementsMatch(t, rows, shuffled)
	for p, idx := range split.TrainIndices {
		require.Equal(t, rows[idx], shuffled[p])
	}
	require.Equal(t, rows[split.TestIndices[0]], shuffled[3])
}

func TestApply_LengthMismatch(t *testing.T) {
	_, err := Apply(types.Permutation{0, 1}, []int{1})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestPermute_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("置换是确定性的双射", prop.ForAll(
		func(n int, b uint8) bool {
			seed := seedOf(b)
			p1, err1 := Permute(seed, n)
			p2, err2 := Permute(seed, n)
			if err1 != nil || err2 != nil || len(p1) != n {
				return false
			}
			for i := range p1 {
				if p1[i] != p2[i] {
					return false
				}
			}
			return IsPermutation(p1)
		},
		gen.IntRange(2, 200),
		gen.UInt8(),
	))

	properties.Property("划分点位于 [1, n-1]", prop.ForAll(
		func(n int, train, test uint32) bool {
			k, err := SplitPoint(n, types.Ratio{Train: train, Total: train + test})
			return err == nil && k >= 1 && k <= n-1
		},
		gen.IntRange(2, 500),
		gen.UInt32Range(1, 1000),
		gen.UInt32Range(1, 1000),
	))

	properties.TestingRun(t)
}
