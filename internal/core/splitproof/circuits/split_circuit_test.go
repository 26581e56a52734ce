package circuits

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 切分一致性电路测试
// ============================================================================
//
// 🎯 **测试目的**：
// - 电路内外的根计算逐位一致（往返）
// - 篡改行摘要、种子或训练索引摘要时约束不满足
//
// ============================================================================

func testRows(n int) []types.RowHash {
	rows := make([]types.RowHash, n)
	for i := range rows {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(i))
		rows[i] = sha256.Sum256(buf[:])
	}
	return rows
}

func testSeed() types.Seed {
	var s types.Seed
	for i := range s {
		s[i] = 1
	}
	return s
}

// TestSplitCircuit_RoundTrip 电路外计算的根在电路内成立
func TestSplitCircuit_RoundTrip(t *testing.T) {
	for _, shape := range []types.Shape{{N: 2, K: 1}, {N: 3, K: 2}, {N: 4, K: 3}, {N: 5, K: 4}, {N: 8, K: 6}} {
		rows := testRows(shape.N)
		st, err := BuildStatement(rows, testSeed(), shape.K)
		require.NoError(t, err)

		circuit := NewSplitCircuit(shape.N, shape.K)
		assignment := NewAssignment(rows, shape.K, st.Public)
		require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()), "shape=%s", shape.Key())
	}
}

// TestSplitCircuit_Groth16 使用gnark测试框架完整检查（含证明）
func TestSplitCircuit_Groth16(t *testing.T) {
	assert := test.NewAssert(t)

	rows := testRows(4)
	st, err := BuildStatement(rows, testSeed(), 3)
	assert.NoError(err)

	// 篡改训练根
	bad := NewAssignment(rows, 3, st.Public)
	bad.TrainRoot = new(big.Int).Add(bad.TrainRoot.(*big.Int), big.NewInt(1))

	assert.CheckCircuit(
		NewSplitCircuit(4, 3),
		test.WithValidAssignment(NewAssignment(rows, 3, st.Public)),
		test.WithInvalidAssignment(bad),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
		test.NoFuzzing(),
	)
}

// TestSplitCircuit_MutatedRow 修改单个私有行后原始根约束失败
func TestSplitCircuit_MutatedRow(t *testing.T) {
	rows := testRows(6)
	st, err := BuildStatement(rows, testSeed(), 4)
	require.NoError(t, err)

	mutated := append([]types.RowHash(nil), rows...)
	mutated[2][31] ^= 0x01

	circuit := NewSplitCircuit(6, 4)
	assignment := NewAssignment(mutated, 4, st.Public)
	require.Error(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))
}

// TestSplitCircuit_WrongSeed 使用不同种子的公开值不满足约束
func TestSplitCircuit_WrongSeed(t *testing.T) {
	rows := testRows(5)
	st, err := BuildStatement(rows, testSeed(), 4)
	require.NoError(t, err)

	other := testSeed()
	other[0] = 2
	pub := st.Public
	pub.SeedHi, pub.SeedLo = commitment.Limbs(other)

	circuit := NewSplitCircuit(5, 4)
	require.Error(t, test.IsSolved(circuit, NewAssignment(rows, 4, pub), ecc.BN254.ScalarField()))
}

// TestSplitCircuit_TamperedIndices 训练索引摘要与真实划分不一致时失败
func TestSplitCircuit_TamperedIndices(t *testing.T) {
	rows := testRows(4)
	st, err := BuildStatement(rows, testSeed(), 3)
	require.NoError(t, err)

	tampered := append([]uint32(nil), st.Split.TrainIndices...)
	tampered[0], tampered[1] = tampered[1], tampered[0]
	pub := st.Public
	pub.TrainIndexDigest = commitment.IndexDigest(tampered)

	circuit := NewSplitCircuit(4, 3)
	require.Error(t, test.IsSolved(circuit, NewAssignment(rows, 3, pub), ecc.BN254.ScalarField()))
}

// TestBuildStatement_Scenario4Rows N=4、75/25 场景：k=3 且根与置换切片的承诺一致
func TestBuildStatement_Scenario4Rows(t *testing.T) {
	rows := testRows(4)
	k, err := shuffle.SplitPoint(4, types.Ratio{Train: 75, Total: 100})
	require.NoError(t, err)
	require.Equal(t, 3, k)

	st, err := BuildStatement(rows, testSeed(), k)
	require.NoError(t, err)

	shuffled, err := shuffle.Apply(st.Permutation, rows)
	require.NoError(t, err)
	trainRoot, err := commitment.Commit(shuffled[:3])
	require.NoError(t, err)
	testRoot, err := commitment.Commit(shuffled[3:])
	require.NoError(t, err)
	originalRoot, err := commitment.Commit(rows)
	require.NoError(t, err)

	require.Equal(t, trainRoot, st.TrainRoot)
	require.Equal(t, testRoot, st.TestRoot)
	require.Equal(t, originalRoot, st.OriginalRoot)
	require.Equal(t, []uint32(st.Permutation[:3]), st.Split.TrainIndices)
}

func TestSplitCircuit_InvalidShape(t *testing.T) {
	_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, NewSplitCircuit(4, 4))
	require.Error(t, err)
}

func TestDivModHint(t *testing.T) {
	out := []*big.Int{new(big.Int), new(big.Int)}
	require.NoError(t, DivModHint(nil, []*big.Int{big.NewInt(17), big.NewInt(5)}, out))
	require.Equal(t, int64(3), out[0].Int64())
	require.Equal(t, int64(2), out[1].Int64())

	require.Error(t, DivModHint(nil, []*big.Int{big.NewInt(1), big.NewInt(0)}, out))
}
