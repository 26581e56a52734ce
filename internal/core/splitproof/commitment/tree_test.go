package commitment

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/splitproof/pkg/types"
)

// makeRows 生成确定性的测试行摘要
func makeRows(n int, salt uint32) []types.RowHash {
	rows := make([]types.RowHash, n)
	for i := range rows {
		var buf [8]byte
		binary.BigEndian.PutUint32(buf[:4], salt)
		binary.BigEndian.PutUint32(buf[4:], uint32(i))
		rows[i] = sha256.Sum256(buf[:])
	}
	return rows
}

func TestCommit_Deterministic(t *testing.T) {
	rows := makeRows(7, 1)

	r1, err := Commit(rows)
	require.NoError(t, err)
	r2, err := Commit(rows)
	require.NoError(t, err)
	require.Equal(t, r1, r2)

	_, err = RootToElement(r1)
	require.NoError(t, err, "根必须是规范域元素编码")
}

func TestCommit_Empty(t *testing.T) {
	_, err := Commit(nil)
	require.ErrorIs(t, err, ErrEmptySequence)
}

func TestCommit_OrderSensitive(t *testing.T) {
	rows := makeRows(5, 2)
	root, err := Commit(rows)
	require.NoError(t, err)

	swapped := append([]types.RowHash(nil), rows...)
	swapped[1], swapped[3] = swapped[3], swapped[1]
	root2, err := Commit(swapped)
	require.NoError(t, err)
	require.NotEqual(t, root, root2)
}

func TestCommit_LengthBound(t *testing.T) {
	// 3行的树与"3行+显式零摘要行"的树叶子层不同，且根绑定长度
	rows := makeRows(3, 3)
	padded := append(append([]types.RowHash(nil), rows...), types.RowHash{})

	r3, err := Commit(rows)
	require.NoError(t, err)
	r4, err := Commit(padded)
	require.NoError(t, err)
	require.NotEqual(t, r3, r4)
}

func TestCommit_SingleRow(t *testing.T) {
	rows := makeRows(1, 4)
	tree, err := NewTree(rows)
	require.NoError(t, err)
	require.Equal(t, 0, tree.Depth())

	expected := RootDigest(1, LeafDigest(rows[0]))
	got := tree.RootElement()
	require.True(t, got.Equal(&expected))
}

// 固定向量：row_i 为32个字节 (i+1)，根由独立的MiMC参考实现离线计算
func TestCommit_KnownAnswer(t *testing.T) {
	rows := func(n int) []types.RowHash {
		out := make([]types.RowHash, n)
		for i := range out {
			for j := range out[i] {
				out[i][j] = byte(i + 1)
			}
		}
		return out
	}
	cases := map[int]string{
		1: "13f0eae53d97f2ace51dffaaef12362e717c1f546c358e4802bcf95c5359753a",
		3: "002b4724e8d405a7b460f1f502133f42da20d1bec2d6359c65920a01a01826df",
		4: "1322c8dce4a1e3972625c3b94e5b221a7d28388752eee4362037e636249e4246",
	}
	for n, want := range cases {
		root, err := Commit(rows(n))
		require.NoError(t, err)
		require.Equal(t, want, hex.EncodeToString(root[:]), "n=%d", n)
	}
}

func TestIndexDigest_KnownAnswer(t *testing.T) {
	d := IndexDigest([]uint32{2, 0, 1})
	b := d.Bytes()
	require.Equal(t, "0a1208757e5d02138bed9ab3a34fa05c8f9fbf33af48520faff1f8b002353e91", hex.EncodeToString(b[:]))
}

func TestLimbs_Injective(t *testing.T) {
	// 两个摘要只在高位字节不同，拆分后必然不同
	var a, b types.RowHash
	a[0] = 0xff
	b[0] = 0xfe
	ahi, alo := Limbs(a)
	bhi, blo := Limbs(b)
	require.False(t, ahi.Equal(&bhi))
	require.True(t, alo.Equal(&blo))
	la, lb := LeafDigest(a), LeafDigest(b)
	require.False(t, la.Equal(&lb))
}

func TestRootToElement_RejectsNonCanonical(t *testing.T) {
	var root types.MerkleRoot
	for i := range root {
		root[i] = 0xff
	}
	_, err := RootToElement(root)
	require.ErrorIs(t, err, ErrNonCanonicalRoot)
}

func TestMembership_AllIndices(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		rows := makeRows(n, uint32(n))
		tree, err := NewTree(rows)
		require.NoError(t, err)
		root := tree.Root()

		for i := 0; i < n; i++ {
			proof, err := tree.Path(i)
			require.NoError(t, err)
			require.Len(t, proof.Siblings, Depth(n))
			require.True(t, VerifyMembership(root, rows[i], i, proof), "n=%d i=%d", n, i)
		}
	}
}

func TestMembership_Rejects(t *testing.T) {
	rows := makeRows(6, 9)
	tree, err := NewTree(rows)
	require.NoError(t, err)
	root := tree.Root()

	proof, err := tree.Path(2)
	require.NoError(t, err)

	// 错误的行
	require.False(t, VerifyMembership(root, rows[3], 2, proof))
	// 错误的索引
	require.False(t, VerifyMembership(root, rows[2], 3, proof))
	// 错误的长度
	bad := *proof
	bad.LeafCount = 5
	require.False(t, VerifyMembership(root, rows[2], 2, &bad))
	// 截断路径
	bad = *proof
	bad.Siblings = proof.Siblings[:1]
	require.False(t, VerifyMembership(root, rows[2], 2, &bad))
	// nil
	require.False(t, VerifyMembership(root, rows[2], 2, nil))

	_, err = tree.Path(6)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCommit_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("交换两个不同位置会改变根", prop.ForAll(
		func(n, a, b int, salt uint32) bool {
			a, b = a%n, b%n
			if a == b {
				return true
			}
			rows := makeRows(n, salt)
			r1, err := Commit(rows)
			if err != nil {
				return false
			}
			rows[a], rows[b] = rows[b], rows[a]
			r2, err := Commit(rows)
			return err == nil && r1 != r2
		},
		gen.IntRange(2, 24),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
		gen.UInt32(),
	))

	properties.Property("成员证明对每个位置成立", prop.ForAll(
		func(n, i int) bool {
			i = i % n
			rows := makeRows(n, 77)
			tree, err := NewTree(rows)
			if err != nil {
				return false
			}
			proof, err := tree.Path(i)
			return err == nil && VerifyMembership(tree.Root(), rows[i], i, proof)
		},
		gen.IntRange(1, 40),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
