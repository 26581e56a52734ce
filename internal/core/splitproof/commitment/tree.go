package commitment

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/weisyn/splitproof/pkg/types"
)

// Tree 完整构建的Merkle树，用于计算根和生成成员证明
type Tree struct {
	n      int
	levels [][]fr.Element // levels[0] 为补齐后的叶子层
	root   fr.Element
}

// NewTree 从行摘要构建Merkle树
func NewTree(rows []types.RowHash) (*Tree, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySequence
	}
	return NewTreeFromLeaves(LeafDigests(rows))
}

// NewTreeFromLeaves 从叶子摘要构建Merkle树
func NewTreeFromLeaves(leaves []fr.Element) (*Tree, error) {
	n := len(leaves)
	if n == 0 {
		return nil, ErrEmptySequence
	}

	width := NextPowerOfTwo(n)
	level := make([]fr.Element, width)
	copy(level, leaves)
	// 其余位置保持零值（填充叶子）

	levels := [][]fr.Element{level}
	for len(level) > 1 {
		next := make([]fr.Element, len(level)/2)
		for i := range next {
			next[i] = NodeDigest(level[2*i], level[2*i+1])
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{
		n:      n,
		levels: levels,
		root:   RootDigest(n, level[0]),
	}, nil
}

// Len 返回真实叶子数量（不含填充）
func (t *Tree) Len() int { return t.n }

// Depth 返回树深度
func (t *Tree) Depth() int { return len(t.levels) - 1 }

// Root 返回规范编码的承诺根
func (t *Tree) Root() types.MerkleRoot { return ElementToRoot(t.root) }

// RootElement 返回承诺根域元素
func (t *Tree) RootElement() fr.Element { return t.root }

// Path 生成第index个叶子的成员证明
func (t *Tree) Path(index int) (*MembershipProof, error) {
	if index < 0 || index >= t.n {
		return nil, fmt.Errorf("%w: index=%d, n=%d", ErrIndexOutOfRange, index, t.n)
	}
	siblings := make([]types.MerkleRoot, 0, t.Depth())
	pos := index
	for d := 0; d < t.Depth(); d++ {
		siblings = append(siblings, ElementToRoot(t.levels[d][pos^1]))
		pos >>= 1
	}
	return &MembershipProof{
		Index:     uint32(index),
		LeafCount: uint32(t.n),
		Siblings:  siblings,
	}, nil
}

// Commit 计算有序行摘要序列的承诺根
//
// 确定性且对顺序敏感；空序列返回 ErrEmptySequence
func Commit(rows []types.RowHash) (types.MerkleRoot, error) {
	t, err := NewTree(rows)
	if err != nil {
		return types.MerkleRoot{}, err
	}
	return t.Root(), nil
}

// CommitLeaves 对已计算好的叶子摘要序列计算承诺根
func CommitLeaves(leaves []fr.Element) (fr.Element, error) {
	t, err := NewTreeFromLeaves(leaves)
	if err != nil {
		return fr.Element{}, err
	}
	return t.root, nil
}
