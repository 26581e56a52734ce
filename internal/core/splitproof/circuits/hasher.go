package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
)

// ============================================================================
// MiMC哈希辅助（电路内）
// ============================================================================
//
// 🎯 **设计目的**：
// 与 commitment 包的电路外实现使用同一MiMC实例（BN254），保证两侧的
// 叶子、节点、根与索引摘要逐位一致。
//
// ⚠️ **注意**：
// - 每次哈希前 Reset，哈希器是有状态的
// - 标签常量与 commitment 包共享，不可在单侧修改
//
// ============================================================================

// MiMCHasher 电路内MiMC哈希器
type MiMCHasher struct {
	api frontend.API
	h   hash.FieldHasher
}

// NewMiMCHasher 创建MiMC哈希器
func NewMiMCHasher(api frontend.API) (*MiMCHasher, error) {
	m, err := mimc.NewMiMC(api)
	if err != nil {
		return nil, err
	}
	return &MiMCHasher{api: api, h: &m}, nil
}

// Hash 计算任意个域元素的MiMC摘要
func (h *MiMCHasher) Hash(vals ...frontend.Variable) frontend.Variable {
	h.h.Reset()
	h.h.Write(vals...)
	return h.h.Sum()
}

// Leaf 计算叶子摘要 H(TagLeaf, hi, lo)
func (h *MiMCHasher) Leaf(hi, lo frontend.Variable) frontend.Variable {
	return h.Hash(commitment.TagLeaf, hi, lo)
}

// Commit 对叶子序列计算承诺根，填充与长度绑定规则同电路外实现
func (h *MiMCHasher) Commit(leaves []frontend.Variable) frontend.Variable {
	n := len(leaves)
	width := commitment.NextPowerOfTwo(n)
	level := make([]frontend.Variable, width)
	copy(level, leaves)
	for i := n; i < width; i++ {
		level[i] = 0
	}
	for len(level) > 1 {
		next := make([]frontend.Variable, len(level)/2)
		for i := range next {
			next[i] = h.Hash(commitment.TagNode, level[2*i], level[2*i+1])
		}
		level = next
	}
	return h.Hash(commitment.TagRoot, n, level[0])
}

// IndexDigest 计算索引列表摘要 H(TagIndices, K, idx...)
func (h *MiMCHasher) IndexDigest(indices []frontend.Variable) frontend.Variable {
	vals := make([]frontend.Variable, 0, len(indices)+2)
	vals = append(vals, commitment.TagIndices, len(indices))
	vals = append(vals, indices...)
	return h.Hash(vals...)
}
