// Package circuits 定义数据集切分一致性证明电路
package circuits

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
)

// ============================================================================
// 切分一致性电路
// ============================================================================
//
// 🎯 **证明语句**：
//  1. commit(私有行摘要) == OriginalRoot
//  2. 置换 == permute(Seed, N)，逐步复现 Fisher-Yates 交换
//  3. TrainRoot == commit(洗牌后叶子[0:K])
//  4. TestRoot  == commit(洗牌后叶子[K:N])
//  5. TrainIndexDigest == H(TagIndices, K, 洗牌后索引[0:K])
//
// 互斥与覆盖由"只做交换"保证：叶子数组始终是原数组的一个排列。
//
// 🏗️ **实现策略**：
// - 行摘要以 hi/lo 两个128位分量输入，保证字节到域元素的映射是单射
// - 交换目标 j 由提示给出，约束 u = q*(i+1) + j、j <= i、q < 2^64
// - 变量下标交换使用独热选择器，代价 O(N^2)
//
// ⚠️ **注意**：
// - 公开输入顺序即字段声明顺序，验证方按同一顺序构造公开见证，不可调整
// - 必须通过 NewSplitCircuit 创建，切片长度在编译时固定
//
// ============================================================================

// SplitCircuit 切分一致性电路
type SplitCircuit struct {
	// 公开输入（顺序固定）
	TrainRoot        frontend.Variable `gnark:",public"`
	TestRoot         frontend.Variable `gnark:",public"`
	TrainIndexDigest frontend.Variable `gnark:",public"`
	OriginalRoot     frontend.Variable `gnark:",public"`
	SeedHi           frontend.Variable `gnark:",public"`
	SeedLo           frontend.Variable `gnark:",public"`

	// 私有输入
	RowHi []frontend.Variable
	RowLo []frontend.Variable

	// 电路形状（不参与见证）
	N int `gnark:"-"`
	K int `gnark:"-"`
}

// NewSplitCircuit 创建指定形状的电路定义
func NewSplitCircuit(n, k int) *SplitCircuit {
	return &SplitCircuit{
		RowHi: make([]frontend.Variable, n),
		RowLo: make([]frontend.Variable, n),
		N:     n,
		K:     k,
	}
}

// Define 定义电路约束
func (c *SplitCircuit) Define(api frontend.API) error {
	if c.N < 2 || c.K < 1 || c.K >= c.N {
		return fmt.Errorf("电路形状非法: n=%d, k=%d", c.N, c.K)
	}
	if len(c.RowHi) != c.N || len(c.RowLo) != c.N {
		return fmt.Errorf("电路输入长度不匹配: n=%d, hi=%d, lo=%d", c.N, len(c.RowHi), len(c.RowLo))
	}

	h, err := NewMiMCHasher(api)
	if err != nil {
		return err
	}

	// 约束1：原始承诺
	leaves := make([]frontend.Variable, c.N)
	for i := range leaves {
		leaves[i] = h.Leaf(c.RowHi[i], c.RowLo[i])
	}
	api.AssertIsEqual(h.Commit(leaves), c.OriginalRoot)

	// 约束2：按种子复现洗牌，叶子与索引同步交换
	indices := make([]frontend.Variable, c.N)
	for i := range indices {
		indices[i] = i
	}
	for i := c.N - 1; i >= 1; i-- {
		j, err := drawIndex(api, h, c.SeedHi, c.SeedLo, i)
		if err != nil {
			return err
		}
		swapAt(api, leaves, indices, i, j)
	}

	// 约束3/4：训练集与测试集承诺
	api.AssertIsEqual(h.Commit(leaves[:c.K]), c.TrainRoot)
	api.AssertIsEqual(h.Commit(leaves[c.K:]), c.TestRoot)

	// 约束5：训练索引摘要
	api.AssertIsEqual(h.IndexDigest(indices[:c.K]), c.TrainIndexDigest)

	return nil
}

// drawIndex 计算第i步交换目标 j = low64(H(TagShuffle, seed_hi, seed_lo, i)) mod (i+1)
func drawIndex(api frontend.API, h *MiMCHasher, seedHi, seedLo frontend.Variable, i int) (frontend.Variable, error) {
	r := h.Hash(commitment.TagShuffle, seedHi, seedLo, i)

	// 全宽分解，保证为规范表示
	bits := api.ToBinary(r)
	u := api.FromBinary(bits[:64]...)

	out, err := api.Compiler().NewHint(DivModHint, 2, u, i+1)
	if err != nil {
		return nil, fmt.Errorf("divmod提示失败: %w", err)
	}
	q, j := out[0], out[1]

	// q < 2^64 使 q*(i+1)+j 不发生域回绕，商与余数唯一
	api.ToBinary(q, 64)
	api.AssertIsLessOrEqual(j, i)
	api.AssertIsEqual(u, api.Add(api.Mul(q, i+1), j))

	return j, nil
}

// swapAt 交换 leaves/indices 中位置 i 与变量位置 j（j <= i）
func swapAt(api frontend.API, leaves, indices []frontend.Variable, i int, j frontend.Variable) {
	li, xi := leaves[i], indices[i]
	var lj, xj frontend.Variable = 0, 0
	for p := 0; p <= i; p++ {
		sel := api.IsZero(api.Sub(j, p))
		lj = api.Add(lj, api.Mul(sel, leaves[p]))
		xj = api.Add(xj, api.Mul(sel, indices[p]))
		if p < i {
			leaves[p] = api.Select(sel, li, leaves[p])
			indices[p] = api.Select(sel, xi, indices[p])
		}
	}
	leaves[i] = lj
	indices[i] = xj
}
