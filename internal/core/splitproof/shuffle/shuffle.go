// Package shuffle 实现由公开种子驱动的确定性洗牌与训练/测试集划分
//
// 🎯 **伪随机算法**（电路内逐步复现）：
//   - 对 i = N-1 … 1：r_i = MiMC(TagShuffle, seed_hi, seed_lo, i)
//   - u_i 取 r_i 规范整数表示的低64位，j_i = u_i mod (i+1)
//   - Fisher-Yates：交换 a[i] 与 a[j_i]
//
// ⚠️ 取模偏差每步不超过 (i+1)/2^64，可忽略
package shuffle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/pkg/types"
)

// MaxRows 单次洗牌支持的最大行数（索引以uint32编码）
//
// 这是编码层面的硬上限；实际可证明的规模由配置项 max_rows 约束
const MaxRows = math.MaxUint32

// ErrInvalidParameter 参数非法（n<=1、比例非法等）
var ErrInvalidParameter = errors.New("invalid parameter")

// Draw 计算第i步的交换目标 j ∈ [0, i]
func Draw(seedHi, seedLo fr.Element, i int) uint32 {
	r := commitment.Hash(commitment.Tag(commitment.TagShuffle), seedHi, seedLo, fr.NewElement(uint64(i)))
	b := r.Bytes()
	u := binary.BigEndian.Uint64(b[24:])
	return uint32(u % uint64(i+1))
}

func checkLength(n int) error {
	if n <= 1 {
		return fmt.Errorf("%w: n=%d, require n > 1", ErrInvalidParameter, n)
	}
	if uint64(n) > MaxRows {
		return fmt.Errorf("%w: n=%d exceeds %d", ErrInvalidParameter, n, uint64(MaxRows))
	}
	return nil
}

// Swaps 返回每步的交换目标，swaps[i] 对应第i步（swaps[0] 恒为0且不使用）
func Swaps(seed types.Seed, n int) ([]uint32, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	hi, lo := commitment.Limbs(seed)
	swaps := make([]uint32, n)
	for i := n - 1; i >= 1; i-- {
		swaps[i] = Draw(hi, lo, i)
	}
	return swaps, nil
}

// Permute 由 (seed, n) 确定性地生成置换
//
// 同一 (seed, n) 总是得到相同结果；n <= 1 返回 ErrInvalidParameter
func Permute(seed types.Seed, n int) (types.Permutation, error) {
	swaps, err := Swaps(seed, n)
	if err != nil {
		return nil, err
	}
	perm := make(types.Permutation, n)
	for i := range perm {
		perm[i] = uint32(i)
	}
	for i := n - 1; i >= 1; i-- {
		j := swaps[i]
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, nil
}

// SplitPoint 计算划分点 k = floor(n * Train / Total)，并钳制到 [1, n-1]
func SplitPoint(n int, ratio types.Ratio) (int, error) {
	if err := checkLength(n); err != nil {
		return 0, err
	}
	if err := ratio.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	k := int(uint64(n) * uint64(ratio.Train) / uint64(ratio.Total))
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}
	return k, nil
}

// Split 按比例划分置换，得到训练/测试索引集
func Split(perm types.Permutation, n int, ratio types.Ratio) (*types.Split, error) {
	if len(perm) != n {
		return nil, fmt.Errorf("%w: permutation length %d != n %d", ErrInvalidParameter, len(perm), n)
	}
	k, err := SplitPoint(n, ratio)
	if err != nil {
		return nil, err
	}
	return SplitAt(perm, k)
}

// SplitAt 在给定划分点切分置换
func SplitAt(perm types.Permutation, k int) (*types.Split, error) {
	n := len(perm)
	if k < 1 || k >= n {
		return nil, fmt.Errorf("%w: k=%d, n=%d", ErrInvalidParameter, k, n)
	}
	train := make([]uint32, k)
	test := make([]uint32, n-k)
	copy(train, perm[:k])
	copy(test, perm[k:])
	return &types.Split{K: k, TrainIndices: train, TestIndices: test}, nil
}

// Apply 按置换重排元素：out[p] = items[perm[p]]
func Apply[T any](perm types.Permutation, items []T) ([]T, error) {
	if len(perm) != len(items) {
		return nil, fmt.Errorf("%w: permutation length %d != items %d", ErrInvalidParameter, len(perm), len(items))
	}
	out := make([]T, len(items))
	for p, idx := range perm {
		if int(idx) >= len(items) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidParameter, idx)
		}
		out[p] = items[idx]
	}
	return out, nil
}

// IsPermutation 检查 perm 是否为 [0,n) 上的双射
func IsPermutation(perm types.Permutation) bool {
	seen := make([]bool, len(perm))
	for _, idx := range perm {
		if int(idx) >= len(perm) || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
