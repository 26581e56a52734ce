// Package commitment 实现有序行摘要序列的Merkle承诺（电路外）
//
// 🎯 **承诺规则**（与电路内实现逐位一致）：
//   - 哈希：BN254标量域上的MiMC（gnark-crypto bn254/fr/mimc）
//   - 叶子：leaf_i = H(TagLeaf, hi_i, lo_i)，hi/lo为32字节摘要的前后16字节
//   - 填充：叶子数补齐到2的幂，填充叶子固定为域元素0
//   - 节点：node = H(TagNode, left, right)
//   - 根：root = H(TagRoot, N, top)，绑定序列长度
package commitment

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/weisyn/splitproof/pkg/types"
)

// 域分离标签
const (
	TagLeaf    uint64 = 1
	TagNode    uint64 = 2
	TagRoot    uint64 = 3
	TagShuffle uint64 = 4
	TagIndices uint64 = 5
)

var (
	// ErrEmptySequence 空序列无法承诺
	ErrEmptySequence = errors.New("empty sequence")

	// ErrNonCanonicalRoot 根不是规范的域元素编码
	ErrNonCanonicalRoot = errors.New("non-canonical root encoding")

	// ErrIndexOutOfRange 成员证明索引越界
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Hash 对域元素序列计算MiMC摘要
func Hash(elems ...fr.Element) fr.Element {
	h := mimc.NewMiMC()
	for i := range elems {
		b := elems[i].Bytes()
		// 规范编码的32字节块，Write不会失败
		_, _ = h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// Tag 返回标签对应的域元素
func Tag(tag uint64) fr.Element {
	return fr.NewElement(tag)
}

// Limbs 将32字节摘要拆分为两个128位域元素（单射映射）
func Limbs(b [types.DigestSize]byte) (hi, lo fr.Element) {
	hi.SetBytes(b[:16])
	lo.SetBytes(b[16:])
	return hi, lo
}

// LeafDigest 计算单行的叶子摘要
func LeafDigest(h types.RowHash) fr.Element {
	hi, lo := Limbs(h)
	return Hash(Tag(TagLeaf), hi, lo)
}

// LeafDigests 批量计算叶子摘要
func LeafDigests(rows []types.RowHash) []fr.Element {
	leaves := make([]fr.Element, len(rows))
	for i := range rows {
		leaves[i] = LeafDigest(rows[i])
	}
	return leaves
}

// NodeDigest 计算内部节点摘要
func NodeDigest(left, right fr.Element) fr.Element {
	return Hash(Tag(TagNode), left, right)
}

// RootDigest 将子树根与长度绑定为最终根
func RootDigest(n int, top fr.Element) fr.Element {
	return Hash(Tag(TagRoot), fr.NewElement(uint64(n)), top)
}

// IndexDigest 计算训练集索引列表的摘要 H(TagIndices, K, idx_0, ..., idx_{K-1})
func IndexDigest(indices []uint32) fr.Element {
	elems := make([]fr.Element, 0, len(indices)+2)
	elems = append(elems, Tag(TagIndices), fr.NewElement(uint64(len(indices))))
	for _, idx := range indices {
		elems = append(elems, fr.NewElement(uint64(idx)))
	}
	return Hash(elems...)
}

// ElementToRoot 域元素转为规范32字节根
func ElementToRoot(e fr.Element) types.MerkleRoot {
	return types.MerkleRoot(e.Bytes())
}

// RootToElement 解析根为域元素，拒绝非规范编码
func RootToElement(root types.MerkleRoot) (fr.Element, error) {
	var e fr.Element
	if err := e.SetBytesCanonical(root[:]); err != nil {
		return e, fmt.Errorf("%w: %v", ErrNonCanonicalRoot, err)
	}
	return e, nil
}

// NextPowerOfTwo 返回不小于n的最小2的幂（n>=1）
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Depth 返回补齐后树的深度
func Depth(n int) int {
	d := 0
	for p := 1; p < n; p <<= 1 {
		d++
	}
	return d
}
