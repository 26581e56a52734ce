package commitment

import (
	"github.com/weisyn/splitproof/pkg/types"
)

// MembershipProof 单个叶子的Merkle成员证明
//
// Siblings 自叶子层向上排列；LeafCount 参与根计算，必须与承诺时一致
type MembershipProof struct {
	Index     uint32             `json:"index"`
	LeafCount uint32             `json:"leaf_count"`
	Siblings  []types.MerkleRoot `json:"siblings"`
}

// VerifyMembership 验证 hash 位于承诺 root 的第 index 个位置
//
// 任何结构不一致（索引越界、路径长度错误、非规范编码）均返回 false
func VerifyMembership(root types.MerkleRoot, hash types.RowHash, index int, proof *MembershipProof) bool {
	if proof == nil || index < 0 || uint32(index) != proof.Index {
		return false
	}
	n := int(proof.LeafCount)
	if n == 0 || index >= n || len(proof.Siblings) != Depth(n) {
		return false
	}

	expected, err := RootToElement(root)
	if err != nil {
		return false
	}

	current := LeafDigest(hash)
	pos := index
	for _, s := range proof.Siblings {
		sibling, err := RootToElement(s)
		if err != nil {
			return false
		}
		if pos&1 == 0 {
			current = NodeDigest(current, sibling)
		} else {
			current = NodeDigest(sibling, current)
		}
		pos >>= 1
	}

	got := RootDigest(n, current)
	return got.Equal(&expected)
}
