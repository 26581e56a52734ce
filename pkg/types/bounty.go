package types

import "time"

// Bounty 数据集切分悬赏
//
// 发布者承诺原始数据集根与种子；任何人提交有效切分证明后，
// 悬赏标记为已验证并记录测试集承诺
type Bounty struct {
	ID           string     `json:"id"`
	Creator      string     `json:"creator"`
	Amount       uint64     `json:"amount"`
	OriginalRoot MerkleRoot `json:"original_root"`
	Seed         Seed       `json:"seed"`
	Ratio        Ratio      `json:"ratio"`
	Deadline     time.Time  `json:"deadline"`
	CreatedAt    time.Time  `json:"created_at"`

	// 验证结果
	IsVerified        bool        `json:"is_verified"`
	Verifier          string      `json:"verifier,omitempty"`
	TrainRoot         *MerkleRoot `json:"train_root,omitempty"`
	TestsetCommitment *MerkleRoot `json:"testset_commitment,omitempty"`
	VerifiedAt        *time.Time  `json:"verified_at,omitempty"`
}

// Expired 截止时间是否已过（恰好在截止时刻仍可提交）
func (b *Bounty) Expired(now time.Time) bool {
	return now.After(b.Deadline)
}
