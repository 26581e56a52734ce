// Package types provides event type definitions.
package types

import "time"

// EventType 事件类型
type EventType string

// 切分证明相关事件
const (
	// EventTypeProofJobSubmitted 证明任务已入队
	EventTypeProofJobSubmitted EventType = "splitproof.job.submitted"
	// EventTypeProofJobCompleted 证明任务成功完成
	EventTypeProofJobCompleted EventType = "splitproof.job.completed"
	// EventTypeProofJobFailed 证明任务失败（含超时）
	EventTypeProofJobFailed EventType = "splitproof.job.failed"
	// EventTypeProofVerified 完成一次验证（接受或拒绝）
	EventTypeProofVerified EventType = "splitproof.proof.verified"

	// EventTypeBountyCreated 悬赏创建
	EventTypeBountyCreated EventType = "bounty.created"
	// EventTypeBountySplitVerified 悬赏的切分证明已验证
	EventTypeBountySplitVerified EventType = "bounty.split.verified"
)

// ProofJobEvent 证明任务事件载荷
type ProofJobEvent struct {
	JobID    string        `json:"job_id"`
	Shape    Shape         `json:"shape"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// VerificationEvent 验证事件载荷
type VerificationEvent struct {
	ProofDigest string        `json:"proof_digest"`
	Shape       Shape         `json:"shape"`
	Accepted    bool          `json:"accepted"`
	Cached      bool          `json:"cached"`
	Duration    time.Duration `json:"duration"`
}

// BountyEvent 悬赏事件载荷
type BountyEvent struct {
	BountyID          string      `json:"bounty_id"`
	Verified          bool        `json:"verified"`
	TestsetCommitment *MerkleRoot `json:"testset_commitment,omitempty"`
}
