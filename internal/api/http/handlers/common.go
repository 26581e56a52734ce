// Package handlers 切分证明服务的 HTTP 处理器
package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	spconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	"github.com/weisyn/splitproof/internal/core/bounty"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/pkg/types"
)

// ==================== 📋 依赖的服务能力 ====================

// ProofService 证明引擎能力（*splitproof.Manager 实现）
type ProofService interface {
	Submit(ctx context.Context, req *splitproof.ProveRequest) (string, error)
	ProveRequest(ctx context.Context, req *splitproof.ProveRequest) (*splitproof.ProofResult, error)
	Status(ctx context.Context, jobID string) (*splitproof.JobRecord, error)
	Cancel(ctx context.Context, jobID string) error
	Verify(ctx context.Context, proof []byte, originalRoot types.MerkleRoot, seed types.Seed, trainRoot, testRoot types.MerkleRoot, opts ...splitproof.VerifyOption) (bool, error)
	VerifyOutputs(ctx context.Context, proof []byte, originalRoot types.MerkleRoot, seed types.Seed, publicOutputs []byte, opts ...splitproof.VerifyOption) (bool, error)
	SolidityCalldata(proof []byte) ([]byte, error)
	Options() *spconfig.SplitProofOptions
	QueueDepth() int
	Inflight() int
}

// BountyService 悬赏登记能力（*bounty.Registry 实现）
type BountyService interface {
	Create(ctx context.Context, params bounty.CreateParams) (*types.Bounty, error)
	Get(ctx context.Context, id string) (*types.Bounty, error)
	List(ctx context.Context) ([]*types.Bounty, error)
	VerifySplit(ctx context.Context, id, verifier string, proof, publicOutputs []byte) (*types.Bounty, error)
}

var (
	_ ProofService  = (*splitproof.Manager)(nil)
	_ BountyService = (*bounty.Registry)(nil)
)

// bindJSON 解析请求体，失败时上报 MalformedInput
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", splitproof.ErrMalformedInput, err))
		return false
	}
	return true
}

// parseRatio 解析可选的 "80/20" 比例
func parseRatio(s string) (*types.Ratio, error) {
	if s == "" {
		return nil, nil
	}
	r, err := types.ParseRatio(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", splitproof.ErrMalformedInput, err)
	}
	return &r, nil
}
