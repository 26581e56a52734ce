package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/pkg/types"
)

// CommitmentHandlers 承诺与置换计算（无状态，不经过任务队列）
type CommitmentHandlers struct {
	proofs ProofService
}

// NewCommitmentHandlers 创建承诺处理器
func NewCommitmentHandlers(proofs ProofService) *CommitmentHandlers {
	return &CommitmentHandlers{proofs: proofs}
}

// RegisterRoutes 注册路由
func (h *CommitmentHandlers) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/commit", h.Commit)
	r.GET("/permutation", h.Permutation)
}

type commitRequest struct {
	RowHashes []types.RowHash `json:"row_hashes" binding:"required"`
}

type commitResponse struct {
	Root types.MerkleRoot `json:"root"`
	N    int              `json:"n"`
}

// Commit POST /v1/commit
func (h *CommitmentHandlers) Commit(c *gin.Context) {
	var req commitRequest
	if !bindJSON(c, &req) {
		return
	}
	if limit := h.proofs.Options().MaxRows; len(req.RowHashes) > limit {
		_ = c.Error(splitproof.WrapMalformedInputError(fmt.Sprintf("行数 %d 超过上限 %d", len(req.RowHashes), limit)))
		return
	}
	root, err := commitment.Commit(req.RowHashes)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", splitproof.ErrMalformedInput, err))
		return
	}
	c.JSON(http.StatusOK, commitResponse{Root: root, N: len(req.RowHashes)})
}

type permutationResponse struct {
	Seed        types.Seed        `json:"seed"`
	N           int               `json:"n"`
	Ratio       string            `json:"ratio"`
	Permutation types.Permutation `json:"permutation"`
	*types.Split
}

// Permutation GET /v1/permutation?seed=HEX&n=N[&ratio=80/20]
func (h *CommitmentHandlers) Permutation(c *gin.Context) {
	seed, err := types.ParseSeed(c.Query("seed"))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: seed: %v", splitproof.ErrMalformedInput, err))
		return
	}
	n, err := strconv.Atoi(c.Query("n"))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: n: %v", splitproof.ErrMalformedInput, err))
		return
	}
	if limit := h.proofs.Options().MaxRows; n > limit {
		_ = c.Error(splitproof.WrapMalformedInputError(fmt.Sprintf("行数 %d 超过上限 %d", n, limit)))
		return
	}
	ratio := h.proofs.Options().Ratio
	if r, err := parseRatio(c.Query("ratio")); err != nil {
		_ = c.Error(err)
		return
	} else if r != nil {
		ratio = *r
	}

	perm, err := shuffle.Permute(seed, n)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", splitproof.ErrMalformedInput, err))
		return
	}
	split, err := shuffle.Split(perm, n, ratio)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", splitproof.ErrMalformedInput, err))
		return
	}
	c.JSON(http.StatusOK, permutationResponse{
		Seed:        seed,
		N:           n,
		Ratio:       ratio.String(),
		Permutation: perm,
		Split:       split,
	})
}
