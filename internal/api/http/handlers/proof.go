package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/splitproof/internal/api/types"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/chain"
	"github.com/weisyn/splitproof/pkg/types"
)

// ProofHandlers 证明任务与验证
type ProofHandlers struct {
	proofs ProofService
}

// NewProofHandlers 创建证明处理器
func NewProofHandlers(proofs ProofService) *ProofHandlers {
	return &ProofHandlers{proofs: proofs}
}

// RegisterRoutes 注册路由
func (h *ProofHandlers) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/proofs", h.Submit)
	r.GET("/proofs/:id", h.Status)
	r.GET("/proofs/:id/payload", h.Payload)
	r.DELETE("/proofs/:id", h.Cancel)
	r.POST("/verify", h.Verify)
}

type proveRequest struct {
	RowHashes    []types.RowHash   `json:"row_hashes" binding:"required"`
	Seed         *types.Seed       `json:"seed" binding:"required"`
	OriginalRoot *types.MerkleRoot `json:"original_root" binding:"required"`
	Ratio        string            `json:"ratio,omitempty"`
	Scheme       string            `json:"scheme,omitempty"`
	Wait         bool              `json:"wait,omitempty"`
}

type submitResponse struct {
	JobID  string                `json:"job_id"`
	Status splitproof.TaskStatus `json:"status"`
}

// Submit POST /v1/proofs
//
// wait=true 时同步等待结果（200），否则返回任务ID（202）
func (h *ProofHandlers) Submit(c *gin.Context) {
	var req proveRequest
	if !bindJSON(c, &req) {
		return
	}
	ratio, err := parseRatio(req.Ratio)
	if err != nil {
		_ = c.Error(err)
		return
	}
	pr := &splitproof.ProveRequest{
		Rows:         req.RowHashes,
		Seed:         *req.Seed,
		OriginalRoot: *req.OriginalRoot,
		Ratio:        ratio,
		Scheme:       req.Scheme,
	}

	if req.Wait {
		res, err := h.proofs.ProveRequest(c.Request.Context(), pr)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	id, err := h.proofs.Submit(c.Request.Context(), pr)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Location", "/v1/proofs/"+id)
	c.JSON(http.StatusAccepted, submitResponse{JobID: id, Status: splitproof.TaskStatusPending})
}

// Status GET /v1/proofs/:id
func (h *ProofHandlers) Status(c *gin.Context) {
	rec, err := h.proofs.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Cancel DELETE /v1/proofs/:id
//
// 未结束的任务以 timeout 结束；返回取消后的任务记录
func (h *ProofHandlers) Cancel(c *gin.Context) {
	id := c.Param("id")
	if err := h.proofs.Cancel(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	rec, err := h.proofs.Status(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Payload GET /v1/proofs/:id/payload
func (h *ProofHandlers) Payload(c *gin.Context) {
	rec, err := h.proofs.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	switch {
	case rec.Status == splitproof.TaskStatusCompleted && rec.Result != nil:
	case rec.Status.Terminal():
		_ = c.Error(rec.Err())
		return
	default:
		_ = c.Error(apitypes.ErrJobNotFinished)
		return
	}

	var calldata []byte
	if rec.Result.Scheme == splitproof.SchemeGroth16 {
		if calldata, err = h.proofs.SolidityCalldata(rec.Result.Proof); err != nil {
			_ = c.Error(err)
			return
		}
	}
	payload, err := chain.FromResult(rec.Result, calldata)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

type verifyRequest struct {
	Proof         hexutil.Bytes     `json:"proof" binding:"required"`
	OriginalRoot  *types.MerkleRoot `json:"original_root" binding:"required"`
	Seed          *types.Seed       `json:"seed" binding:"required"`
	TrainRoot     *types.MerkleRoot `json:"train_root,omitempty"`
	TestRoot      *types.MerkleRoot `json:"test_root,omitempty"`
	PublicOutputs hexutil.Bytes     `json:"public_outputs,omitempty"`
	Ratio         string            `json:"ratio,omitempty"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// Verify POST /v1/verify
//
// 📋 提供 public_outputs 时同时校验训练集下标；否则需要 train_root 与 test_root
func (h *ProofHandlers) Verify(c *gin.Context) {
	var req verifyRequest
	if !bindJSON(c, &req) {
		return
	}
	ratio, err := parseRatio(req.Ratio)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var opts []splitproof.VerifyOption
	if ratio != nil {
		opts = append(opts, splitproof.WithRatio(*ratio))
	}

	ctx := c.Request.Context()
	var valid bool
	switch {
	case len(req.PublicOutputs) > 0:
		valid, err = h.proofs.VerifyOutputs(ctx, req.Proof, *req.OriginalRoot, *req.Seed, req.PublicOutputs, opts...)
	case req.TrainRoot != nil && req.TestRoot != nil:
		valid, err = h.proofs.Verify(ctx, req.Proof, *req.OriginalRoot, *req.Seed, *req.TrainRoot, *req.TestRoot, opts...)
	default:
		err = splitproof.WrapMalformedInputError("需要 public_outputs 或 train_root 与 test_root")
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, verifyResponse{Valid: valid})
}
