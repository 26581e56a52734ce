package handlers

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/weisyn/splitproof/internal/core/bounty"
	"github.com/weisyn/splitproof/pkg/types"
)

// BountyHandlers 悬赏登记
type BountyHandlers struct {
	bounties BountyService
}

// NewBountyHandlers 创建悬赏处理器
func NewBountyHandlers(bounties BountyService) *BountyHandlers {
	return &BountyHandlers{bounties: bounties}
}

// RegisterRoutes 注册路由
func (h *BountyHandlers) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/bounties")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/verify", h.VerifySplit)
}

type createBountyRequest struct {
	Creator      string            `json:"creator"`
	Amount       uint64            `json:"amount"`
	Seed         *types.Seed       `json:"seed" binding:"required"`
	OriginalRoot *types.MerkleRoot `json:"original_root" binding:"required"`
	Ratio        string            `json:"ratio,omitempty"`
	Deadline     time.Time         `json:"deadline"`
}

// Create POST /v1/bounties
func (h *BountyHandlers) Create(c *gin.Context) {
	var req createBountyRequest
	if !bindJSON(c, &req) {
		return
	}
	params := bounty.CreateParams{
		Creator:      req.Creator,
		Amount:       req.Amount,
		Seed:         *req.Seed,
		OriginalRoot: *req.OriginalRoot,
		Deadline:     req.Deadline,
	}
	ratio, err := parseRatio(req.Ratio)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if ratio != nil {
		params.Ratio = *ratio
	}

	b, err := h.bounties.Create(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Location", "/v1/bounties/"+b.ID)
	c.JSON(http.StatusCreated, b)
}

// Get GET /v1/bounties/:id
func (h *BountyHandlers) Get(c *gin.Context) {
	b, err := h.bounties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// List GET /v1/bounties
func (h *BountyHandlers) List(c *gin.Context) {
	list, err := h.bounties.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bounties": list})
}

type verifySplitRequest struct {
	Verifier      string        `json:"verifier"`
	Proof         hexutil.Bytes `json:"proof" binding:"required"`
	PublicOutputs hexutil.Bytes `json:"public_outputs" binding:"required"`
}

// VerifySplit POST /v1/bounties/:id/verify
func (h *BountyHandlers) VerifySplit(c *gin.Context) {
	var req verifySplitRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.bounties.VerifySplit(c.Request.Context(), c.Param("id"), req.Verifier, req.Proof, req.PublicOutputs)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, b)
}
