package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查
type HealthHandler struct {
	proofs    ProofService
	startTime time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(proofs ProofService) *HealthHandler {
	return &HealthHandler{proofs: proofs, startTime: time.Now()}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status        string `json:"status"` // healthy, degraded
	Scheme        string `json:"scheme"`
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	Inflight      int    `json:"inflight"`
	Workers       int    `json:"workers"`
	Uptime        string `json:"uptime"`
}

// GetHealth GET /healthz
//
// 队列已满时报告 degraded，新提交会被拒绝
func (h *HealthHandler) GetHealth(c *gin.Context) {
	opts := h.proofs.Options()
	resp := HealthResponse{
		Status:        "healthy",
		Scheme:        opts.Scheme,
		QueueDepth:    h.proofs.QueueDepth(),
		QueueCapacity: opts.MaxQueueDepth,
		Inflight:      h.proofs.Inflight(),
		Workers:       opts.MaxConcurrent,
		Uptime:        time.Since(h.startTime).Round(time.Second).String(),
	}
	if resp.QueueDepth >= resp.QueueCapacity && resp.Inflight >= resp.Workers {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
