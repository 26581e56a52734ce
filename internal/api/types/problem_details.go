// Package types API 层共享的错误响应类型
package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/weisyn/splitproof/internal/core/bounty"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/chain"
)

// ProblemDetails 错误响应（基于 RFC7807 + 错误码扩展）
type ProblemDetails struct {
	// RFC7807 标准字段
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// 扩展字段
	Code      string                 `json:"code"`
	Details   map[string]interface{} `json:"details,omitempty"`
	TraceID   string                 `json:"traceId"`
	Timestamp string                 `json:"timestamp"`
}

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// WriteJSON 将 Problem Details 写入 HTTP 响应
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewProblemDetails 创建新的 Problem Details，traceID 为空时自动生成
func NewProblemDetails(code string, status int, detail, traceID string) *ProblemDetails {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	return &ProblemDetails{
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Code:      code,
		TraceID:   traceID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// IsProblemDetails 检查错误是否为 Problem Details
func IsProblemDetails(err error) (*ProblemDetails, bool) {
	var pd *ProblemDetails
	if errors.As(err, &pd) {
		return pd, true
	}
	return nil, false
}

// 错误码常量（引擎错误码沿用 splitproof.ErrorCode）
const (
	CodeNotFound          = "not_found"
	CodeJobNotFinished    = "job_not_finished"
	CodeBountyExpired     = "bounty_expired"
	CodeAlreadyVerified   = "already_verified"
	CodeProofRejected     = "proof_rejected"
	CodeInvalidBountyTerm = "invalid_bounty_terms"
	CodeInternal          = "internal"
)

// ErrJobNotFinished 任务尚未结束，无结果可用
var ErrJobNotFinished = errors.New("job not finished")

// Classify 将错误映射为 HTTP 状态码与错误码
//
// 📋 **映射**：
//   - MalformedInput / MalformedProof → 400
//   - WitnessInconsistency → 422
//   - Overloaded → 429
//   - ProvingTimeout → 504
//   - BackendUnavailable → 503
//   - InternalProverFault → 500
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, splitproof.ErrProvingTimeout):
		return http.StatusGatewayTimeout, splitproof.ErrorCode(err)
	case errors.Is(err, splitproof.ErrMalformedInput), errors.Is(err, splitproof.ErrMalformedProof):
		return http.StatusBadRequest, splitproof.ErrorCode(err)
	case errors.Is(err, chain.ErrMalformedPayload):
		return http.StatusBadRequest, "malformed_proof"
	case errors.Is(err, splitproof.ErrWitnessInconsistency):
		return http.StatusUnprocessableEntity, splitproof.ErrorCode(err)
	case errors.Is(err, splitproof.ErrOverloaded):
		return http.StatusTooManyRequests, splitproof.ErrorCode(err)
	case errors.Is(err, splitproof.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, splitproof.ErrorCode(err)
	case errors.Is(err, splitproof.ErrInternalProverFault):
		return http.StatusInternalServerError, splitproof.ErrorCode(err)
	case errors.Is(err, splitproof.ErrJobNotFound), errors.Is(err, bounty.ErrBountyNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrJobNotFinished):
		return http.StatusConflict, CodeJobNotFinished
	case errors.Is(err, bounty.ErrBadDeadline), errors.Is(err, bounty.ErrBadAmount):
		return http.StatusBadRequest, CodeInvalidBountyTerm
	case errors.Is(err, bounty.ErrExpired):
		return http.StatusGone, CodeBountyExpired
	case errors.Is(err, bounty.ErrAlreadyVerified):
		return http.StatusConflict, CodeAlreadyVerified
	case errors.Is(err, bounty.ErrProofRejected):
		return http.StatusUnprocessableEntity, CodeProofRejected
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// FromError 由错误构造 Problem Details
func FromError(err error, traceID string) *ProblemDetails {
	if pd, ok := IsProblemDetails(err); ok {
		return pd
	}
	status, code := Classify(err)
	return NewProblemDetails(code, status, err.Error(), traceID)
}
