package splitproof

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 切分证明任务
// ============================================================================
//
// 🎯 **生命周期**：pending → running → completed | failed | timeout
//
// ⚠️ **注意**：
//   - 终态只设置一次，先到者生效；超时后 worker 的结果被丢弃
//   - 任务上下文携带 ProofTimeout，到期即进入 timeout
//
// ============================================================================

// TaskStatus 任务状态
type TaskStatus string

const (
	// TaskStatusPending 排队中
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning 证明中
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted 已完成
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed 失败
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusTimeout 超时或取消
	TaskStatusTimeout TaskStatus = "timeout"
)

// Terminal 是否为终态
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusTimeout
}

// JobRecord 任务记录（持久化与查询）
type JobRecord struct {
	ID          string       `json:"id"`
	Status      TaskStatus   `json:"status"`
	Scheme      string       `json:"scheme"`
	Shape       types.Shape  `json:"shape"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	ErrorCode   string       `json:"error_code,omitempty"`
	Error       string       `json:"error,omitempty"`
	Result      *ProofResult `json:"result,omitempty"`
}

// Err 还原任务错误，保留错误类别
func (r *JobRecord) Err() error {
	if r.Error == "" {
		return nil
	}
	if sentinel := sentinelForCode(r.ErrorCode); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, r.Error)
	}
	return errors.New(r.Error)
}

// ProofTask 证明任务
type ProofTask struct {
	ID      string
	Request *ProveRequest
	Scheme  string
	Shape   types.Shape

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	status      TaskStatus
	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time
	result      *ProofResult
	err         error
	done        chan struct{}
}

// NewProofTask 创建任务，超时从创建时刻起算
func NewProofTask(parent context.Context, id string, req *ProveRequest, scheme string, shape types.Shape, timeout time.Duration) *ProofTask {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return &ProofTask{
		ID:        id,
		Request:   req,
		Scheme:    scheme,
		Shape:     shape,
		ctx:       ctx,
		cancel:    cancel,
		status:    TaskStatusPending,
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// Context 任务上下文
func (t *ProofTask) Context() context.Context { return t.ctx }

// Done 任务进入终态时关闭
func (t *ProofTask) Done() <-chan struct{} { return t.done }

// Status 当前状态
func (t *ProofTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result 终态结果
func (t *ProofTask) Result() (*ProofResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// markRunning 进入运行态；任务已结束时返回 false
func (t *ProofTask) markRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TaskStatusPending || t.ctx.Err() != nil {
		return false
	}
	t.status = TaskStatusRunning
	t.startedAt = time.Now()
	return true
}

// finish 设置终态，仅第一次调用生效
func (t *ProofTask) finish(result *ProofResult, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return false
	}

	switch {
	case err == nil:
		t.status = TaskStatusCompleted
		result.JobID = t.ID
		t.result = result
	case errors.Is(err, ErrProvingTimeout):
		t.status = TaskStatusTimeout
		t.err = err
	default:
		t.status = TaskStatusFailed
		t.err = err
	}
	t.completedAt = time.Now()
	close(t.done)
	return true
}

// Record 任务快照
func (t *ProofTask) Record() *JobRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := &JobRecord{
		ID:        t.ID,
		Status:    t.status,
		Scheme:    t.Scheme,
		Shape:     t.Shape,
		CreatedAt: t.createdAt,
		Result:    t.result,
	}
	if !t.startedAt.IsZero() {
		started := t.startedAt
		r.StartedAt = &started
	}
	if !t.completedAt.IsZero() {
		completed := t.completedAt
		r.CompletedAt = &completed
	}
	if t.err != nil {
		r.ErrorCode = ErrorCode(t.err)
		r.Error = t.err.Error()
	}
	return r
}

// ============================================================================
// 错误编码（任务记录与 HTTP 层共用）
// ============================================================================

var errorCodes = []struct {
	code     string
	sentinel error
}{
	{"malformed_input", ErrMalformedInput},
	{"malformed_proof", ErrMalformedProof},
	{"witness_inconsistency", ErrWitnessInconsistency},
	{"proving_timeout", ErrProvingTimeout},
	{"overloaded", ErrOverloaded},
	{"backend_unavailable", ErrBackendUnavailable},
	{"internal_prover_fault", ErrInternalProverFault},
	{"job_not_found", ErrJobNotFound},
}

// ErrorCode 返回错误类别编码，未知错误返回 "internal"
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return "internal"
}

func sentinelForCode(code string) error {
	for _, c := range errorCodes {
		if c.code == code {
			return c.sentinel
		}
	}
	return nil
}
