package splitproof

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	spconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/splitproof/pkg/types"
)

const jobKeyPrefix = "splitproof/job/"

// Manager 切分证明管理器
//
// 🎯 **设计理念**：薄实现，只做依赖组装与任务调度，证明与验证委托给子组件
type Manager struct {
	// ==================== 基础设施服务 ====================
	logger  log.Logger
	options *spconfig.SplitProofOptions
	store   storage.BadgerStore // 任务记录，可为nil
	bus     event.EventBus      // 生命周期事件，可为nil

	// ==================== 专门的子组件 ====================
	registry  *ProvingSchemeRegistry
	circuits  *CircuitManager
	prover    *Prover
	validator *Validator
	queue     *TaskQueue
	pool      *WorkerPool

	// ==================== 运行状态 ====================
	tasksMu sync.RWMutex
	tasks   map[string]*ProofTask
	started atomic.Bool
}

// NewManager 创建切分证明管理器
//
// 🏗️ **初始化顺序**：方案注册表 → 电路工件 → 证明器/验证器 → 队列与工作池
func NewManager(
	logger log.Logger,
	options *spconfig.SplitProofOptions,
	store storage.BadgerStore,
	cache storage.MemoryStore,
	bus event.EventBus,
) (*Manager, error) {
	if options == nil {
		options = spconfig.DefaultOptions()
	}
	if err := options.Ratio.Validate(); err != nil {
		return nil, fmt.Errorf("切分比例配置错误: %w", err)
	}

	registry := NewProvingSchemeRegistry(logger)
	if !registry.IsSchemeSupported(options.Scheme) {
		return nil, fmt.Errorf("不支持的证明方案: %s", options.Scheme)
	}
	circuitManager, err := NewCircuitManager(logger, registry, store, options)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		logger:    logger,
		options:   options,
		store:     store,
		bus:       bus,
		registry:  registry,
		circuits:  circuitManager,
		prover:    NewProver(logger, options.SelfVerify),
		validator: NewValidator(logger, circuitManager, registry, options.Ratio, cache, options.VerdictTTL, bus),
		queue:     NewTaskQueue(options.MaxQueueDepth, logger),
		tasks:     make(map[string]*ProofTask),
	}
	m.pool = NewWorkerPool(options.MaxConcurrent, m.queue, m.runTask, m.onTaskFinished, logger)
	return m, nil
}

// Start 启动工作线程池
func (m *Manager) Start() error {
	if !m.started.CompareAndSwap(false, true) {
		return nil
	}
	m.pool.Start()
	return nil
}

// Stop 停止工作线程池
func (m *Manager) Stop() error {
	if !m.started.CompareAndSwap(true, false) {
		return nil
	}
	m.pool.Stop()
	return nil
}

// ============================================================================
// 证明
// ============================================================================

// Prove 同步生成切分证明，使用默认比例与方案
func (m *Manager) Prove(ctx context.Context, rows []types.RowHash, seed types.Seed, originalRoot types.MerkleRoot) (*ProofResult, error) {
	return m.ProveRequest(ctx, &ProveRequest{Rows: rows, Seed: seed, OriginalRoot: originalRoot})
}

// ProveRequest 同步生成切分证明；调用方取消或超时立即返回 ErrProvingTimeout
func (m *Manager) ProveRequest(ctx context.Context, req *ProveRequest) (*ProofResult, error) {
	task, err := m.submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.waitTask(ctx, task)
}

// Submit 异步提交证明任务，任务不随调用方上下文取消
func (m *Manager) Submit(ctx context.Context, req *ProveRequest) (string, error) {
	task, err := m.submit(context.WithoutCancel(ctx), req)
	if err != nil {
		return "", err
	}
	return task.ID, nil
}

// Status 查询任务状态；内存中没有时查持久化记录
func (m *Manager) Status(ctx context.Context, jobID string) (*JobRecord, error) {
	if task := m.getTask(jobID); task != nil {
		return task.Record(), nil
	}
	return m.loadRecord(ctx, jobID)
}

// Wait 等待任务结束
func (m *Manager) Wait(ctx context.Context, jobID string) (*ProofResult, error) {
	if task := m.getTask(jobID); task != nil {
		return m.waitTask(ctx, task)
	}
	rec, err := m.loadRecord(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !rec.Status.Terminal() {
		// 记录来自上一个进程，任务已不可能完成
		return nil, WrapBackendUnavailableError(fmt.Sprintf("任务 %s 未在本进程中运行", jobID), nil)
	}
	if rec.Status == TaskStatusCompleted {
		return rec.Result, nil
	}
	return nil, rec.Err()
}

// Cancel 取消任务，任务以 timeout 状态结束；已结束的任务不受影响
func (m *Manager) Cancel(ctx context.Context, jobID string) error {
	if task := m.getTask(jobID); task != nil {
		task.cancel()
		m.logger.Infof("证明任务已取消: job=%s", jobID)
		return nil
	}
	_, err := m.loadRecord(ctx, jobID)
	return err
}

func (m *Manager) submit(parent context.Context, req *ProveRequest) (*ProofTask, error) {
	if !m.started.Load() {
		return nil, WrapBackendUnavailableError("证明服务未启动", nil)
	}
	scheme, shape, err := m.plan(req)
	if err != nil {
		return nil, err
	}
	// 入队前拒绝与原始根不一致的见证，不占用队列和电路工件
	if _, err := checkStatement(req, shape); err != nil {
		return nil, err
	}

	task := NewProofTask(parent, uuid.NewString(), req, scheme, shape, m.options.ProofTimeout)

	// 截止或取消时立即进入 timeout，worker 稍后的结果被丢弃
	stop := context.AfterFunc(task.ctx, func() {
		if task.finish(nil, WrapProvingTimeoutError(task.ID, task.ctx.Err())) {
			m.onTaskFinished(task)
		}
	})

	m.putTask(task)
	if err := m.queue.Enqueue(task); err != nil {
		stop()
		m.dropTask(task.ID)
		task.cancel()
		return nil, err
	}

	m.saveRecord(task)
	m.publish(types.EventTypeProofJobSubmitted, task, 0)
	return task, nil
}

// plan 校验请求并确定方案与电路形状
func (m *Manager) plan(req *ProveRequest) (string, types.Shape, error) {
	if req == nil || len(req.Rows) == 0 {
		return "", types.Shape{}, WrapMalformedInputError("行摘要为空")
	}
	n := len(req.Rows)
	if n > m.options.MaxRows {
		return "", types.Shape{}, WrapMalformedInputError(fmt.Sprintf("行数 %d 超出上限 %d", n, m.options.MaxRows))
	}
	if _, err := commitment.RootToElement(req.OriginalRoot); err != nil {
		return "", types.Shape{}, classifyInputError(err)
	}

	ratio := m.options.Ratio
	if req.Ratio != nil {
		ratio = *req.Ratio
	}
	k, err := shuffle.SplitPoint(n, ratio)
	if err != nil {
		return "", types.Shape{}, classifyInputError(err)
	}

	scheme := req.Scheme
	if scheme == "" {
		scheme = m.options.Scheme
	}
	if !m.registry.IsSchemeSupported(scheme) {
		return "", types.Shape{}, WrapMalformedInputError(fmt.Sprintf("不支持的证明方案: %s", scheme))
	}
	return scheme, types.Shape{N: n, K: k}, nil
}

func (m *Manager) waitTask(ctx context.Context, task *ProofTask) (*ProofResult, error) {
	select {
	case <-task.Done():
		return task.Result()
	case <-ctx.Done():
		return nil, WrapProvingTimeoutError(task.ID, ctx.Err())
	}
}

// runTask worker 执行体：加载工件后证明
func (m *Manager) runTask(ctx context.Context, task *ProofTask) (*ProofResult, error) {
	artifact, err := m.circuits.Load(ctx, task.Scheme, task.Shape)
	if err != nil {
		return nil, err
	}
	return m.prover.Prove(ctx, artifact, task.Request)
}

// onTaskFinished 终态回调：持久化记录、发布事件、释放内存引用
func (m *Manager) onTaskFinished(task *ProofTask) {
	rec := task.Record()
	m.saveRecord(task)

	var d time.Duration
	if rec.StartedAt != nil && rec.CompletedAt != nil {
		d = rec.CompletedAt.Sub(*rec.StartedAt)
	}
	if rec.Status == TaskStatusCompleted {
		m.publish(types.EventTypeProofJobCompleted, task, d)
	} else {
		m.logger.Warnf("证明任务失败: job=%s, status=%s, err=%s", rec.ID, rec.Status, rec.Error)
		m.publish(types.EventTypeProofJobFailed, task, d)
	}

	// 有持久化存储时查询改走记录，否则内存保留到记录过期
	keep := m.options.JobRetention
	if m.store != nil {
		keep = time.Minute
	}
	time.AfterFunc(keep, func() { m.dropTask(task.ID) })
}

// ============================================================================
// 验证与导出
// ============================================================================

// Verify 验证证明（训练索引由种子重算）
func (m *Manager) Verify(ctx context.Context, proof []byte, originalRoot types.MerkleRoot, seed types.Seed, trainRoot, testRoot types.MerkleRoot, opts ...VerifyOption) (bool, error) {
	return m.validator.Verify(ctx, proof, originalRoot, seed, trainRoot, testRoot, opts...)
}

// VerifyOutputs 按公开输出编码验证
func (m *Manager) VerifyOutputs(ctx context.Context, proof []byte, originalRoot types.MerkleRoot, seed types.Seed, publicOutputs []byte, opts ...VerifyOption) (bool, error) {
	return m.validator.VerifyOutputs(ctx, proof, originalRoot, seed, publicOutputs, opts...)
}

// ExportVerifier 导出 n 行数据集形状的 Solidity 验证合约
func (m *Manager) ExportVerifier(ctx context.Context, n int, w io.Writer) (*CircuitArtifact, error) {
	k, err := shuffle.SplitPoint(n, m.options.Ratio)
	if err != nil {
		return nil, classifyInputError(err)
	}
	artifact, err := m.circuits.Load(ctx, m.options.Scheme, types.Shape{N: n, K: k})
	if err != nil {
		return nil, err
	}
	if err := artifact.Scheme.ExportSolidity(artifact.VK, w); err != nil {
		return nil, fmt.Errorf("导出Solidity验证合约失败: %w", err)
	}
	return artifact, nil
}

// SolidityCalldata 证明信封中证明的 Solidity 调用数据
func (m *Manager) SolidityCalldata(proof []byte) ([]byte, error) {
	env, err := ParseEnvelope(proof)
	if err != nil {
		return nil, err
	}
	scheme, err := m.registry.GetSchemeByID(env.SchemeID)
	if err != nil {
		return nil, WrapMalformedProofError(err.Error())
	}
	p, err := scheme.DeserializeProof(env.Proof, env.Curve)
	if err != nil {
		return nil, WrapMalformedProofError(err.Error())
	}
	return scheme.SolidityCalldata(p)
}

// ============================================================================
// 访问器
// ============================================================================

// Options 引擎配置
func (m *Manager) Options() *spconfig.SplitProofOptions { return m.options }

// Validator 验证器
func (m *Manager) Validator() *Validator { return m.validator }

// CircuitManager 电路工件管理器
func (m *Manager) CircuitManager() *CircuitManager { return m.circuits }

// SchemeRegistry 证明方案注册表
func (m *Manager) SchemeRegistry() *ProvingSchemeRegistry { return m.registry }

// QueueDepth 排队任务数
func (m *Manager) QueueDepth() int { return m.queue.Depth() }

// Inflight 正在证明的任务数
func (m *Manager) Inflight() int { return m.pool.Inflight() }

// ============================================================================
// 任务表与持久化
// ============================================================================

func (m *Manager) putTask(task *ProofTask) {
	m.tasksMu.Lock()
	m.tasks[task.ID] = task
	m.tasksMu.Unlock()
}

func (m *Manager) getTask(id string) *ProofTask {
	m.tasksMu.RLock()
	defer m.tasksMu.RUnlock()
	return m.tasks[id]
}

func (m *Manager) dropTask(id string) {
	m.tasksMu.Lock()
	delete(m.tasks, id)
	m.tasksMu.Unlock()
}

func (m *Manager) saveRecord(task *ProofTask) {
	if m.store == nil {
		return
	}
	data, err := json.Marshal(task.Record())
	if err != nil {
		m.logger.Warnf("序列化任务记录失败: job=%s, err=%v", task.ID, err)
		return
	}
	if err := m.store.SetWithTTL(context.Background(), []byte(jobKeyPrefix+task.ID), data, m.options.JobRetention); err != nil {
		m.logger.Warnf("写入任务记录失败: job=%s, err=%v", task.ID, err)
	}
}

func (m *Manager) loadRecord(ctx context.Context, jobID string) (*JobRecord, error) {
	if m.store == nil {
		return nil, WrapJobNotFoundError(jobID)
	}
	data, err := m.store.Get(ctx, []byte(jobKeyPrefix+jobID))
	if err != nil {
		return nil, fmt.Errorf("读取任务记录失败: %w", err)
	}
	if data == nil {
		return nil, WrapJobNotFoundError(jobID)
	}
	var rec JobRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("解析任务记录失败: %w", err)
	}
	return &rec, nil
}

func (m *Manager) publish(t types.EventType, task *ProofTask, d time.Duration) {
	if m.bus == nil {
		return
	}
	rec := task.Record()
	m.bus.Publish(t, types.ProofJobEvent{
		JobID:    rec.ID,
		Shape:    rec.Shape,
		Status:   string(rec.Status),
		Duration: d,
		Error:    rec.Error,
	})
}
