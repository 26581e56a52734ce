package splitproof

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
)

// ============================================================================
// 证明工作线程池
// ============================================================================
//
// 🎯 **设计目的**：固定数量的 worker 从有界队列取任务，限制同时进行的证明数
//
// ⚠️ **注意**：
//   - 后端调用不可中断，超时任务的 worker 一直占用到后端返回
//   - 任务之间不共享可变的证明状态
//   - 失败不自动重试
//
// ============================================================================

// TaskHandler 执行一个任务，返回结果或错误
type TaskHandler func(ctx context.Context, task *ProofTask) (*ProofResult, error)

// FinishHook 任务进入终态后调用（仅调用一次）
type FinishHook func(task *ProofTask)

// WorkerPool 证明工作线程池
type WorkerPool struct {
	size    int
	queue   *TaskQueue
	handler TaskHandler
	onDone  FinishHook
	logger  log.Logger

	wg      sync.WaitGroup
	started atomic.Bool

	inflight  atomic.Int64
	processed atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// NewWorkerPool 创建工作线程池
func NewWorkerPool(size int, queue *TaskQueue, handler TaskHandler, onDone FinishHook, logger log.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		queue:   queue,
		handler: handler,
		onDone:  onDone,
		logger:  logger,
	}
}

// Start 启动全部 worker
func (p *WorkerPool) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	p.logger.Infof("✅ 证明工作线程池已启动: workers=%d, queue=%d", p.size, p.queue.Capacity())
}

// Stop 关闭队列并等待 worker 退出；队列中剩余任务以 ErrBackendUnavailable 结束
func (p *WorkerPool) Stop() {
	if !p.started.CompareAndSwap(true, false) {
		return
	}
	p.queue.Close()
	p.wg.Wait()
	p.logger.Infof("✅ 证明工作线程池已停止: processed=%d, succeeded=%d, failed=%d",
		p.processed.Load(), p.succeeded.Load(), p.failed.Load())
}

// Inflight 正在证明的任务数
func (p *WorkerPool) Inflight() int { return int(p.inflight.Load()) }

func (p *WorkerPool) run(workerID int) {
	defer p.wg.Done()
	for task := range p.queue.Tasks() {
		if !p.started.Load() {
			p.complete(task, nil, WrapBackendUnavailableError("证明服务已停止", nil))
			continue
		}
		p.process(workerID, task)
	}
}

func (p *WorkerPool) process(workerID int, task *ProofTask) {
	if !task.markRunning() {
		// 排队期间已超时或取消
		p.logger.Debugf("worker%d 跳过已结束任务: job=%s, status=%s", workerID, task.ID, task.Status())
		return
	}

	p.inflight.Add(1)
	result, err := p.invoke(task)
	p.inflight.Add(-1)
	p.processed.Add(1)

	if err != nil {
		p.failed.Add(1)
	} else {
		p.succeeded.Add(1)
	}
	p.complete(task, result, err)
}

func (p *WorkerPool) invoke(task *ProofTask) (result *ProofResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf("证明任务panic: job=%s, %v\n%s", task.ID, r, debug.Stack())
			result, err = nil, WrapInternalProverFaultError(task.Shape.Key(), fmt.Errorf("panic: %v", r))
		}
	}()
	return p.handler(task.ctx, task)
}

func (p *WorkerPool) complete(task *ProofTask, result *ProofResult, err error) {
	if task.finish(result, err) && p.onDone != nil {
		p.onDone(task)
	}
	task.cancel()
}
