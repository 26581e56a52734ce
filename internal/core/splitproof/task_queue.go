package splitproof

import (
	"sync"

	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
)

// TaskQueue 有界证明任务队列
//
// 🎯 入队不阻塞：队列满时立即返回 ErrOverloaded。
// 容量为0时只有空闲 worker 正在等待才能入队。
type TaskQueue struct {
	ch       chan *ProofTask
	capacity int
	logger   log.Logger

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewTaskQueue 创建任务队列
func NewTaskQueue(capacity int, logger log.Logger) *TaskQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &TaskQueue{
		ch:       make(chan *ProofTask, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Enqueue 入队
func (q *TaskQueue) Enqueue(task *ProofTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return WrapBackendUnavailableError("任务队列已关闭", nil)
	}

	select {
	case q.ch <- task:
		q.logger.Debugf("任务已入队: job=%s, shape=%s, depth=%d", task.ID, task.Shape.Key(), len(q.ch))
		return nil
	default:
		return WrapOverloadedError(q.capacity)
	}
}

// Depth 等待中的任务数
func (q *TaskQueue) Depth() int { return len(q.ch) }

// Capacity 队列容量
func (q *TaskQueue) Capacity() int { return q.capacity }

// Tasks worker 读取端
func (q *TaskQueue) Tasks() <-chan *ProofTask { return q.ch }

// Close 关闭队列，之后的入队返回 ErrBackendUnavailable
func (q *TaskQueue) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.ch)
		q.mu.Unlock()
	})
}
