package storage

import (
	"context"
	"time"
)

// MemoryStore 进程内缓存接口
//
// ⚠️ ttl 由底层实现按全局生命周期窗口处理，单条TTL可能被忽略
type MemoryStore interface {
	// Get 获取缓存值，返回值、是否存在及可能的错误
	Get(ctx context.Context, key string) (value []byte, exists bool, err error)

	// Set 写入缓存
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除缓存项
	Delete(ctx context.Context, key string) error

	// Clear 清空缓存
	Clear(ctx context.Context) error

	// Count 当前条目数
	Count(ctx context.Context) (int64, error)
}
