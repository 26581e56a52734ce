// Package storage 定义持久化与缓存存储接口
//
// 💾 **存储服务**
// - BadgerStore：持久化键值存储（电路工件、任务记录、悬赏登记）
// - MemoryStore：进程内缓存（验证结论缓存）
package storage

import (
	"context"
	"time"
)

//=============================================================================
// BadgerStore 接口定义
//=============================================================================

// BadgerStore 持久化键值存储
type BadgerStore interface {
	// Close 关闭数据库，应用退出时必须调用
	Close() error

	// Get 获取指定键的值，键不存在时返回 nil, nil
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 写入键值
	Set(ctx context.Context, key, value []byte) error

	// SetWithTTL 写入带过期时间的键值
	SetWithTTL(ctx context.Context, key, value []byte, ttl time.Duration) error

	// Delete 删除键
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 按前缀扫描，返回 键字符串 -> 值
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// RunInTransaction 在读写事务中执行，fn 返回错误时回滚
	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error
}

// BadgerTransaction 事务内的键值操作
type BadgerTransaction interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Exists(key []byte) (bool, error)
}
