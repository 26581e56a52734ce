// Package memory 提供基于BigCache的内存缓存实现
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	memoryconfig "github.com/weisyn/splitproof/internal/config/storage/memory"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	storage "github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
)

// ErrStoreClosed 缓存已关闭
var ErrStoreClosed = errors.New("memory store closed")

// Store 实现了MemoryStore接口，基于BigCache提供内存缓存功能
//
// ⚠️ BigCache 只支持全局生命周期窗口，Set 的 ttl 参数仅在短于窗口时
// 以过期时间戳前缀的方式生效
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
	mutex  sync.RWMutex
	closed bool
	now    func() time.Time
}

// New 创建一个新的BigCache内存存储实例
func New(config *memoryconfig.Config, logger log.Logger) (*Store, error) {
	opts := config.GetOptions()

	bigCacheConfig := bigcache.DefaultConfig(opts.DefaultTTL)
	bigCacheConfig.MaxEntriesInWindow = opts.MaxEntries
	bigCacheConfig.MaxEntrySize = 256
	bigCacheConfig.Shards = 64
	bigCacheConfig.CleanWindow = opts.CleanupInterval
	bigCacheConfig.HardMaxCacheSize = config.GetMaxMemoryMB()
	bigCacheConfig.Verbose = false

	cache, err := bigcache.New(context.Background(), bigCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}

	return &Store{
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.cache.Close()
}

// Get 获取缓存值
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return nil, false, ErrStoreClosed
	}

	raw, err := s.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return nil, false, nil
		}
		s.logger.Warnf("获取缓存键[%s]失败: %v", key, err)
		return nil, false, err
	}

	value, expired := decodeEntry(raw, s.now())
	if expired {
		_ = s.cache.Delete(key)
		return nil, false, nil
	}
	return value, true, nil
}

// Set 设置缓存值，ttl <= 0 表示使用全局生命周期窗口
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	var deadline time.Time
	if ttl > 0 {
		deadline = s.now().Add(ttl)
	}
	if err := s.cache.Set(key, encodeEntry(value, deadline)); err != nil {
		s.logger.Warnf("设置缓存键[%s]失败: %v", key, err)
		return err
	}
	return nil
}

// Delete 删除缓存项
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	if err := s.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Clear 清空缓存
func (s *Store) Clear(ctx context.Context) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.cache.Reset()
}

// Count 当前条目数（包含尚未清理的过期条目）
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	return int64(s.cache.Len()), nil
}

var _ storage.MemoryStore = (*Store)(nil)
