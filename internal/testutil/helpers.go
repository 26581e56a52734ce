// Package testutil 提供测试辅助工具
//
// ⚠️ **注意**：本包只依赖接口与基础设施实现，不依赖业务包，避免循环依赖。
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/splitproof/internal/config/storage/badger"
	"github.com/weisyn/splitproof/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
)

// NewTestLogger 创建测试用的Logger
func NewTestLogger() log.Logger {
	return &MockLogger{}
}

// NewTestBehavioralLogger 创建行为Logger（记录调用）
func NewTestBehavioralLogger() *BehavioralMockLogger {
	return &BehavioralMockLogger{logs: make([]string, 0)}
}

// NewTestEventBus 创建记录发布的事件总线
func NewTestEventBus() *RecordingEventBus {
	return &RecordingEventBus{}
}

// NewTestBadgerStore 创建内存模式的BadgerStore，测试结束时关闭
func NewTestBadgerStore(t testing.TB) storage.BadgerStore {
	t.Helper()
	store, err := badger.New(badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{
		InMemory:     true,
		MemTableSize: 8 << 20,
	}), NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
