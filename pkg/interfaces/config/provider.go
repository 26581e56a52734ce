package config

import (
	apiconfig "github.com/weisyn/splitproof/internal/config/api"
	eventconfig "github.com/weisyn/splitproof/internal/config/event"
	logconfig "github.com/weisyn/splitproof/internal/config/log"
	splitproofconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	badgerconfig "github.com/weisyn/splitproof/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/splitproof/internal/config/storage/memory"
)

// Provider 配置提供者接口
type Provider interface {
	// GetAppName 应用名称
	GetAppName() string

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetBadger 获取持久化存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetMemory 获取验证结论缓存配置
	GetMemory() *memoryconfig.MemoryOptions

	// GetEvent 获取事件配置
	GetEvent() *eventconfig.EventOptions

	// GetSplitProof 获取切分证明引擎配置
	GetSplitProof() *splitproofconfig.SplitProofOptions

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions
}
