package config

import (
	"github.com/weisyn/splitproof/internal/config/api"
	"github.com/weisyn/splitproof/internal/config/event"
	"github.com/weisyn/splitproof/internal/config/log"
	"github.com/weisyn/splitproof/internal/config/splitproof"
	"github.com/weisyn/splitproof/internal/config/storage/badger"
	"github.com/weisyn/splitproof/internal/config/storage/memory"
	"github.com/weisyn/splitproof/pkg/interfaces/config"
	"github.com/weisyn/splitproof/pkg/types"
)

const defaultAppName = "splitproof"

// Provider 实现配置提供者接口
//
// 每次 Get* 都从用户配置重新构造选项，调用方拿到的是独立副本
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// GetAppName 获取应用名称
func (p *Provider) GetAppName() string {
	if p.appConfig.AppName != nil && *p.appConfig.AppName != "" {
		return *p.appConfig.AppName
	}
	return defaultAppName
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetBadger 获取持久化存储配置
func (p *Provider) GetBadger() *badger.BadgerOptions {
	var dataDir string
	if p.appConfig.DataDir != nil {
		dataDir = *p.appConfig.DataDir
	}
	return badger.New(p.appConfig.Storage, dataDir).GetOptions()
}

// GetMemory 获取验证结论缓存配置
func (p *Provider) GetMemory() *memory.MemoryOptions {
	return memory.New(p.appConfig.Cache).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	return event.New(p.appConfig.Event).GetOptions()
}

// GetSplitProof 获取切分证明引擎配置
func (p *Provider) GetSplitProof() *splitproof.SplitProofOptions {
	return splitproof.New(p.appConfig.SplitProof).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

var _ config.Provider = (*Provider)(nil)
