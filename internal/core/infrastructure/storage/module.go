// Package storage 提供存储管理功能
package storage

import (
	"context"
	"fmt"

	badgerconfig "github.com/weisyn/splitproof/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/splitproof/internal/config/storage/memory"
	"github.com/weisyn/splitproof/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/splitproof/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/splitproof/pkg/interfaces/config"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider // 配置提供者
	Logger    log.Logger      // 日志记录器
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore // BadgerDB存储（必需，失败即错误）
	MemoryStore storageInterface.MemoryStore `optional:"true"` // 验证结论缓存（配置关闭时为nil）
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 根据配置初始化存储引擎
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger := params.Logger.With("module", "storage")

	badgerStore, err := badger.New(badgerconfig.NewFromOptions(params.Provider.GetBadger()), logger)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("初始化BadgerDB存储失败: %w", err)
	}

	out := ModuleOutput{BadgerStore: badgerStore}

	var memoryStore *memory.Store
	memOpts := params.Provider.GetMemory()
	if memOpts.Enabled {
		memoryStore, err = memory.New(memoryconfig.NewFromOptions(memOpts), logger)
		if err != nil {
			_ = badgerStore.Close()
			return ModuleOutput{}, fmt.Errorf("初始化内存缓存失败: %w", err)
		}
		out.MemoryStore = memoryStore
	} else {
		logger.Info("验证结论缓存已禁用")
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("正在关闭存储服务...")
			if memoryStore != nil {
				if err := memoryStore.Close(); err != nil {
					logger.Warnf("关闭内存缓存失败: %v", err)
				}
			}
			return badgerStore.Close()
		},
	})

	return out, nil
}
