package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/weisyn/splitproof/internal/api"
	"github.com/weisyn/splitproof/internal/config"
	"github.com/weisyn/splitproof/internal/core/bounty"
	"github.com/weisyn/splitproof/internal/core/infrastructure/clock"
	"github.com/weisyn/splitproof/internal/core/infrastructure/event"
	"github.com/weisyn/splitproof/internal/core/infrastructure/log"
	"github.com/weisyn/splitproof/internal/core/infrastructure/metrics"
	"github.com/weisyn/splitproof/internal/core/infrastructure/storage"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	configiface "github.com/weisyn/splitproof/pkg/interfaces/config"
)

// ============================================================================
// 分层装配
// ============================================================================
//
// 🏗️ **层次**（自下而上）：
//  1. 基础设施层：配置、日志、时钟、指标
//  2. 通信层：事件总线、存储
//  3. 业务层：切分证明引擎、悬赏登记
//  4. 应用层：HTTP API（可关闭）
//
// ============================================================================

// Bootstrap 应用装配器
type Bootstrap struct {
	opts  *options
	fxApp *fx.App

	// 由 fx.Populate 填充
	manager  *splitproof.Manager
	bounties *bounty.Registry
}

// NewBootstrap 创建装配器
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 基础设施层
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configiface.AppOptions { return b.opts }),
		config.Module(),
		log.Module(),
		clock.Module(),
		metrics.Module(),
	}
}

// SetupCommunicationLayer 通信层
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),
		storage.Module(),
	}
}

// SetupBusinessLayer 业务层
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		splitproof.Module(),
		bounty.Module(),
		fx.Populate(&b.manager, &b.bounties),
	}
}

// SetupApplicationLayer 应用层
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	if !b.opts.enableAPI {
		return nil
	}
	return []fx.Option{api.Module()}
}

// SetupModules 汇总所有层的模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupCommunicationLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	return all
}

// CreateFxApp 创建 fx 应用并校验依赖图
func (b *Bootstrap) CreateFxApp() error {
	b.fxApp = fx.New(
		fx.Options(b.SetupModules()...),
		fx.NopLogger,
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("装配应用失败: %w", err)
	}
	return nil
}

// StartApp 启动应用
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
