package event

import (
	"context"

	"go.uber.org/fx"

	eventconfig "github.com/weisyn/splitproof/internal/config/event"
	"github.com/weisyn/splitproof/pkg/interfaces/config"
	eventInterface "github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Logger    log.Logger      `optional:"true"` // 日志记录器（可选）
	Lifecycle fx.Lifecycle    // 生命周期管理
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(func(input ModuleInput) ModuleOutput {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", "event")
			}
			bus := New(eventconfig.NewFromOptions(input.Provider.GetEvent()), logger)

			input.Lifecycle.Append(fx.Hook{
				OnStop: func(context.Context) error {
					// 等待异步订阅者处理完已发布的事件
					bus.WaitAsync()
					return nil
				},
			})
			return ModuleOutput{EventBus: bus}
		}),
	)
}
