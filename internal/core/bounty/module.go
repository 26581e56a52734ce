package bounty

import (
	"go.uber.org/fx"

	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 悬赏模块依赖
type ModuleParams struct {
	fx.In

	Logger      log.Logger
	BadgerStore storage.BadgerStore
	Manager     *splitproof.Manager
	EventBus    event.EventBus `optional:"true"`
	Clock       clock.Clock    `optional:"true"`
}

// Module 返回悬赏模块
func Module() fx.Option {
	return fx.Module("bounty",
		fx.Provide(func(p ModuleParams) *Registry {
			return New(p.Logger.With("module", "bounty"), p.BadgerStore, p.Manager, p.EventBus, p.Clock)
		}),
	)
}
