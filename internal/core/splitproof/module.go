package splitproof

import (
	"context"

	"go.uber.org/fx"

	spconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	"github.com/weisyn/splitproof/internal/core/infrastructure/metrics"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 切分证明模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Logger      log.Logger
	Options     *spconfig.SplitProofOptions
	BadgerStore storage.BadgerStore
	MemoryStore storage.MemoryStore        `optional:"true"`
	EventBus    event.EventBus             `optional:"true"`
	Metrics     *metrics.SplitProofMetrics `optional:"true"`
}

// Module 返回切分证明模块
func Module() fx.Option {
	return fx.Module("splitproof",
		fx.Provide(ProvideManager),
	)
}

// ProvideManager 创建并随应用生命周期启停管理器
func ProvideManager(params ModuleParams) (*Manager, error) {
	logger := params.Logger.With("module", "splitproof")

	m, err := NewManager(logger, params.Options, params.BadgerStore, params.MemoryStore, params.EventBus)
	if err != nil {
		return nil, err
	}
	if params.Metrics != nil {
		params.Metrics.RegisterQueueGauges(m.QueueDepth, m.Inflight)
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Infof("切分证明服务启动: scheme=%s, ratio=%s, max_rows=%d",
				params.Options.Scheme, params.Options.Ratio, params.Options.MaxRows)
			return m.Start()
		},
		OnStop: func(ctx context.Context) error {
			return m.Stop()
		},
	})
	return m, nil
}
