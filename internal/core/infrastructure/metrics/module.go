package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
)

// Module 返回 metrics 模块
//
// 提供：
// - *prometheus.Registry：供 /metrics 端点与API中间件使用
// - *SplitProofMetrics：业务指标，启动时订阅事件总线
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			NewRegistry,
			func(reg *prometheus.Registry) prometheus.Registerer { return reg },
			NewSplitProofMetrics,
		),
		fx.Invoke(func(m *SplitProofMetrics, bus event.EventBus, logger log.Logger) error {
			if err := m.SubscribeTo(bus); err != nil {
				return err
			}
			logger.Debug("指标采集已订阅事件总线")
			return nil
		}),
	)
}
