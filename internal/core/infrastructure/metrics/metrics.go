// Package metrics 提供Prometheus指标采集
//
// 📋 **指标来源**
// - 证明任务与验证结论：订阅事件总线，不侵入证明引擎
// - 队列深度与在途证明数：注册时传入的采样函数
// - HTTP请求：由 API 中间件使用同一注册表
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/types"
)

// Namespace 指标命名空间
const Namespace = "splitproof"

// NewRegistry 创建独立注册表并注册进程与Go运行时采集器
//
// 使用独立注册表而非全局默认注册表，测试中可重复创建
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// SplitProofMetrics 切分证明业务指标
type SplitProofMetrics struct {
	reg prometheus.Registerer

	jobs          *prometheus.CounterVec
	proveDuration *prometheus.HistogramVec
	verifications *prometheus.CounterVec
	bounties      *prometheus.CounterVec
}

// NewSplitProofMetrics 在注册表上创建业务指标
func NewSplitProofMetrics(reg prometheus.Registerer) *SplitProofMetrics {
	factory := promauto.With(reg)
	return &SplitProofMetrics{
		reg: reg,
		jobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "prover",
				Name:      "jobs_total",
				Help:      "Proof jobs by terminal status",
			},
			[]string{"status"},
		),
		proveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "prover",
				Name:      "prove_duration_seconds",
				Help:      "Wall-clock time of completed proof jobs",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"shape"},
		),
		verifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "verifier",
				Name:      "verifications_total",
				Help:      "Verification verdicts",
			},
			[]string{"verdict", "cached"},
		),
		bounties: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "bounty",
				Name:      "events_total",
				Help:      "Bounty lifecycle events",
			},
			[]string{"event"},
		),
	}
}

// RegisterQueueGauges 注册队列深度与在途证明数的采样函数
func (m *SplitProofMetrics) RegisterQueueGauges(queueDepth, inflight func() int) {
	factory := promauto.With(m.reg)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "prover",
		Name:      "queue_depth",
		Help:      "Proof requests waiting for a worker",
	}, func() float64 { return float64(queueDepth()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "prover",
		Name:      "inflight",
		Help:      "Proofs currently being generated",
	}, func() float64 { return float64(inflight()) })
}

// SubscribeTo 订阅事件总线
func (m *SplitProofMetrics) SubscribeTo(bus event.EventBus) error {
	if err := bus.SubscribeAsync(types.EventTypeProofJobCompleted, m.onJobFinished, false); err != nil {
		return err
	}
	if err := bus.SubscribeAsync(types.EventTypeProofJobFailed, m.onJobFinished, false); err != nil {
		return err
	}
	if err := bus.SubscribeAsync(types.EventTypeProofVerified, m.onVerified, false); err != nil {
		return err
	}
	if err := bus.SubscribeAsync(types.EventTypeBountyCreated, m.onBountyCreated, false); err != nil {
		return err
	}
	return bus.SubscribeAsync(types.EventTypeBountySplitVerified, m.onBountyVerified, false)
}

func (m *SplitProofMetrics) onJobFinished(e types.ProofJobEvent) {
	m.jobs.WithLabelValues(e.Status).Inc()
	if e.Error == "" {
		m.proveDuration.WithLabelValues(e.Shape.Key()).Observe(e.Duration.Seconds())
	}
}

func (m *SplitProofMetrics) onVerified(e types.VerificationEvent) {
	verdict := "rejected"
	if e.Accepted {
		verdict = "accepted"
	}
	cached := "false"
	if e.Cached {
		cached = "true"
	}
	m.verifications.WithLabelValues(verdict, cached).Inc()
}

func (m *SplitProofMetrics) onBountyCreated(types.BountyEvent) {
	m.bounties.WithLabelValues("created").Inc()
}

func (m *SplitProofMetrics) onBountyVerified(types.BountyEvent) {
	m.bounties.WithLabelValues("verified").Inc()
}
