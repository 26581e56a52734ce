// Package event 基于asaskevich/EventBus的事件总线实现
package event

import (
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	eventconfig "github.com/weisyn/splitproof/internal/config/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
)

// EventBus 是基于asaskevich/EventBus的实现
//
// ⚠️ 事件系统未启用时，订阅静默成功、发布直接丢弃
type EventBus struct {
	bus    evbus.Bus
	config *eventconfig.Config
	logger log.Logger

	published atomic.Uint64
	dropped   atomic.Uint64
}

// New 创建事件总线实例
func New(config *eventconfig.Config, logger log.Logger) *EventBus {
	return &EventBus{
		bus:    evbus.New(),
		config: config,
		logger: logger,
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// Publish 发布事件
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !eb.config.IsEnabled() {
		eb.dropped.Add(1)
		return
	}
	eb.published.Add(1)
	if eb.logger != nil {
		eb.logger.Debugf("发布事件: %s", eventType)
	}
	eb.bus.Publish(string(eventType), args...)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待所有异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// HasCallback 检查是否有订阅者
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// Stats 返回发布与丢弃计数
func (eb *EventBus) Stats() map[string]uint64 {
	return map[string]uint64{
		"published": eb.published.Load(),
		"dropped":   eb.dropped.Load(),
	}
}

var _ event.EventBus = (*EventBus)(nil)
