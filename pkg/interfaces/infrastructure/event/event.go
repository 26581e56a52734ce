// Package event 定义事件总线接口
//
// 🎯 **事件总线**
// - 证明任务生命周期与验证结论通过事件广播
// - 指标采集与悬赏结算作为订阅者接入，不与证明引擎直接耦合
package event

import "github.com/weisyn/splitproof/pkg/types"

// EventType 事件类型别名
type EventType = types.EventType

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 同步订阅
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅，transactional 为 true 时同一处理器串行执行
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// WaitAsync 等待所有异步处理完成
	WaitAsync()
	// HasCallback 检查是否有订阅者
	HasCallback(eventType EventType) bool
}
