package testutil

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/types"
)

// ==================== Mock 对象 ====================

// MockLogger 统一的日志Mock实现
//
// 📋 **使用场景**：不需要验证日志调用的测试
type MockLogger struct{}

func (m *MockLogger) Debug(msg string)                          {}
func (m *MockLogger) Debugf(format string, args ...interface{}) {}
func (m *MockLogger) Info(msg string)                           {}
func (m *MockLogger) Infof(format string, args ...interface{})  {}
func (m *MockLogger) Warn(msg string)                           {}
func (m *MockLogger) Warnf(format string, args ...interface{})  {}
func (m *MockLogger) Error(msg string)                          {}
func (m *MockLogger) Errorf(format string, args ...interface{}) {}
func (m *MockLogger) Fatal(msg string)                          {}
func (m *MockLogger) Fatalf(format string, args ...interface{}) {}
func (m *MockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *MockLogger) Sync() error                               { return nil }
func (m *MockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// BehavioralMockLogger 行为Mock日志（记录调用）
type BehavioralMockLogger struct {
	logs  []string
	mutex sync.Mutex
}

func (m *BehavioralMockLogger) record(level, msg string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.logs = append(m.logs, level+": "+msg)
}

func (m *BehavioralMockLogger) Debug(msg string)                          { m.record("DEBUG", msg) }
func (m *BehavioralMockLogger) Debugf(format string, args ...interface{}) { m.record("DEBUG", format) }
func (m *BehavioralMockLogger) Info(msg string)                           { m.record("INFO", msg) }
func (m *BehavioralMockLogger) Infof(format string, args ...interface{})  { m.record("INFO", format) }
func (m *BehavioralMockLogger) Warn(msg string)                           { m.record("WARN", msg) }
func (m *BehavioralMockLogger) Warnf(format string, args ...interface{})  { m.record("WARN", format) }
func (m *BehavioralMockLogger) Error(msg string)                          { m.record("ERROR", msg) }
func (m *BehavioralMockLogger) Errorf(format string, args ...interface{}) { m.record("ERROR", format) }
func (m *BehavioralMockLogger) Fatal(msg string)                          { m.record("FATAL", msg) }
func (m *BehavioralMockLogger) Fatalf(format string, args ...interface{}) { m.record("FATAL", format) }
func (m *BehavioralMockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *BehavioralMockLogger) Sync() error                               { return nil }
func (m *BehavioralMockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// GetLogs 获取所有日志记录
func (m *BehavioralMockLogger) GetLogs() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string{}, m.logs...)
}

// HasLog 是否存在包含指定片段的日志
func (m *BehavioralMockLogger) HasLog(fragment string) bool {
	for _, l := range m.GetLogs() {
		if strings.Contains(l, fragment) {
			return true
		}
	}
	return false
}

// PublishedEvent 记录的一次发布
type PublishedEvent struct {
	Type types.EventType
	Args []interface{}
}

// RecordingEventBus 记录所有发布的事件，不分发给订阅者
type RecordingEventBus struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func (b *RecordingEventBus) Subscribe(event.EventType, interface{}) error { return nil }
func (b *RecordingEventBus) SubscribeAsync(event.EventType, interface{}, bool) error {
	return nil
}
func (b *RecordingEventBus) Unsubscribe(event.EventType, interface{}) error { return nil }
func (b *RecordingEventBus) WaitAsync()                                     {}
func (b *RecordingEventBus) HasCallback(event.EventType) bool               { return false }

// Publish 记录事件
func (b *RecordingEventBus) Publish(eventType event.EventType, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, PublishedEvent{Type: eventType, Args: args})
}

// Events 返回指定类型的已发布事件
func (b *RecordingEventBus) Events(eventType types.EventType) []PublishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []PublishedEvent
	for _, e := range b.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

var _ event.EventBus = (*RecordingEventBus)(nil)
