// Package clock 时间源实现：系统时钟与测试用可控时钟
package clock

import (
	"sync"
	"time"

	infraClock "github.com/weisyn/splitproof/pkg/interfaces/infrastructure/clock"
)

// SystemClock 使用系统真实时间
type SystemClock struct{}

// NewSystemClock 创建系统时钟
func NewSystemClock() infraClock.Clock { return &SystemClock{} }

func (c *SystemClock) Now() time.Time                  { return time.Now() }
func (c *SystemClock) Since(t time.Time) time.Duration { return time.Since(t) }

// MockClock 测试用时钟，时间可控，可并发读取
type MockClock struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewMockClock 创建可控时钟
func NewMockClock(initial time.Time) *MockClock { return &MockClock{currentTime: initial} }

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

func (c *MockClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }

// Set 设置当前时间
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.currentTime = t
	c.mu.Unlock()
}

// Advance 推进时间
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	c.mu.Unlock()
}

var (
	_ infraClock.Clock = (*SystemClock)(nil)
	_ infraClock.Clock = (*MockClock)(nil)
)
