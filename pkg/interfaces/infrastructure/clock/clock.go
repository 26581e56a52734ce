// Package clock provides time source interfaces.
package clock

import "time"

// Clock 统一时间源
//
// 悬赏截止判断经由此接口取时，测试中可替换为可控时钟
type Clock interface {
	// Now 获取当前时间
	Now() time.Time

	// Since 计算从指定时间到现在的持续时间
	Since(t time.Time) time.Duration
}
