// Package log 定义统一日志记录器接口
//
// 🎯 **设计原则**
// - 所有模块依赖本接口，而非具体日志实现
// - 结构化字段通过 With 附加
package log

import "go.uber.org/zap"

// Logger 定义日志记录器接口
type Logger interface {
	// Debug 记录调试级别的日志
	Debug(msg string)
	// Debugf 记录格式化的调试级别日志
	Debugf(format string, args ...interface{})

	// Info 记录信息级别的日志
	Info(msg string)
	// Infof 记录格式化的信息级别日志
	Infof(format string, args ...interface{})

	// Warn 记录警告级别的日志
	Warn(msg string)
	// Warnf 记录格式化的警告级别日志
	Warnf(format string, args ...interface{})

	// Error 记录错误级别的日志
	Error(msg string)
	// Errorf 记录格式化的错误级别日志
	Errorf(format string, args ...interface{})

	// Fatal 记录致命错误并退出进程
	Fatal(msg string)
	// Fatalf 记录格式化的致命错误并退出进程
	Fatalf(format string, args ...interface{})

	// With 返回附加了键值对字段的子日志器
	With(args ...interface{}) Logger

	// Sync 刷新缓冲
	Sync() error

	// GetZapLogger 获取底层zap日志器
	GetZapLogger() *zap.Logger
}
