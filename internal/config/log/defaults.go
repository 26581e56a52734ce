package log

import "go.uber.org/zap/zapcore"

// 日志配置默认值
const (
	defaultLogLevel  = "info"
	defaultToConsole = true
	// 默认不写文件，serve 模式通过配置指定
	defaultFilePath = ""

	defaultMaxSize    = 100
	defaultMaxBackups = 10
	defaultMaxAge     = 30
	defaultCompress   = true

	defaultEnableCaller     = true
	defaultEnableStacktrace = false
)

// levelMap 级别名称到zap级别的映射
var levelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}
