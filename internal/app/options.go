package app

import (
	"github.com/weisyn/splitproof/pkg/interfaces/config"
	"github.com/weisyn/splitproof/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项，实现 config.AppOptions
type options struct {
	// 配置文件路径
	configFilePath string

	// 嵌入的配置内容（优先级高于configFilePath）
	embeddedConfig []byte

	// 覆盖项，在配置文件解析之后应用
	overrides []func(*types.AppConfig)

	// 解析后的用户配置
	appConfig *types.AppConfig

	// API支持开关（默认启用）
	enableAPI bool
}

var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 设置嵌入的配置内容（优先级高于WithConfigFile）
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithDataDir 覆盖数据目录
func WithDataDir(dir string) Option {
	return withOverride(func(c *types.AppConfig) {
		if dir != "" {
			c.DataDir = &dir
		}
	})
}

// WithLogLevel 覆盖日志级别
func WithLogLevel(level string) Option {
	return withOverride(func(c *types.AppConfig) {
		if c.Log == nil {
			c.Log = &types.UserLogConfig{}
		}
		c.Log.Level = &level
	})
}

// WithSplitProof 覆盖切分证明配置中的非空字段
func WithSplitProof(fn func(*types.UserSplitProofConfig)) Option {
	return withOverride(func(c *types.AppConfig) {
		if c.SplitProof == nil {
			c.SplitProof = &types.UserSplitProofConfig{}
		}
		fn(c.SplitProof)
	})
}

// WithAPI 启用API模块
func WithAPI() Option {
	return func(o *options) {
		o.enableAPI = true
	}
}

// WithoutAPI 禁用API模块（CLI 进程内证明/验证时使用）
func WithoutAPI() Option {
	return func(o *options) {
		o.enableAPI = false
	}
}

func withOverride(fn func(*types.AppConfig)) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, fn)
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	o := &options{
		appConfig: &types.AppConfig{},
		enableAPI: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
