package api

import (
	"time"

	"github.com/weisyn/splitproof/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	Enabled bool   `json:"enabled"` // 是否启用HTTP服务
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口

	// 超时配置
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// CORS配置
	CORSEnabled bool     `json:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins"`

	// 最大请求大小(字节)，行摘要列表可能很大
	MaxRequestSize int64 `json:"max_request_size"`
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig *types.UserAPIConfig) *Config {
	options := createDefaultAPIOptions()
	if userConfig != nil {
		applyUserAPIConfig(options, userConfig)
	}
	return &Config{options: options}
}

func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		HTTP: HTTPConfig{
			Enabled:         defaultHTTPEnabled,
			Host:            defaultHTTPHost,
			Port:            defaultHTTPPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			CORSEnabled:     defaultCORSEnabled,
			CORSOrigins:     []string{"*"},
			MaxRequestSize:  defaultMaxRequestSize,
		},
	}
}

func applyUserAPIConfig(options *APIOptions, userConfig *types.UserAPIConfig) {
	if userConfig.HTTPEnabled != nil {
		options.HTTP.Enabled = *userConfig.HTTPEnabled
	}
	if userConfig.HTTPHost != nil {
		options.HTTP.Host = *userConfig.HTTPHost
	}
	if userConfig.HTTPPort != nil {
		options.HTTP.Port = *userConfig.HTTPPort
	}
	if userConfig.HTTPCorsEnabled != nil {
		options.HTTP.CORSEnabled = *userConfig.HTTPCorsEnabled
	}
	if len(userConfig.HTTPCorsOrigins) > 0 {
		options.HTTP.CORSOrigins = userConfig.HTTPCorsOrigins
	}
	if userConfig.MaxBodyMB != nil && *userConfig.MaxBodyMB > 0 {
		options.HTTP.MaxRequestSize = int64(*userConfig.MaxBodyMB) << 20
	}
}

// GetOptions 获取API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
