package event

import configtypes "github.com/weisyn/splitproof/pkg/types"

// EventOptions 事件系统配置选项
type EventOptions struct {
	Enabled    bool `json:"enabled"`     // 是否启用事件系统
	BufferSize int  `json:"buffer_size"` // 异步处理缓冲（指标订阅者使用）
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置实现
func New(userConfig *configtypes.UserEventConfig) *Config {
	options := &EventOptions{
		Enabled:    defaultEnabled,
		BufferSize: defaultBufferSize,
	}
	if userConfig != nil && userConfig.Enabled != nil {
		options.Enabled = *userConfig.Enabled
	}
	return &Config{options: options}
}

// GetOptions 获取事件配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// IsEnabled 是否启用事件系统
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// NewFromOptions 从已解析的选项创建配置实现
func NewFromOptions(options *EventOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}
