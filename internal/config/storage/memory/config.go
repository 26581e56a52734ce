package memory

import (
	"time"

	configtypes "github.com/weisyn/splitproof/pkg/types"
)

// MemoryOptions 内存缓存配置选项（验证结论缓存）
type MemoryOptions struct {
	Enabled    bool          `json:"enabled"`     // 是否启用
	MaxMemory  int64         `json:"max_memory"`  // 最大内存使用量（字节）
	MaxEntries int           `json:"max_entries"` // 窗口内最大条目数（用于预分配）
	DefaultTTL time.Duration `json:"default_ttl"` // 条目生命周期窗口

	CleanupInterval time.Duration `json:"cleanup_interval"` // 清理间隔
}

// Config 内存存储配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建内存存储配置实现
func New(userConfig *configtypes.UserCacheConfig) *Config {
	options := createDefaultMemoryOptions()
	if userConfig != nil {
		if userConfig.Enabled != nil {
			options.Enabled = *userConfig.Enabled
		}
		if userConfig.LifeWindowSeconds != nil && *userConfig.LifeWindowSeconds > 0 {
			options.DefaultTTL = time.Duration(*userConfig.LifeWindowSeconds) * time.Second
		}
		if userConfig.MaxSizeMB != nil && *userConfig.MaxSizeMB > 0 {
			options.MaxMemory = int64(*userConfig.MaxSizeMB) << 20
		}
	}
	return &Config{options: options}
}

// createDefaultMemoryOptions 创建默认内存存储配置
func createDefaultMemoryOptions() *MemoryOptions {
	return &MemoryOptions{
		Enabled:         defaultEnabled,
		MaxMemory:       defaultMaxMemory,
		MaxEntries:      defaultMaxEntries,
		DefaultTTL:      defaultDefaultTTL,
		CleanupInterval: defaultCleanupInterval,
	}
}

// GetOptions 获取完整的内存存储配置选项
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}

// GetMaxMemoryMB 获取以MB计的容量上限（bigcache HardMaxCacheSize）
func (c *Config) GetMaxMemoryMB() int {
	return int(c.options.MaxMemory >> 20)
}

// NewFromOptions 从已解析的选项创建配置实现
func NewFromOptions(options *MemoryOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}
