package badger

import (
	"path/filepath"

	configtypes "github.com/weisyn/splitproof/pkg/types"
	"github.com/weisyn/splitproof/pkg/utils"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	// === 基础配置 ===
	Path       string `json:"path"`        // 数据库存储路径
	InMemory   bool   `json:"in_memory"`   // 内存模式，不落盘
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入

	// === 基础性能配置 ===
	MemTableSize int64 `json:"mem_table_size"` // 内存表大小

	// === 维护配置 ===
	EnableAutoCompaction bool `json:"enable_auto_compaction"` // 是否启用值日志GC
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置实现
//
// 路径规则：配置了 storage.data_path 时直接使用；否则使用 {data_dir}/badger
func New(userConfig *configtypes.UserStorageConfig, dataDir string) *Config {
	options := createDefaultBadgerOptions(dataDir)
	if userConfig != nil {
		if userConfig.DataPath != nil {
			options.Path = utils.ResolveDataPath(*userConfig.DataPath)
		}
		if userConfig.InMemory != nil {
			options.InMemory = *userConfig.InMemory
		}
		if userConfig.SyncWrites != nil {
			options.SyncWrites = *userConfig.SyncWrites
		}
	}
	return &Config{options: options}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{options: options}
}

// createDefaultBadgerOptions 创建默认BadgerDB配置
func createDefaultBadgerOptions(dataDir string) *BadgerOptions {
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	return &BadgerOptions{
		Path:                 utils.ResolveDataPath(filepath.Join(dataDir, "badger")),
		SyncWrites:           defaultSyncWrites,
		MemTableSize:         defaultMemTableSize,
		EnableAutoCompaction: defaultEnableAutoCompaction,
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// GetPath 获取数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsInMemory 是否为内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// IsSyncWritesEnabled 是否启用同步写入
func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

// GetMemTableSize 获取内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}

// IsAutoCompactionEnabled 是否启用自动压缩
func (c *Config) IsAutoCompactionEnabled() bool {
	return c.options.EnableAutoCompaction
}
