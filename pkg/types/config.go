// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
//
// 🔧 指针字段：nil 表示用户未设置，使用系统默认值；&value 表示用户明确设置（含零值）
type AppConfig struct {
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 持久化存储配置（工件、任务记录、悬赏登记）
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 验证结论缓存配置
	Cache *UserCacheConfig `json:"cache,omitempty"`

	// 事件总线配置
	Event *UserEventConfig `json:"event,omitempty"`

	// 切分证明引擎配置
	SplitProof *UserSplitProofConfig `json:"splitproof,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level      *string `json:"level,omitempty"`       // 日志级别：debug, info, warn, error, fatal
	FilePath   *string `json:"file_path,omitempty"`   // 日志文件路径
	ToConsole  *bool   `json:"to_console,omitempty"`  // 是否同时输出到控制台
	MaxSizeMB  *int    `json:"max_size_mb,omitempty"` // 单个日志文件最大尺寸
	MaxBackups *int    `json:"max_backups,omitempty"` // 保留的旧文件数
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	DataPath   *string `json:"data_path,omitempty"`   // BadgerDB 数据目录
	InMemory   *bool   `json:"in_memory,omitempty"`   // 使用内存模式（测试/临时运行）
	SyncWrites *bool   `json:"sync_writes,omitempty"` // 同步写盘
}

// UserCacheConfig 用户缓存配置
type UserCacheConfig struct {
	Enabled           *bool `json:"enabled,omitempty"`             // 是否启用验证结论缓存
	LifeWindowSeconds *int  `json:"life_window_seconds,omitempty"` // 缓存项存活时间
	MaxSizeMB         *int  `json:"max_size_mb,omitempty"`         // 缓存容量上限
}

// UserEventConfig 用户事件配置
type UserEventConfig struct {
	Enabled *bool `json:"enabled,omitempty"` // 是否启用事件总线
}

// UserSplitProofConfig 用户切分证明配置
type UserSplitProofConfig struct {
	Scheme            *string `json:"scheme,omitempty"`              // groth16 | plonk
	Ratio             *string `json:"ratio,omitempty"`               // 训练/测试比例，如 "80/20"
	MaxRows           *int    `json:"max_rows,omitempty"`            // 单个数据集最大行数
	MaxConcurrent     *int    `json:"max_concurrent,omitempty"`      // 并发证明数
	MaxQueueDepth     *int    `json:"max_queue_depth,omitempty"`     // 等待队列容量
	ProofTimeoutSec   *int    `json:"proof_timeout_sec,omitempty"`   // 单次证明超时
	SelfVerify        *bool   `json:"self_verify,omitempty"`         // 证明后自验证
	PersistArtifacts  *bool   `json:"persist_artifacts,omitempty"`   // 持久化电路工件
	ArtifactCacheSize *int    `json:"artifact_cache_size,omitempty"` // 内存工件缓存容量
	JobRetentionHours *int    `json:"job_retention_hours,omitempty"` // 任务记录保留时间
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	HTTPEnabled     *bool    `json:"http_enabled,omitempty"`      // 是否启用HTTP服务（默认true）
	HTTPHost        *string  `json:"http_host,omitempty"`         // 监听地址
	HTTPPort        *int     `json:"http_port,omitempty"`         // HTTP监听端口
	HTTPCorsEnabled *bool    `json:"http_cors_enabled,omitempty"` // 是否启用CORS
	HTTPCorsOrigins []string `json:"http_cors_origins,omitempty"` // 允许的CORS源
	MaxBodyMB       *int     `json:"max_body_mb,omitempty"`       // 请求体上限
}
