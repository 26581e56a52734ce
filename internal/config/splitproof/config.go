// Package splitproof 切分证明引擎配置
package splitproof

import (
	"fmt"
	"time"

	configtypes "github.com/weisyn/splitproof/pkg/types"
)

// SplitProofOptions 切分证明引擎配置选项
type SplitProofOptions struct {
	// === 证明系统 ===
	Scheme string            `json:"scheme"` // groth16 | plonk
	Ratio  configtypes.Ratio `json:"ratio"`  // 训练/总量比例

	// === 资源边界 ===
	MaxRows       int           `json:"max_rows"`        // 单个数据集最大行数
	MaxConcurrent int           `json:"max_concurrent"`  // 同时进行的证明数
	MaxQueueDepth int           `json:"max_queue_depth"` // 等待中的证明请求上限
	ProofTimeout  time.Duration `json:"proof_timeout"`   // 单次证明的墙钟上限

	// === 行为开关 ===
	SelfVerify       bool `json:"self_verify"`       // 证明后立即自验证
	PersistArtifacts bool `json:"persist_artifacts"` // 电路工件写入持久化存储

	// === 缓存 ===
	ArtifactCacheSize int           `json:"artifact_cache_size"` // 内存中保留的电路工件数
	VerdictTTL        time.Duration `json:"verdict_ttl"`         // 验证结论缓存时间

	// === 任务记录 ===
	JobRetention time.Duration `json:"job_retention"`
}

// Config 切分证明配置实现
type Config struct {
	options *SplitProofOptions
}

// New 创建切分证明配置实现
//
// 非法的 ratio 字符串在这里保留默认值；应用启动时由 Validate 拒绝
func New(userConfig *configtypes.UserSplitProofConfig) *Config {
	options := DefaultOptions()
	if userConfig != nil {
		applyUserSplitProofConfig(options, userConfig)
	}
	return &Config{options: options}
}

// Validate 校验无法回退到默认值的用户配置项
func Validate(userConfig *configtypes.UserSplitProofConfig) error {
	if userConfig == nil || userConfig.Ratio == nil {
		return nil
	}
	if _, err := configtypes.ParseRatio(*userConfig.Ratio); err != nil {
		return fmt.Errorf("splitproof.ratio %q 非法: %w", *userConfig.Ratio, err)
	}
	return nil
}

// DefaultOptions 返回默认配置（测试与命令行一次性运行共用）
func DefaultOptions() *SplitProofOptions {
	return &SplitProofOptions{
		Scheme:            defaultScheme,
		Ratio:             configtypes.DefaultRatio,
		MaxRows:           defaultMaxRows,
		MaxConcurrent:     defaultMaxConcurrent,
		MaxQueueDepth:     defaultMaxQueueDepth,
		ProofTimeout:      defaultProofTimeout,
		SelfVerify:        defaultSelfVerify,
		PersistArtifacts:  defaultPersistArtifacts,
		ArtifactCacheSize: defaultArtifactCacheSize,
		VerdictTTL:        defaultVerdictTTL,
		JobRetention:      defaultJobRetention,
	}
}

func applyUserSplitProofConfig(options *SplitProofOptions, c *configtypes.UserSplitProofConfig) {
	if c.Scheme != nil {
		options.Scheme = *c.Scheme
	}
	if c.Ratio != nil {
		if r, err := configtypes.ParseRatio(*c.Ratio); err == nil {
			options.Ratio = r
		}
	}
	if c.MaxRows != nil && *c.MaxRows > 1 {
		options.MaxRows = *c.MaxRows
	}
	if c.MaxConcurrent != nil && *c.MaxConcurrent > 0 {
		options.MaxConcurrent = *c.MaxConcurrent
	}
	if c.MaxQueueDepth != nil && *c.MaxQueueDepth >= 0 {
		options.MaxQueueDepth = *c.MaxQueueDepth
	}
	if c.ProofTimeoutSec != nil && *c.ProofTimeoutSec > 0 {
		options.ProofTimeout = time.Duration(*c.ProofTimeoutSec) * time.Second
	}
	if c.SelfVerify != nil {
		options.SelfVerify = *c.SelfVerify
	}
	if c.PersistArtifacts != nil {
		options.PersistArtifacts = *c.PersistArtifacts
	}
	if c.ArtifactCacheSize != nil && *c.ArtifactCacheSize > 0 {
		options.ArtifactCacheSize = *c.ArtifactCacheSize
	}
	if c.JobRetentionHours != nil && *c.JobRetentionHours > 0 {
		options.JobRetention = time.Duration(*c.JobRetentionHours) * time.Hour
	}
}

// GetOptions 获取切分证明配置选项
func (c *Config) GetOptions() *SplitProofOptions {
	return c.options
}
