package splitproof

import "time"

const (
	defaultScheme = "groth16"

	// 交换使用独热选择，约束数随行数平方增长
	defaultMaxRows = 1024

	defaultMaxConcurrent = 2
	defaultMaxQueueDepth = 16
	defaultProofTimeout  = 10 * time.Minute

	defaultSelfVerify       = true
	defaultPersistArtifacts = true

	defaultArtifactCacheSize = 8
	defaultVerdictTTL        = time.Hour

	defaultJobRetention = 24 * time.Hour
)
