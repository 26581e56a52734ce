package memory

import "time"

const (
	defaultEnabled = true

	defaultMaxMemory = 64 << 20 // 64MB

	// 验证结论条目很小，窗口内条目数只影响预分配
	defaultMaxEntries = 10000

	defaultDefaultTTL = time.Hour

	defaultCleanupInterval = 10 * time.Minute
)
