package badger

// BadgerDB存储默认配置值
const (
	defaultDataDir = "./data"

	// defaultSyncWrites 默认关闭同步写入，工件可重新生成
	defaultSyncWrites = false

	// defaultMemTableSize 默认内存表大小为64MB
	defaultMemTableSize = 64 << 20

	defaultEnableAutoCompaction = true
)
