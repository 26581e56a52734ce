package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logconfig "github.com/weisyn/splitproof/internal/config/log"
)

// TestFileOutput 文件输出为JSON且包含结构化字段
func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "splitproof.log")
	logger, err := New(logconfig.NewFromOptions(&logconfig.LogOptions{
		Level:      "debug",
		FilePath:   path,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	}))
	require.NoError(t, err)

	logger.With("job_id", "j-1", "n", 8).Info("证明完成")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	require.Equal(t, "证明完成", entry["message"])
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "j-1", entry["job_id"])
	require.EqualValues(t, 8, entry["n"])
}

// TestLevelFilter 低于配置级别的日志被丢弃
func TestLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	logger, err := New(logconfig.NewFromOptions(&logconfig.LogOptions{Level: "warn", FilePath: path, MaxSize: 1}))
	require.NoError(t, err)

	logger.Info("不应出现")
	logger.Warnf("队列已满: depth=%d", 3)
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "不应出现")
	require.Contains(t, string(data), "depth=3")
}

// TestWithOddArgs 奇数个参数时丢弃末尾键
func TestWithOddArgs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewFromZap(zap.New(core))

	logger.With("module", "splitproof", "dangling").Debug("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	require.Equal(t, "splitproof", ctx["module"])
	require.Len(t, ctx, 1)
}

// TestGlobalLogger 全局日志器可替换
func TestGlobalLogger(t *testing.T) {
	old := GetLogger()
	defer SetLogger(old)

	core, logs := observer.New(zap.InfoLevel)
	SetLogger(NewFromZap(zap.New(core)))

	Info("global")
	With("k", "v").Info("child")
	SetLogger(nil) // 忽略 nil

	require.Equal(t, 2, logs.Len())
	require.NotNil(t, GetLogger())
}
