// Package runtime 进程运行时调优
package runtime

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
)

// 大于此值视为无限制
const unlimitedThreshold = 1 << 60

// cgroup 内存上限文件（v2 优先）
var cgroupLimitFiles = []string{
	"/sys/fs/cgroup/memory.max",
	"/sys/fs/cgroup/memory/memory.limit_in_bytes",
}

// ApplyCgroupMemoryLimit 按 cgroup 内存上限设置 Go 运行时软上限
//
// 证明过程的约束系统与密钥常驻内存，容器中不设软上限时堆增长会直接触发 OOM kill。
// 用户显式设置 GOMEMLIMIT 时不做处理；reserveRatio 不在 (0,1) 时取 0.8。
func ApplyCgroupMemoryLimit(reserveRatio float64) (applied bool, limitBytes uint64, err error) {
	if os.Getenv("GOMEMLIMIT") != "" {
		return false, 0, nil
	}
	if reserveRatio <= 0 || reserveRatio >= 1 {
		reserveRatio = 0.8
	}

	limit, ok, err := GetCgroupMemoryLimitBytes()
	if err != nil || !ok {
		return false, 0, err
	}
	target := int64(float64(limit) * reserveRatio)
	if target <= 0 {
		return false, limit, nil
	}
	debug.SetMemoryLimit(target)
	return true, limit, nil
}

// GetCgroupMemoryLimitBytes 返回 cgroup 内存上限，ok=false 表示未检测到或无限制
func GetCgroupMemoryLimitBytes() (limit uint64, ok bool, err error) {
	for _, path := range cgroupLimitFiles {
		b, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}
		return parseCgroupLimit(string(b))
	}
	return 0, false, nil
}

func parseCgroupLimit(s string) (uint64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "max" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("解析 cgroup 内存上限失败: %w", err)
	}
	if v > unlimitedThreshold {
		return 0, false, nil
	}
	return v, true, nil
}
