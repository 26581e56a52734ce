// Package utils provides path manipulation utility functions.
package utils

import (
	"os"
	"path/filepath"
)

// GetHomeDir 获取相对数据路径的解析基准目录
//
// 优先使用环境变量 SPLITPROOF_HOME，否则为当前工作目录
func GetHomeDir() string {
	if home := os.Getenv("SPLITPROOF_HOME"); home != "" {
		return home
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ResolveDataPath 解析数据目录路径为绝对路径
// 如果path已经是绝对路径，直接返回
func ResolveDataPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetHomeDir(), path)
}
