// Package configs 内置的环境配置
package configs

import (
	_ "embed"
	"fmt"
)

//go:embed development/config.json
var developmentConfig []byte

//go:embed production/config.json
var productionConfig []byte

// GetDevelopmentConfig 获取开发环境配置
func GetDevelopmentConfig() []byte {
	return developmentConfig
}

// GetProductionConfig 获取生产环境配置
func GetProductionConfig() []byte {
	return productionConfig
}

// ForEnv 按环境名获取内置配置：development | production
func ForEnv(env string) ([]byte, error) {
	switch env {
	case "", "development", "dev":
		return developmentConfig, nil
	case "production", "prod":
		return productionConfig, nil
	default:
		return nil, fmt.Errorf("未知环境: %s", env)
	}
}
