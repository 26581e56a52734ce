// Package config 提供应用配置管理功能
package config

import (
	"fmt"

	splitproofconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	"github.com/weisyn/splitproof/pkg/interfaces/config"
	"github.com/weisyn/splitproof/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	// 配置提供者
	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(provider config.Provider) *splitproofconfig.SplitProofOptions {
				return provider.GetSplitProof()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}
	if appConfig != nil {
		if err := splitproofconfig.Validate(appConfig.SplitProof); err != nil {
			return ConfigOutput{}, fmt.Errorf("配置校验失败: %w", err)
		}
	}
	return ConfigOutput{Provider: NewProvider(appConfig)}, nil
}
