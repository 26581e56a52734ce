package cli

import (
	"github.com/spf13/cobra"

	"github.com/weisyn/splitproof/configs"
	"github.com/weisyn/splitproof/internal/app"
	"github.com/weisyn/splitproof/internal/app/version"
	runtimeutil "github.com/weisyn/splitproof/pkg/utils/runtime"
)

func (c *CLI) newServeCommand() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动证明服务（HTTP API）",
		Long:  "serve 启动完整应用：证明引擎、悬赏登记与 HTTP API。\n未指定 --config 时使用内置环境配置（--env，默认随构建环境）。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []app.Option{app.WithAPI()}
			if c.flags.ConfigPath == "" {
				if env == "" {
					env = version.BuildEnv
				}
				embedded, err := configs.ForEnv(env)
				if err != nil {
					return err
				}
				opts = append(opts, app.WithEmbeddedConfig(embedded))
			}
			opts = append(opts, c.appOptions()...)
			if cmd.Flags().Changed("log-level") {
				opts = append(opts, app.WithLogLevel(c.flags.LogLevel))
			}

			if applied, limit, err := runtimeutil.ApplyCgroupMemoryLimit(0.8); err != nil {
				c.printer.Warning("读取 cgroup 内存上限失败: %v", err)
			} else if applied {
				c.printer.Info("已按 cgroup 上限 %d MiB 设置 GOMEMLIMIT", limit>>20)
			}

			a, err := c.startEngine(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			c.printer.Success("splitproof %s 已启动（环境: %s），Ctrl+C 退出", version.GetVersion(), envLabel(env))
			a.Wait()
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "内置配置环境 development|production")
	return cmd
}

func envLabel(env string) string {
	if env == "" {
		return "config"
	}
	return env
}
