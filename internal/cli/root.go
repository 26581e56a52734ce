// Package cli splitproof 命令行：数据集承诺、洗牌划分、进程内证明/验证与服务启动
//
// 📋 **命令**：
//   - commit / shuffle / example-rows：纯计算，不启动引擎
//   - prove / verify / payload / export-verifier：进程内启动引擎（不含HTTP）
//   - serve：启动完整应用（含HTTP API）
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/splitproof/internal/app"
	"github.com/weisyn/splitproof/internal/app/version"
	"github.com/weisyn/splitproof/internal/cli/ui"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath   string // 配置文件
	DataDir      string // 数据目录
	OutputFormat string // 输出格式
	LogLevel     string // 引擎日志级别
}

// CLI 命令行上下文
type CLI struct {
	flags   GlobalFlags
	printer *ui.Printer
	out     io.Writer
	errOut  io.Writer

	// startEngine 启动进程内引擎，测试可替换
	startEngine func(ctx context.Context, opts ...app.Option) (app.App, error)
}

// NewRootCommand 创建根命令
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	c := &CLI{out: out, errOut: errOut, startEngine: app.Start}

	root := &cobra.Command{
		Use:           "splitproof",
		Short:         "可验证的数据集洗牌划分证明",
		Long:          "splitproof 对数据集行哈希做承诺，按种子确定性洗牌并划分训练/测试集，\n生成零知识证明供任何人验证划分确实按承诺与种子进行。",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, err := ui.ParseFormat(c.flags.OutputFormat)
			if err != nil {
				return err
			}
			c.printer = ui.NewPrinter(out, errOut, format)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.ConfigPath, "config", "", "配置文件路径（JSON）")
	pf.StringVar(&c.flags.DataDir, "data-dir", "", "数据目录（覆盖配置文件）")
	pf.StringVarP(&c.flags.OutputFormat, "output", "o", "table", "输出格式: table|json")
	pf.StringVar(&c.flags.LogLevel, "log-level", "warn", "进程内引擎日志级别")

	root.AddCommand(
		c.newCommitCommand(),
		c.newShuffleCommand(),
		c.newExampleRowsCommand(),
		c.newProveCommand(),
		c.newVerifyCommand(),
		c.newPayloadCommand(),
		c.newExportVerifierCommand(),
		c.newServeCommand(),
		c.newVersionCommand(),
	)
	return root
}

// Execute 执行根命令
func Execute() {
	root := NewRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// engine 启动不含HTTP的进程内应用，调用方负责 Stop
func (c *CLI) engine(ctx context.Context, extra ...app.Option) (app.App, error) {
	opts := []app.Option{app.WithoutAPI(), app.WithLogLevel(c.flags.LogLevel)}
	opts = append(opts, c.appOptions()...)
	opts = append(opts, extra...)
	return c.startEngine(ctx, opts...)
}

func (c *CLI) appOptions() []app.Option {
	var opts []app.Option
	if c.flags.ConfigPath != "" {
		opts = append(opts, app.WithConfigFile(c.flags.ConfigPath))
	}
	if c.flags.DataDir != "" {
		opts = append(opts, app.WithDataDir(c.flags.DataDir))
	}
	return opts
}

func (c *CLI) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.printer.Format() == ui.FormatJSON {
				return c.printer.JSON(version.GetBuildInfo())
			}
			_, err := fmt.Fprintln(c.out, version.GetFullVersion())
			return err
		},
	}
}
