// Package app 应用装配：加载配置并以 fx 组装各层模块
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/weisyn/splitproof/internal/core/bounty"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/pkg/types"
)

// 配置文件路径环境变量
const configPathEnv = "SPLITPROOF_CONFIG"

// App 运行中的应用
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 阻塞直到收到 SIGINT/SIGTERM，然后停止应用
	Wait()

	// Manager 证明引擎
	Manager() *splitproof.Manager

	// Bounties 悬赏登记表
	Bounties() *bounty.Registry
}

type internalApp struct {
	bootstrap *Bootstrap
}

func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

func (a *internalApp) Wait() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	sig := <-signals
	fmt.Fprintf(os.Stderr, "\n🛑 收到信号 %v，正在优雅退出...\n", sig)
	if err := a.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ 停止应用时出错: %v\n", err)
	}
}

func (a *internalApp) Manager() *splitproof.Manager { return a.bootstrap.manager }

func (a *internalApp) Bounties() *bounty.Registry { return a.bootstrap.bounties }

// Start 加载配置、装配并启动应用
func Start(ctx context.Context, appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)
	if err := loadConfig(opts); err != nil {
		return nil, err
	}
	if err := createDataDirectories(opts.appConfig); err != nil {
		return nil, err
	}

	b := NewBootstrap(opts)
	if err := b.CreateFxApp(); err != nil {
		return nil, err
	}
	if err := b.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: b}, nil
}

// loadConfig 解析配置：嵌入内容 > 指定文件 > 环境变量指定文件 > 默认值
func loadConfig(opts *options) error {
	data := opts.embeddedConfig
	if data == nil {
		path := opts.configFilePath
		if path == "" {
			path = os.Getenv(configPathEnv)
		}
		if path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("读取配置文件失败: %w", err)
			}
			data = raw
		}
	}

	cfg := &types.AppConfig{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("解析配置文件失败: %w", err)
		}
	}
	for _, fn := range opts.overrides {
		fn(cfg)
	}
	opts.appConfig = cfg
	return nil
}

// createDataDirectories 创建数据目录与日志目录
func createDataDirectories(cfg *types.AppConfig) error {
	var directories []string
	if cfg.DataDir != nil {
		directories = append(directories, *cfg.DataDir)
	}
	if cfg.Storage != nil && cfg.Storage.DataPath != nil {
		directories = append(directories, *cfg.Storage.DataPath)
	}
	if cfg.Log != nil && cfg.Log.FilePath != nil {
		directories = append(directories, filepath.Dir(*cfg.Log.FilePath))
	}

	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	return nil
}
