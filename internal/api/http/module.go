package http

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/weisyn/splitproof/internal/api/http/handlers"
	"github.com/weisyn/splitproof/internal/core/bounty"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/pkg/interfaces/config"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
)

// ServerParams HTTP服务器依赖
type ServerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Provider
	Logger    log.Logger
	Manager   *splitproof.Manager
	Bounties  *bounty.Registry     `optional:"true"`
	Registry  *prometheus.Registry `optional:"true"`
}

// initializeGinMode gin 的默认输出由访问日志中间件取代
func initializeGinMode() {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard
	gin.DefaultErrorWriter = io.Discard
}

// ProvideServer 创建HTTP服务器并注册生命周期钩子，配置禁用时返回nil
func ProvideServer(p ServerParams) *Server {
	opts := p.Config.GetAPI()
	logger := p.Logger.With("module", "api")
	if !opts.HTTP.Enabled {
		logger.Info("HTTP API在配置中被禁用")
		return nil
	}

	var bounties handlers.BountyService
	if p.Bounties != nil {
		bounties = p.Bounties
	}
	s := NewServer(logger, opts, p.Manager, bounties, p.Registry)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error { return s.Start() },
		OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
	})
	return s
}

// Module 返回HTTP服务模块
func Module() fx.Option {
	return fx.Options(
		fx.Invoke(initializeGinMode),
		fx.Provide(ProvideServer),
	)
}
