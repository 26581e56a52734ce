// Package http 切分证明服务的 HTTP API（gin）
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/splitproof/internal/api/http/handlers"
	"github.com/weisyn/splitproof/internal/api/http/middleware"
	apiconfig "github.com/weisyn/splitproof/internal/config/api"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
)

// Server HTTP服务器
//
// 🎯 **路由**：
//   - /v1/commit, /v1/permutation：无状态计算
//   - /v1/proofs, /v1/verify：证明任务与验证
//   - /v1/bounties：悬赏登记
//   - /healthz, /metrics：运维端点
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    apiconfig.HTTPConfig
	logger     log.Logger

	mu   sync.Mutex
	addr string
}

// NewServer 创建HTTP服务器，registry 为nil时使用独立注册表
func NewServer(
	logger log.Logger,
	options *apiconfig.APIOptions,
	proofs handlers.ProofService,
	bounties handlers.BountyService,
	registry *prometheus.Registry,
) *Server {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.AccessLog(logger),
		middleware.NewMetrics(registry).Middleware(),
	)
	if options.HTTP.CORSEnabled {
		router.Use(middleware.CORS(options.HTTP.CORSOrigins))
	}
	router.Use(
		middleware.BodyLimit(options.HTTP.MaxRequestSize),
		middleware.ErrorHandler(logger),
	)

	s := &Server{
		router:  router,
		options: options.HTTP,
		logger:  logger,
	}
	s.setupRoutes(proofs, bounties, registry)
	return s
}

// setupRoutes 设置HTTP路由
func (s *Server) setupRoutes(proofs handlers.ProofService, bounties handlers.BountyService, registry *prometheus.Registry) {
	s.router.GET("/healthz", handlers.NewHealthHandler(proofs).GetHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/v1")
	handlers.NewCommitmentHandlers(proofs).RegisterRoutes(v1)
	handlers.NewProofHandlers(proofs).RegisterRoutes(v1)
	if bounties != nil {
		handlers.NewBountyHandlers(bounties).RegisterRoutes(v1)
	} else {
		s.logger.Warn("悬赏服务未配置，跳过 /v1/bounties 路由")
	}
	s.logger.Debug("HTTP路由注册完成")
}

// Handler 返回路由处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 监听并在后台提供服务
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.options.Host, s.options.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("HTTP监听失败 %s: %w", addr, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("❌ HTTP服务器运行失败: %v", err)
		}
	}()
	s.logger.Infof("HTTP服务器已启动: %s", s.Addr())
	return nil
}

// Addr 实际监听地址（端口为0时由系统分配）
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}
	s.logger.Info("HTTP服务器已关闭")
	return nil
}
