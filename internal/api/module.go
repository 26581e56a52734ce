package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/splitproof/internal/api/http"
)

// Module 返回API模块
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
		// 确保HTTP服务器被构造，从而注册启动钩子
		fx.Invoke(func(*http.Server) {}),
	)
}
