package api

import "time"

const (
	defaultHTTPEnabled = true
	defaultHTTPHost    = "0.0.0.0"
	defaultHTTPPort    = 28680

	// 同步证明请求可能持续到证明超时，写超时需留足余量
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 10 * time.Minute
	defaultShutdownTimeout = 15 * time.Second

	defaultCORSEnabled = true

	defaultMaxRequestSize = 64 << 20 // 64MB
)
