package splitproof

import (
	"io"
	"sync"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// gnark 的 zerolog 日志是进程级全局变量，多个 worker 并发时按引用计数静默与恢复
var gnarkQuiet struct {
	sync.Mutex
	refs     int
	previous zerolog.Logger
}

// silenceGnark 禁用gnark库的日志输出，返回恢复函数
func silenceGnark() func() {
	gnarkQuiet.Lock()
	if gnarkQuiet.refs == 0 {
		gnarkQuiet.previous = gnarklogger.Logger()
		gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
	}
	gnarkQuiet.refs++
	gnarkQuiet.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			gnarkQuiet.Lock()
			defer gnarkQuiet.Unlock()
			gnarkQuiet.refs--
			if gnarkQuiet.refs == 0 {
				gnarklogger.Set(gnarkQuiet.previous)
			}
		})
	}
}
