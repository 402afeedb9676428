package internal

import "time"

// Config holds every tunable of the board server. Values come from the
// environment so the same binary runs unchanged in dev and behind a
// process manager.
type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=3000"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	DefaultRoom       string        `env:"DEFAULT_ROOM,default=main"`
	StaticDir         string        `env:"STATIC_DIR,default=public"`
	HistoryCapacity   int           `env:"HISTORY_CAPACITY,default=1000"`
	BufferSize        int           `env:"BUFFER_SIZE,default=256"`
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE,default=64"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=2s"`
	CursorMinInterval time.Duration `env:"CURSOR_MIN_INTERVAL,default=50ms"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,default=30s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}
