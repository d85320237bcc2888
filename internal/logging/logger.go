package logging

import (
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logstashFlushInterval = 500 * time.Millisecond

// New builds the service logger. Entries are JSON on stdout and, when
// logstashAddr is set, mirrored to Logstash through a buffered sink. The
// returned func flushes and closes the sinks and reports entries Logstash never
// received. It is safe to call more than once.
func New(level, logstashAddr string) (*zap.Logger, func(), error) {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if strings.TrimSpace(level) != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
			return nil, nil, err
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "@timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	stdoutCore := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl)
	stdout := zap.New(stdoutCore).With(zap.String("service", "foodies-api"))
	cores := []zapcore.Core{stdoutCore}

	var (
		sink     *LogstashSink
		buffered *zapcore.BufferedWriteSyncer
	)
	if addr := strings.TrimSpace(logstashAddr); addr != "" {
		var err error
		sink, err = NewLogstashSink(LogstashConfig{Addr: addr})
		if err != nil {
			return nil, nil, err
		}
		buffered = &zapcore.BufferedWriteSyncer{WS: sink, FlushInterval: logstashFlushInterval}
		cores = append(cores, zapcore.NewCore(encoder, buffered, lvl))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller()).With(zap.String("service", "foodies-api"))
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			_ = logger.Sync()
			if sink == nil {
				return
			}
			_ = buffered.Stop()
			if n := sink.Dropped(); n > 0 {
				stdout.Warn("logstash entries dropped", zap.Uint64("count", n))
			}
			_ = sink.Close()
		})
	}
	return logger, cleanup, nil
}
