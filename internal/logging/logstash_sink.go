package logging

import (
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap/zapcore"
)

var ErrSinkClosed = errors.New("logstash: sink closed")

type LogstashConfig struct {
	Addr         string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	// MinBackoff is the pause after the first failed dial; it doubles on each
	// further failure up to MaxBackoff.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func (c LogstashConfig) withDefaults() LogstashConfig {
	if c.DialTimeout <= 0 {
		c.DialTimeout = 2 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = time.Second
	}
	if c.MinBackoff <= 0 {
		c.MinBackoff = time.Second
	}
	if c.MaxBackoff < c.MinBackoff {
		c.MaxBackoff = 30 * time.Second
		if c.MaxBackoff < c.MinBackoff {
			c.MaxBackoff = c.MinBackoff
		}
	}
	return c
}

// LogstashSink ships newline-delimited JSON entries to a Logstash tcp input.
// Entries written while the input is unreachable are counted and discarded so
// a Logstash outage never blocks a request.
type LogstashSink struct {
	cfg LogstashConfig

	mu      sync.Mutex
	conn    net.Conn
	backoff time.Duration
	retryAt time.Time
	closed  bool

	dropped atomic.Uint64
}

var _ zapcore.WriteSyncer = (*LogstashSink)(nil)

func NewLogstashSink(cfg LogstashConfig) (*LogstashSink, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	return &LogstashSink{cfg: cfg.withDefaults()}, nil
}

// Write sends p, which may hold several entries when the sink sits behind a
// zapcore.BufferedWriteSyncer.
func (s *LogstashSink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSinkClosed
	}
	if !s.connectLocked(time.Now()) {
		s.drop(p)
		return len(p), nil
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if _, err := s.conn.Write(p); err != nil {
		_ = s.conn.Close()
		s.conn = nil
		s.failLocked(time.Now())
		s.drop(p)
	}
	return len(p), nil
}

// Sync is a no-op: Write does not buffer.
func (s *LogstashSink) Sync() error {
	return nil
}

// Dropped reports how many entries were discarded so far.
func (s *LogstashSink) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *LogstashSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *LogstashSink) connectLocked(now time.Time) bool {
	if s.conn != nil {
		return true
	}
	if now.Before(s.retryAt) {
		return false
	}
	conn, err := net.DialTimeout("tcp", s.cfg.Addr, s.cfg.DialTimeout)
	if err != nil {
		s.failLocked(now)
		return false
	}
	s.conn = conn
	s.backoff = 0
	s.retryAt = time.Time{}
	return true
}

func (s *LogstashSink) failLocked(now time.Time) {
	switch {
	case s.backoff == 0:
		s.backoff = s.cfg.MinBackoff
	case s.backoff*2 > s.cfg.MaxBackoff:
		s.backoff = s.cfg.MaxBackoff
	default:
		s.backoff *= 2
	}
	s.retryAt = now.Add(s.backoff)
}

func (s *LogstashSink) drop(p []byte) {
	entries := uint64(0)
	for _, b := range p {
		if b == '\n' {
			entries++
		}
	}
	if entries == 0 {
		entries = 1
	}
	s.dropped.Add(entries)
}
