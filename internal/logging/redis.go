package logging

import (
	"context"

	"github.com/sirupsen/logrus"
)

// RedisLogger routes go-redis internal messages (reconnects, pool and
// pub/sub errors) into the storefront log instead of stderr, which the
// UI owns.
type RedisLogger struct {
	log logrus.FieldLogger
}

// NewRedisLogger wraps log for redis.SetLogger.
func NewRedisLogger(log logrus.FieldLogger) *RedisLogger {
	return &RedisLogger{log: log.WithField("component", "redis")}
}

// Printf implements the go-redis logging interface.
func (l *RedisLogger) Printf(_ context.Context, format string, v ...interface{}) {
	l.log.Warnf(format, v...)
}
