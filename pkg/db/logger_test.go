package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventreward/pkg/middleware"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newObserved(level logger.LogLevel, showSQL bool) (*ZapGormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapGormLogger(zap.New(core), level, showSQL), logs
}

func stmt(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestZapGormLogger_Trace(t *testing.T) {
	ctx := middleware.WithRequestID(context.Background(), "req-7")

	tests := []struct {
		name    string
		level   logger.LogLevel
		err     error
		elapsed time.Duration
		msg     string
		lvl     zapcore.Level
	}{
		{name: "failure", level: logger.Warn, err: errors.New("deadlock"), msg: "gorm.query", lvl: zapcore.ErrorLevel},
		{name: "conflict", level: logger.Warn, err: gorm.ErrDuplicatedKey, msg: "gorm.conflict", lvl: zapcore.WarnLevel},
		{name: "slow", level: logger.Warn, elapsed: time.Second, msg: "gorm.slow_query", lvl: zapcore.WarnLevel},
		{name: "sql shown", level: logger.Info, msg: "gorm.query", lvl: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, logs := newObserved(tt.level, true)
			l.Trace(ctx, time.Now().Add(-tt.elapsed), stmt("SELECT 1"), tt.err)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			require.Equal(t, tt.msg, entry.Message)
			require.Equal(t, tt.lvl, entry.Level)
			require.Equal(t, "req-7", entry.ContextMap()["request_id"])
		})
	}
}

func TestZapGormLogger_Quiet(t *testing.T) {
	l, logs := newObserved(logger.Warn, false)
	l.Trace(context.Background(), time.Now(), stmt("SELECT 1"), logger.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), stmt("SELECT 1"), nil)
	require.Zero(t, logs.Len())

	silent := l.LogMode(logger.Silent)
	silent.Trace(context.Background(), time.Now(), stmt("SELECT 1"), errors.New("boom"))
	require.Zero(t, logs.Len())
}
