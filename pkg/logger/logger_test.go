package logger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseLevel("bogus")
	assert.Error(t, err)
}

func TestNewWithConfig_InvalidLevel(t *testing.T) {
	_, err := NewWithConfig(Config{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNewWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	l, err := NewWithConfig(Config{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		ServiceName:    "user-rest-service",
		ServiceVersion: "test",
		Environment:    "test",
	})
	require.NoError(t, err)
	l.Info("hello")
	assert.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestWithContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithContext(context.Background(), base).Info("no id")
	WithContext(ContextWithRequestID(context.Background(), "req-1"), base).Info("with id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
}

func TestNewRequestID(t *testing.T) {
	assert.Equal(t, "abc", NewRequestID("abc"))
	assert.Len(t, NewRequestID(""), 36)
	assert.NotEqual(t, NewRequestID(""), NewRequestID(""))
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "from-client"))
	_, err := interceptor(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "from-client", seen)

	_, err = interceptor(context.Background(), nil, info, handler)
	require.NoError(t, err)
	assert.Len(t, seen, 36)
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), 0.1, "warn")

	fc := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), fc, nil)
	assert.Equal(t, 0, logs.Len())

	gl.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm slow query", logs.All()[0].Message)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	assert.Equal(t, 1, logs.Len())
}

func TestGormLogger_HidesBindValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: NewGormLogger(zap.New(core), 0, "info")})
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE TABLE secrets (value TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO secrets (value) VALUES (?)", "s3cret").Error)

	require.NotZero(t, logs.Len())
	for _, e := range logs.All() {
		sql, _ := e.ContextMap()["sql"].(string)
		assert.NotContains(t, sql, "s3cret")
	}
	assert.NotZero(t, logs.FilterMessage("gorm query").FilterFieldKey("sql").Len())
}

func TestGormLogger_ErrorAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), 0, "error")
	fc := func() (string, int64) { return "SELECT 1", 0 }

	gl.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	gl.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm query error", logs.All()[0].Message)

	gl.Warn(context.Background(), "ignored %d", 1)
	gl.Error(context.Background(), "kept %d", 2)
	assert.Equal(t, 1, logs.FilterMessage("kept 2").Len())
	assert.Equal(t, 0, logs.FilterMessage("ignored 1").Len())
}
