package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const maxSQLLength = 1000

var gormLevels = map[string]gormlogger.LogLevel{
	"silent":  gormlogger.Silent,
	"error":   gormlogger.Error,
	"warn":    gormlogger.Warn,
	"warning": gormlogger.Warn,
	"info":    gormlogger.Info,
	"debug":   gormlogger.Info,
}

// GormLogger sends GORM output through zap. SQL is logged with placeholders only,
// so bind values such as user passwords never reach the log.
type GormLogger struct {
	log           *zap.Logger
	slowThreshold time.Duration
	level         gormlogger.LogLevel
}

var (
	_ gormlogger.Interface = (*GormLogger)(nil)
	_ gorm.ParamsFilter    = (*GormLogger)(nil)
)

// NewGormLogger creates a GORM logger writing through zap.
// slowQuerySeconds of zero disables slow query warnings; unknown levels fall back to warn.
func NewGormLogger(zapLogger *zap.Logger, slowQuerySeconds float64, logLevel string) *GormLogger {
	level, ok := gormLevels[logLevel]
	if !ok {
		level = gormlogger.Warn
	}

	return &GormLogger{
		log:           zapLogger.Named("gorm"),
		slowThreshold: time.Duration(slowQuerySeconds * float64(time.Second)),
		level:         level,
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// ParamsFilter drops bind values before GORM renders the statement for Trace.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	WithContext(ctx, l.log).Log(lvl, fmt.Sprintf(msg, data...))
}

// Trace logs failed statements as errors, slow ones as warnings and the rest at info.
// A missing record is a normal lookup outcome and is not treated as a failure.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	var lvl zapcore.Level
	var msg string
	switch {
	case failed && l.level >= gormlogger.Error:
		lvl, msg = zapcore.ErrorLevel, "gorm query error"
	case slow && l.level >= gormlogger.Warn:
		lvl, msg = zapcore.WarnLevel, "gorm slow query"
	case l.level >= gormlogger.Info:
		lvl, msg = zapcore.DebugLevel, "gorm query"
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if len(sql) > maxSQLLength {
		sql = sql[:maxSQLLength] + "..."
		fields = append(fields, zap.Bool("sql_truncated", true))
	}
	fields = append(fields, zap.String("sql", sql))
	if failed {
		fields = append(fields, zap.Error(err))
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.slowThreshold))
	}

	WithContext(ctx, l.log).Log(lvl, msg, fields...)
}
