package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes gorm output through zap. Statements carry the
// request_id and trace_id of the context they ran under.
type GormLogger struct {
	base           *zap.Logger
	level          gormlogger.LogLevel
	slowQuery      time.Duration
	ignoreNotFound bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold logs statements at or above d as slow; 0 disables it
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowQuery = d }
}

// WithIgnoreRecordNotFoundError drops gorm.ErrRecordNotFound from the error log
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.ignoreNotFound = ignore }
}

// NewGormLogger creates a GormLogger named "gorm"
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		base:           base.Named("gorm"),
		level:          level,
		slowQuery:      defaultSlowQuery,
		ignoreNotFound: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy at level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *GormLogger) printf(enabledAt gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < enabledAt {
		return
	}
	sugar := l.base.Sugar()
	switch lvl {
	case zapcore.ErrorLevel:
		sugar.Errorf(msg, data...)
	case zapcore.WarnLevel:
		sugar.Warnf(msg, data...)
	default:
		sugar.Infof(msg, data...)
	}
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

// Trace logs one executed statement. Failures log at error, slow statements
// at warn, and everything else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && l.ignoreNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	statement, rows := fc()
	log := l.base.With(statementFields(ctx, statement, rows, elapsed)...)

	switch {
	case err != nil:
		if l.level >= gormlogger.Error {
			log.Error("sql failed", zap.Error(err))
		}
	case l.slowQuery > 0 && elapsed >= l.slowQuery:
		if l.level >= gormlogger.Warn {
			log.Warn("slow sql", zap.Duration("threshold", l.slowQuery))
		}
	case l.level >= gormlogger.Info:
		if rows == 0 && isTaggedWrite(statement) {
			log.Debug("sql matched no row for its tag")
			return
		}
		log.Debug("sql")
	}
}

func statementFields(ctx context.Context, statement string, rows int64, elapsed time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.String("sql", statement),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	return fields
}

// isTaggedWrite reports whether statement is a compare-tag-and-write update
func isTaggedWrite(statement string) bool {
	return strings.HasPrefix(statement, "UPDATE") && strings.Contains(statement, "row_tag")
}

// MapGormLogLevel maps the application log level onto gorm's; unknown values become Warn
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
