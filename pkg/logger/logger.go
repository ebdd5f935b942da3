// Package logger provides the structured logger shared by the platform.
package logger

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	Name   string
	Level  string
	Output io.Writer
}

// Logger wraps a logrus logger bound to a component name.
type Logger struct {
	*logrus.Logger
	name string
}

const (
	timeKey      = "asctime"
	levelNameKey = "levelname"
)

// New builds a JSON logger writing one object per line.
func New(cfg LoggingConfig) *Logger {
	base := logrus.New()
	base.SetFormatter(levelNameFormatter{&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  timeKey,
			logrus.FieldKeyLevel: levelNameKey,
			logrus.FieldKeyMsg:   "message",
		},
	}})

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	base.SetOutput(out)

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	name := cfg.Name
	if name == "" {
		name = "aiza"
	}
	return &Logger{Logger: base, name: name}
}

// levelNameFormatter prints levels in upper case (INFO, WARNING, ERROR).
type levelNameFormatter struct {
	logrus.Formatter
}

func (f levelNameFormatter) Format(e *logrus.Entry) ([]byte, error) {
	b, err := f.Formatter.Format(e)
	if err != nil {
		return nil, err
	}
	lvl := e.Level.String()
	return bytes.Replace(b,
		[]byte(`"`+levelNameKey+`":"`+lvl+`"`),
		[]byte(`"`+levelNameKey+`":"`+strings.ToUpper(lvl)+`"`),
		1), nil
}

// NewDefault returns an INFO logger on stdout.
func NewDefault(name string) *Logger {
	return New(LoggingConfig{Name: name, Level: "info"})
}

// Name returns the component name stamped on every entry.
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) entry() *logrus.Entry {
	return l.Logger.WithField("name", l.name)
}

// WithField shadows logrus so the logger name is always present.
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.entry().WithField(key, value)
}

// WithFields shadows logrus so the logger name is always present.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.entry().WithFields(fields)
}

// WithError shadows logrus so the logger name is always present.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.entry().WithError(err)
}

func (l *Logger) Info(args ...interface{})                 { l.entry().Info(args...) }
func (l *Logger) Infof(format string, args ...interface{}) { l.entry().Infof(format, args...) }
func (l *Logger) Warn(args ...interface{})                 { l.entry().Warn(args...) }
func (l *Logger) Warnf(format string, args ...interface{}) { l.entry().Warnf(format, args...) }
func (l *Logger) Error(args ...interface{})                { l.entry().Error(args...) }
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry().Errorf(format, args...)
}
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.entry().Fatalf(format, args...)
}

// WithTraceID stores a trace ID on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// TraceID returns the trace ID stored on the context, if any.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithContext returns an entry carrying the request trace ID.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	e := l.entry()
	if id := TraceID(ctx); id != "" {
		e = e.WithField("trace_id", id)
	}
	return e
}

// LogRequest writes one access-log line.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	e := l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	})
	switch {
	case status >= 500:
		e.Error("request completed")
	case status >= 400:
		e.Warn("request completed")
	default:
		e.Info("request completed")
	}
}

// LogSecurityEvent records an event such as a rejected request.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, details map[string]interface{}) {
	l.WithContext(ctx).WithFields(logrus.Fields(details)).WithField("event", event).Warn("security event")
}
