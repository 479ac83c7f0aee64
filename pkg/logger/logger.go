package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

// Logger wraps slog.Logger with config-generation helpers while staying thin
type Logger struct {
	*slog.Logger
	config LoggerConfig
}

// LogLevel represents the logging level
type LogLevel string

const (
	LevelTrace LogLevel = "trace"
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// OutputFormat represents the log output format
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level      LogLevel     `mapstructure:"level" yaml:"level" json:"level"`
	Format     OutputFormat `mapstructure:"format" yaml:"format" json:"format"`
	AddSource  bool         `mapstructure:"add_source" yaml:"add_source" json:"add_source"`
	Component  string       `mapstructure:"component" yaml:"component" json:"component"`
	Version    string       `mapstructure:"version" yaml:"version" json:"version"`
	TimeFormat string       `mapstructure:"time_format" yaml:"time_format" json:"time_format"`

	// Output defaults to stderr so that stdout stays free for keys and configs.
	Output io.Writer `mapstructure:"-" yaml:"-" json:"-"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		Level:      LevelInfo,
		Format:     FormatText,
		AddSource:  false,
		Component:  "wgconf",
		Version:    "unknown",
		TimeFormat: time.RFC3339,
	}
}

// New creates a new logger with the provided configuration
func New(config LoggerConfig) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	level := parseLogLevel(config.Level)
	handler := createHandler(config, level)

	return &Logger{
		Logger: slog.New(handler),
		config: config,
	}
}

// NewDevelopment creates a logger optimized for development
func NewDevelopment(component string) *Logger {
	return New(LoggerConfig{
		Level:      LevelDebug,
		Format:     FormatText,
		AddSource:  true,
		Component:  component,
		Version:    "dev",
		TimeFormat: time.Kitchen,
	})
}

// NewProduction creates a logger optimized for production
func NewProduction(component, version string) *Logger {
	return New(LoggerConfig{
		Level:      LevelInfo,
		Format:     FormatJSON,
		AddSource:  false,
		Component:  component,
		Version:    version,
		TimeFormat: time.RFC3339,
	})
}

// Nop returns a logger that discards everything. Handy for tests and library callers.
func Nop() *Logger {
	cfg := DefaultConfig()
	cfg.Format = FormatJSON
	cfg.Output = io.Discard
	return New(cfg)
}

// Context keys for structured logging
type contextKey string

const (
	CorrelationKey contextKey = "correlation_id"
	InterfaceKey   contextKey = "interface"
	PeerKey        contextKey = "peer"
	OperationKey   contextKey = "operation"
	ConfigPathKey  contextKey = "config_path"
)

var contextKeys = []contextKey{CorrelationKey, InterfaceKey, PeerKey, OperationKey, ConfigPathKey}

// With returns a new logger with additional attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		config: l.config,
	}
}

// WithComponent returns a logger scoped to a sub-component
func (l *Logger) WithComponent(name string) *Logger {
	cfg := l.config
	cfg.Component = name
	return &Logger{
		Logger: l.Logger,
		config: cfg,
	}
}

// Component returns the component name attached by WithContext.
func (l *Logger) Component() string {
	return l.config.Component
}

// WithContext extracts logging context and returns a scoped logger
func (l *Logger) WithContext(ctx context.Context) *Logger {
	attrs := extractContextAttrs(ctx)
	attrs = append(attrs,
		slog.String("component", l.config.Component),
		slog.String("version", l.config.Version),
	)

	return &Logger{
		Logger: l.Logger.With(attrsToAny(attrs)...),
		config: l.config,
	}
}

// Unwrap returns the underlying slog.Logger for direct access
func (l *Logger) Unwrap() *slog.Logger {
	return l.Logger
}

// ErrorCtx logs an error with automatic context enrichment. Domain errors
// anywhere in the chain contribute their domain, code and metadata.
func (l *Logger) ErrorCtx(ctx context.Context, msg string, err error, args ...any) {
	attrs := []any{slog.String("error", err.Error())}

	var domainErr errors.DomainError
	if errors.As(err, &domainErr) {
		attrs = append(attrs,
			slog.String("error_domain", domainErr.Domain()),
			slog.String("error_code", domainErr.Code()),
			slog.Bool("retryable", domainErr.Retryable()),
		)

		for k, v := range domainErr.Metadata() {
			attrs = append(attrs, slog.Any(k, v))
		}
	}

	attrs = append(attrs, args...)
	l.WithContext(ctx).Error(msg, attrs...)
}

// Trace logs at trace level (maps to Debug)
func (l *Logger) Trace(msg string, args ...any) {
	if l.config.Level == LevelTrace {
		l.Debug(msg, args...)
	}
}

// TraceCtx logs at trace level with context
func (l *Logger) TraceCtx(ctx context.Context, msg string, args ...any) {
	if l.config.Level == LevelTrace {
		l.WithContext(ctx).Debug(msg, args...)
	}
}

// ConfigWritten logs a rendered config landing on disk. Slow writes are
// raised to warn, since they usually mean a network filesystem.
func (l *Logger) ConfigWritten(ctx context.Context, name, path string, peers int, duration time.Duration, args ...any) {
	attrs := []any{
		slog.String("name", name),
		slog.String("path", path),
		slog.Int("peers", peers),
		slog.Duration("duration", duration),
	}
	attrs = append(attrs, args...)

	if duration > time.Second {
		l.WithContext(ctx).Warn("config written (slow)", attrs...)
		return
	}
	l.WithContext(ctx).Info("config written", attrs...)
}

// KeyOperation logs a key file being created, loaded or removed. Only the
// public half is ever passed in.
func (l *Logger) KeyOperation(ctx context.Context, action, path, publicKey string) {
	l.WithContext(ctx).Debug("key "+action,
		slog.String("key_action", action),
		slog.String("path", path),
		slog.String("public_key", publicKey),
	)
}

// StackTrace logs a stack trace for debugging (debug level only)
func (l *Logger) StackTrace(ctx context.Context, msg string) {
	if l.config.Level != LevelDebug && l.config.Level != LevelTrace {
		return
	}

	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)

	l.WithContext(ctx).Debug(msg, slog.String("stack", string(buf[:n])))
}

func parseLogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelTrace, LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel reports whether s names a known level.
func ParseLevel(s string) (LogLevel, bool) {
	switch l := LogLevel(s); l {
	case LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l, true
	}
	return "", false
}

func createHandler(config LoggerConfig, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
	}

	switch config.Format {
	case FormatText:
		return tint.NewHandler(config.Output, &tint.Options{
			Level:      level,
			TimeFormat: config.TimeFormat,
			AddSource:  config.AddSource,
			NoColor:    !isTerminal(config.Output),
		})
	default:
		return slog.NewJSONHandler(config.Output, opts)
	}
}

// isTerminal reports whether w is an interactive terminal; anything else
// gets plain text.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func extractContextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if val := getFromContext[string](ctx, key); val != "" {
			attrs = append(attrs, slog.String(string(key), val))
		}
	}
	return attrs
}

func getFromContext[T any](ctx context.Context, key contextKey) T {
	if val, ok := ctx.Value(key).(T); ok {
		return val
	}
	var zero T
	return zero
}

func attrsToAny(attrs []slog.Attr) []any {
	result := make([]any, len(attrs))
	for i, attr := range attrs {
		result[i] = attr
	}
	return result
}

// Context helper functions

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationKey, id)
}

func WithInterface(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, InterfaceKey, name)
}

func WithPeer(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, PeerKey, name)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

func WithConfigPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ConfigPathKey, path)
}

func GetCorrelationID(ctx context.Context) string {
	return getFromContext[string](ctx, CorrelationKey)
}

func GetInterface(ctx context.Context) string {
	return getFromContext[string](ctx, InterfaceKey)
}

func GetPeer(ctx context.Context) string {
	return getFromContext[string](ctx, PeerKey)
}

func GetOperation(ctx context.Context) string {
	return getFromContext[string](ctx, OperationKey)
}

func GetConfigPath(ctx context.Context) string {
	return getFromContext[string](ctx, ConfigPathKey)
}
