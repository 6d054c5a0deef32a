package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

type ctxKey struct{}

// New creates a new logger instance
func New() *Logger {
	return NewWithLevel(os.Getenv("LOG_LEVEL"))
}

// NewWithLevel creates a logger for an explicit level string
func NewWithLevel(levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON otherwise
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// IntoContext stores l on ctx so downstream code logs with the same fields
func IntoContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored on ctx, or the default logger
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
			return l
		}
	}
	return GetDefault()
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Parking lifecycle logging methods

// LogSessionOpened logs a vehicle entering a sector
func (l *Logger) LogSessionOpened(ctx context.Context, sessionID, plate, sectorCode, basePrice string) {
	l.Logger.InfoContext(ctx,
		"Session Opened",
		slog.String("session_id", sessionID),
		slog.String("plate", plate),
		slog.String("sector", sectorCode),
		slog.String("base_price", basePrice),
	)
}

// LogVehicleParked logs a spot assignment
func (l *Logger) LogVehicleParked(ctx context.Context, sessionID, plate, spotID string) {
	l.Logger.InfoContext(ctx,
		"Vehicle Parked",
		slog.String("session_id", sessionID),
		slog.String("plate", plate),
		slog.String("spot_id", spotID),
	)
}

// LogSpotUnresolved logs a PARKED event that left the session unparked
func (l *Logger) LogSpotUnresolved(ctx context.Context, sessionID, plate, reason string) {
	l.Logger.WarnContext(ctx,
		"Spot Unresolved",
		slog.String("session_id", sessionID),
		slog.String("plate", plate),
		slog.String("reason", reason),
	)
}

// LogSessionClosed logs a vehicle leaving
func (l *Logger) LogSessionClosed(ctx context.Context, sessionID, plate, finalPrice string) {
	l.Logger.InfoContext(ctx,
		"Session Closed",
		slog.String("session_id", sessionID),
		slog.String("plate", plate),
		slog.String("final_price", finalPrice),
	)
}

// LogCapacityConflict logs an optimistic version conflict that will be retried
func (l *Logger) LogCapacityConflict(ctx context.Context, resource, id string, attempt int) {
	l.Logger.DebugContext(ctx,
		"Version Conflict",
		slog.String("resource", resource),
		slog.String("id", id),
		slog.Int("attempt", attempt),
	)
}

// LogEventRejected logs a business-rule rejection of an inbound event
func (l *Logger) LogEventRejected(ctx context.Context, eventType, plate, code string) {
	l.Logger.InfoContext(ctx,
		"Event Rejected",
		slog.String("event_type", eventType),
		slog.String("plate", plate),
		slog.String("code", code),
	)
}

// Security logging methods

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
