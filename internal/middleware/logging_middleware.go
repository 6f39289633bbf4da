package middleware

import (
	"time"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи.
// Частые запросы (перемещение указателя) пишутся на уровне DEBUG.
type RequestLogger struct {
	log   *logging.Logger
	quiet map[string]bool
}

// NewRequestLogger создаёт логгер запросов; quietPaths логируются на DEBUG
func NewRequestLogger(l *logging.Logger, quietPaths ...string) *RequestLogger {
	rl := &RequestLogger{log: l, quiet: make(map[string]bool, len(quietPaths))}
	for _, p := range quietPaths {
		rl.quiet[p] = true
	}
	return rl
}

func (rl *RequestLogger) logf(path, format string, args ...interface{}) {
	switch {
	case rl.log == nil && rl.quiet[path]:
		logging.Debug(format, args...)
	case rl.log == nil:
		logging.Info(format, args...)
	case rl.quiet[path]:
		rl.log.Debug(format, args...)
	default:
		rl.log.Info(format, args...)
	}
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Пытаемся извлечь trace-id из OpenTelemetry, если уже создан.
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		c.Header("X-Trace-ID", traceID)

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		clientIP := c.ClientIP()

		rl.logf(path, "[HTTP] ▶ %s %s ip=%s trace=%s", method, path, clientIP, traceID)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		rl.logf(path, "[HTTP] ◀ %s %s %d %s trace=%s", method, path, status, latency, traceID)
	}
}
