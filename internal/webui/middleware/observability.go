package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"dmdesk/internal/logging"
	"dmdesk/internal/observability"
)

// ObservabilityMiddleware instruments requests with a span, HTTP metrics and
// an access log line. With obs set, the access line goes through its logger
// and carries the request's trace id; accessLogger is used otherwise.
func ObservabilityMiddleware(obs *observability.Observability, accessLogger logging.Logger) gin.HandlerFunc {
	accessLogger = logging.OrNop(accessLogger)
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if obs != nil {
			ctx, span := obs.Tracer.StartSpan(c.Request.Context(), observability.SpanHTTPServer,
				attribute.String("http.route", route),
				attribute.String("http.method", c.Request.Method),
			)
			c.Request = c.Request.WithContext(ctx)
			defer func() {
				status := c.Writer.Status()
				span.SetAttributes(attribute.Int("http.status_code", status))
				if status >= 500 {
					span.SetStatus(codes.Error, "server error")
				}
				if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
					span.RecordError(errs.Last().Err)
				}
				span.End()
			}()
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		bytes := int64(c.Writer.Size())
		if bytes < 0 {
			bytes = 0
		}
		if obs != nil {
			obs.Metrics.RecordHTTPServerRequest(c.Request.Context(), c.Request.Method, route, status, latency, bytes)
		}
		logger := accessLogger
		if obs != nil && obs.Logger != nil {
			logger = logging.FromObservabilityWithComponent(obs.Logger.WithContext(c.Request.Context()), "http")
		}
		logger.Info(
			"route=%s method=%s status=%d latency_ms=%.2f bytes=%d",
			route,
			c.Request.Method,
			status,
			float64(latency.Microseconds())/1000.0,
			bytes,
		)
	}
}
