package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storepay/internal/models"
	"storepay/internal/payment"
)

// WebhookSignature rejects webhook deliveries whose verif-hash header does
// not match the configured secret.
func WebhookSignature(secret string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !payment.Authenticate(c.Request().Header.Get(payment.SignatureHeader), secret) {
				logger.Warn("webhook signature mismatch", zap.String("ip", c.RealIP()))
				return c.JSON(http.StatusUnauthorized, models.APIResponse{
					Status:  models.ResponseError,
					Message: payment.ErrUnauthenticated.Error(),
				})
			}
			return next(c)
		}
	}
}

// Tracing starts a server span per request and exposes its id as X-Trace-ID.
func Tracing(tracerName string) echo.MiddlewareFunc {
	tracer := otel.Tracer(tracerName)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", req.Method, c.Path()),
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			c.SetRequest(req.WithContext(ctx))
			if sc := span.SpanContext(); sc.IsValid() {
				c.Response().Header().Set("X-Trace-ID", sc.TraceID().String())
			}

			err := next(c)
			if err != nil {
				c.Error(err)
				span.RecordError(err)
			}
			span.SetAttributes(
				semconv.HTTPMethodKey.String(req.Method),
				semconv.HTTPRouteKey.String(c.Path()),
				semconv.HTTPStatusCodeKey.Int(c.Response().Status),
				attribute.String("http.client_ip", c.RealIP()),
			)
			return nil
		}
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("ip", c.RealIP()),
			}
			if traceID := res.Header().Get("X-Trace-ID"); traceID != "" {
				fields = append(fields, zap.String("trace_id", traceID))
			}
			logger.Info("http request", fields...)
			return nil
		}
	}
}

// CORS configures CORS headers.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Access-Control-Allow-Origin", "*")
			c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+payment.SignatureHeader)
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
