package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler = gin.HandlerFunc
type Router = gin.IRouter

const (
	// RequestIDHeader is read from the request and echoed on the response.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "drmgr.request_id"
)

// RequestIDOf returns the id RequestID assigned to c.
func RequestIDOf(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestID keeps the caller's X-Request-ID or generates a new one.
func RequestID() Handler {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

// AccessLog logs one line per request once the handler chain returns.
// Server errors are logged at error level.
func AccessLog(l *slog.Logger) Handler {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		attrs := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"bytes", c.Writer.Size(),
			"elapsed", time.Since(start),
			"request_id", RequestIDOf(c),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			attrs = append(attrs, "error", errs.Last().Err)
		}
		l.Log(c.Request.Context(), level, "http request", attrs...)
	}
}

// RecoveryProblem turns a handler panic into a 500 problem response.
func RecoveryProblem(l *slog.Logger) Handler {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("handler panic", "panic", rec, "request_id", RequestIDOf(c))
				Problem(c, http.StatusInternalServerError, "unexpected server error")
			}
		}()
		c.Next()
	}
}

// Problem aborts the request with an RFC 7807 application/problem+json body.
func Problem(c *gin.Context, status int, detail string) {
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(status, gin.H{
		"type":   "about:blank",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
