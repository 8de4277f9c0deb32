package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/apierror"
)

// ErrorHandler answers 500 for errors handlers pushed with c.Error. Service
// errors with a known kind never get here: respondError already mapped them.
// The client only sees the request id, never the cause.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		reqID := c.GetString(RequestIDKey)
		log.Error().
			Str("request_id", reqID).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method).
			Err(c.Errors.Last().Err).
			Int("errors", len(c.Errors)).
			Msg("unhandled error")

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Interno(reqID))
	}
}

// Recovery turns a panic into a 500 with the same body as ErrorHandler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				reqID := c.GetString(RequestIDKey)
				log.Error().
					Str("request_id", reqID).
					Str("route", c.FullPath()).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Interno(reqID))
			}
		}()
		c.Next()
	}
}

// Logger writes one access line per request. 5xx log at error level and 4xx
// at warn, so a cashier's rejected edits stand out from normal traffic.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}
		ev := log.WithLevel(level).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start))
		if actor, ok := actorDe(c); ok {
			ev = ev.Str("user", actor.Username)
		}
		ev.Msg("request")
	}
}
